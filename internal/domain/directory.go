package domain

import (
	"fmt"
	"math"
	"time"
)

// Vacancy is one open position posted by the administrator. PhotoID is
// a Telegram file id and may be empty for text-only posts.
type Vacancy struct {
	ID       string
	PhotoID  string
	Text     string
	PostedAt time.Time
}

// Branch is one office of the network, shown in the branch directory.
type Branch struct {
	Seq       int
	Name      string
	Address   string
	Phone     string
	Hours     string
	Latitude  float64
	Longitude float64
}

// MapsURL links the branch on Google Maps.
func (b Branch) MapsURL() string {
	return fmt.Sprintf("https://maps.google.com/?q=%f,%f", b.Latitude, b.Longitude)
}

const earthRadiusKM = 6371.0

// DistanceKM is the great-circle distance from the branch to a point.
func (b Branch) DistanceKM(lat, lon float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat - b.Latitude)
	dLon := rad(lon - b.Longitude)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(b.Latitude))*math.Cos(rad(lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// NearestBranch picks the branch closest to the user's location.
func NearestBranch(branches []Branch, lat, lon float64) (Branch, bool) {
	if len(branches) == 0 {
		return Branch{}, false
	}
	nearest := branches[0]
	best := nearest.DistanceKM(lat, lon)
	for _, b := range branches[1:] {
		if d := b.DistanceKM(lat, lon); d < best {
			best = d
			nearest = b
		}
	}
	return nearest, true
}
