package domain

import (
	"math"
	"testing"
)

func TestBranchDistanceKM(t *testing.T) {
	// Tashkent center to Samarkand is roughly 270 km by air.
	tashkent := Branch{Latitude: 41.311081, Longitude: 69.240562}
	got := tashkent.DistanceKM(39.6548, 66.9597)
	if math.Abs(got-270) > 15 {
		t.Errorf("Tashkent-Samarkand distance = %.1f km", got)
	}

	if d := tashkent.DistanceKM(41.311081, 69.240562); d > 0.001 {
		t.Errorf("distance to self = %f", d)
	}
}

func TestNearestBranch(t *testing.T) {
	branches := []Branch{
		{Seq: 1, Name: "Samarkand", Latitude: 39.6548, Longitude: 66.9597},
		{Seq: 2, Name: "Center", Latitude: 41.2995, Longitude: 69.2401},
		{Seq: 3, Name: "Gallaorol", Latitude: 40.0194, Longitude: 67.5931},
	}

	// A user near the Tashkent center.
	got, ok := NearestBranch(branches, 41.32, 69.25)
	if !ok || got.Name != "Center" {
		t.Errorf("nearest = %+v, %v", got, ok)
	}

	if _, ok := NearestBranch(nil, 41, 69); ok {
		t.Error("empty directory must report no branch")
	}
}
