package bot

import (
	"regexp"
	"strconv"
	"strings"
)

// fractionTail spots a decimal fraction: a dot or comma with one or two
// digits and no further digits after it. Three digits is grouping
// ("12,500"), one or two is a fraction ("3.5").
var fractionTail = regexp.MustCompile(`[.,]\d{1,2}\D*$`)

// parseAmount reads a user-typed sum in whole soum. People paste
// amounts with spaces, apostrophes or thin separators ("3 000 000",
// "3'000'000"), so every non-digit is stripped before parsing.
// Fractional input is rejected rather than stripped: "3.5" must
// re-prompt, not silently become 35. Rates go through parseRate, which
// does accept decimals.
func parseAmount(text string) (float64, bool) {
	if fractionTail.MatchString(strings.TrimSpace(text)) {
		return 0, false
	}
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseMonths reads a term in months.
func parseMonths(text string) (int, bool) {
	v, ok := parseAmount(text)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

// parseRate reads an annual rate, accepting a decimal point or comma
// ("48.5", "48,5"). Anything else non-numeric is dropped.
func parseRate(text string) (float64, bool) {
	text = strings.ReplaceAll(text, ",", ".")
	var b strings.Builder
	seenDot := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var channelLink = regexp.MustCompile(`(?:https?://)?t\.me/([A-Za-z0-9_]+)`)

// normalizeChannel turns the admin's channel reference into the
// canonical form: "@username" for public channels, the raw "-100..."
// id for private ones. Links like t.me/name are accepted too.
func normalizeChannel(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if m := channelLink.FindStringSubmatch(text); m != nil {
		return "@" + m[1], true
	}
	if strings.HasPrefix(text, "@") && len(text) > 1 {
		return text, true
	}
	if strings.HasPrefix(text, "-100") {
		if _, err := strconv.ParseInt(text, 10, 64); err == nil {
			return text, true
		}
	}
	return "", false
}

// parseYear reads a four-digit year.
func parseYear(text string) (int, bool) {
	n, ok := parseMonths(text)
	if !ok || n < 1900 || n > 2100 {
		return 0, false
	}
	return n, true
}
