package bot

import (
	"strings"
	"testing"

	"github.com/fortunamfo/branchbot/internal/domain"
)

func TestNormalizeChannel(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"@fortuna_news", "@fortuna_news", true},
		{"t.me/fortuna_news", "@fortuna_news", true},
		{"https://t.me/fortuna_news", "@fortuna_news", true},
		{"  https://t.me/fortuna_news  ", "@fortuna_news", true},
		{"-1001234567890", "-1001234567890", true},
		{"fortuna_news", "", false},
		{"-100abc", "", false},
		{"@", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeChannel(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("normalizeChannel(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatBranchList(t *testing.T) {
	branches := []domain.Branch{
		{Seq: 1, Name: "Center", Address: "Main st 1", Phone: "+998 71 200-00-70", Hours: "9:00 - 18:00"},
		{Seq: 3, Name: "Samarkand", Address: "Registan 12", Phone: "+998 66 233-00-40", Hours: "9:00 - 18:00"},
	}
	got := formatBranchList(branches)

	for _, want := range []string{"1. Center", "3. Samarkand", "Registan 12", "+998 71 200-00-70"} {
		if !strings.Contains(got, want) {
			t.Errorf("listing missing %q in:\n%s", want, got)
		}
	}
}

func TestSubscribeKeyboard_SkipsPrivateChannels(t *testing.T) {
	kb := subscribeKeyboard([]string{"@public", "-1001234"})

	// One row for the public channel, one for the recheck button.
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(kb.InlineKeyboard))
	}
	if url := kb.InlineKeyboard[0][0].URL; url == nil || *url != "https://t.me/public" {
		t.Errorf("unexpected channel button: %+v", kb.InlineKeyboard[0][0])
	}
}
