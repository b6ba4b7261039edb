package bot

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fortunamfo/branchbot/internal/domain"
)

func TestContainsLink(t *testing.T) {
	b := &Bot{}
	cases := []struct {
		msg  tgbotapi.Message
		want bool
	}{
		{tgbotapi.Message{Text: "plain chatter"}, false},
		{tgbotapi.Message{Text: "see https://example.com"}, true},
		{tgbotapi.Message{Text: "join t.me/somewhere"}, true},
		{tgbotapi.Message{Caption: "http://spam.example"}, true},
		{tgbotapi.Message{Text: "styled", Entities: []tgbotapi.MessageEntity{{Type: "text_link"}}}, true},
		{tgbotapi.Message{Text: "bold", Entities: []tgbotapi.MessageEntity{{Type: "bold"}}}, false},
	}
	for i, tc := range cases {
		if got := b.containsLink(&tc.msg); got != tc.want {
			t.Errorf("case %d: containsLink = %v, want %v", i, got, tc.want)
		}
	}
}

func TestIsScreenshot(t *testing.T) {
	b := &Bot{}
	photo := tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "x"}}}
	if !b.isScreenshot(&photo) {
		t.Error("photo not counted as screenshot")
	}
	imageDoc := tgbotapi.Message{Document: &tgbotapi.Document{MimeType: "image/png"}}
	if !b.isScreenshot(&imageDoc) {
		t.Error("image document not counted as screenshot")
	}
	pdfDoc := tgbotapi.Message{Document: &tgbotapi.Document{MimeType: "application/pdf"}}
	if b.isScreenshot(&pdfDoc) {
		t.Error("pdf counted as screenshot")
	}
}

func TestFormatQuotaReport_AllDone(t *testing.T) {
	r := domain.QuotaReport{
		At:        time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		Completed: []domain.QuotaEntry{{Employee: domain.Employee{Username: "aziz"}, Count: 2}},
	}
	text := formatQuotaReport(&r)
	if !strings.Contains(text, "Everyone is done") {
		t.Errorf("unexpected report: %q", text)
	}
}

func TestFormatQuotaReport_Debtors(t *testing.T) {
	r := domain.QuotaReport{
		At:        time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC),
		Completed: []domain.QuotaEntry{{Employee: domain.Employee{Username: "aziz"}, Count: 2}},
		Debtors:   []domain.QuotaEntry{{Employee: domain.Employee{Username: "botir"}, Count: 1}},
	}
	text := formatQuotaReport(&r)
	if !strings.Contains(text, "@botir: 1/2") {
		t.Errorf("debtor line missing: %q", text)
	}
	if !strings.Contains(text, "Done: 1 of 2 (50%)") {
		t.Errorf("summary line missing: %q", text)
	}
}

func TestEmployeeLabel(t *testing.T) {
	if got := employeeLabel(domain.Employee{Username: "aziz"}); got != "@aziz" {
		t.Errorf("got %q", got)
	}
	if got := employeeLabel(domain.Employee{FirstName: "Aziz", LastName: "K"}); got != "Aziz K" {
		t.Errorf("got %q", got)
	}
	if got := employeeLabel(domain.Employee{TelegramID: 7}); got != "id7" {
		t.Errorf("got %q", got)
	}
}
