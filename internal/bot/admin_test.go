package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fortunamfo/branchbot/internal/domain"
)

func TestBroadcastItemFrom(t *testing.T) {
	text := tgbotapi.Message{Text: "promo"}
	item, ok := broadcastItemFrom(&text)
	if !ok || item.Type != domain.BroadcastText || item.Text != "promo" {
		t.Errorf("text item = %+v, %v", item, ok)
	}

	photo := tgbotapi.Message{
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
		Caption: "new office",
	}
	item, ok = broadcastItemFrom(&photo)
	if !ok || item.Type != domain.BroadcastPhoto || item.FileID != "large" || item.Caption != "new office" {
		t.Errorf("photo item = %+v, %v", item, ok)
	}

	loc := tgbotapi.Message{Location: &tgbotapi.Location{Latitude: 41.3, Longitude: 69.2}}
	item, ok = broadcastItemFrom(&loc)
	if !ok || item.Type != domain.BroadcastLocation || item.Latitude != 41.3 {
		t.Errorf("location item = %+v, %v", item, ok)
	}

	fwd := tgbotapi.Message{
		ForwardFromChat:      &tgbotapi.Chat{ID: -100123},
		ForwardFromMessageID: 42,
	}
	item, ok = broadcastItemFrom(&fwd)
	if !ok || item.Type != domain.BroadcastForward || item.FromChat != "-100123" || item.MessageID != 42 {
		t.Errorf("forward item = %+v, %v", item, ok)
	}

	sticker := tgbotapi.Message{Sticker: &tgbotapi.Sticker{FileID: "s"}}
	if _, ok := broadcastItemFrom(&sticker); ok {
		t.Error("sticker should not be broadcastable")
	}
}

func TestParseChatRef(t *testing.T) {
	id, err := parseChatRef("-100123456")
	if err != nil || id != -100123456 {
		t.Errorf("parseChatRef = %d, %v", id, err)
	}
	if _, err := parseChatRef("@channel"); err == nil {
		t.Error("expected error for username reference")
	}
	if _, err := parseChatRef("not-a-number"); err == nil {
		t.Error("expected error for garbage")
	}
}

func TestDialogStateLifecycle(t *testing.T) {
	s := newStates()

	d := s.get(1)
	if d.step != stepIdle {
		t.Errorf("fresh dialog step = %v", d.step)
	}

	d.step = stepAwaitPrincipal
	if s.get(1).step != stepAwaitPrincipal {
		t.Error("dialog state not shared per chat")
	}
	if s.get(2).step != stepIdle {
		t.Error("dialog state leaked between chats")
	}

	s.reset(1)
	if s.get(1).step != stepIdle {
		t.Error("reset did not clear dialog")
	}
}
