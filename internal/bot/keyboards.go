package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// Main menu button captions. They double as message matchers, so the
// dispatch switch and the keyboard must stay in sync.
const (
	btnCalculator = "Loan calculator"
	btnRates      = "USD rates"
	btnContacts   = "Contacts"
	btnLocation   = "Our address"
	btnBranches   = "Our branches"
	btnVacancies  = "Vacancies"
	btnCancel     = "Cancel"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCalculator),
			tgbotapi.NewKeyboardButton(btnRates),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBranches),
			tgbotapi.NewKeyboardButton(btnVacancies),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnContacts),
			tgbotapi.NewKeyboardButton(btnLocation),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// productKeyboard lists the catalog, one product per row. Callback data
// is "product:<code>".
func productKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, p := range domain.Catalog() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, "product:"+p.Code),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// productCardKeyboard is shown under a product info card.
func productCardKeyboard(code string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Calculate", "calc:"+code),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back to products", "products"),
		),
	)
}

// subscribeKeyboard links the required channels plus a recheck button.
// Channels referenced by numeric id have no public link: they are
// still enforced, just not shown as buttons.
func subscribeKeyboard(channels []string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, ch := range channels {
		if !strings.HasPrefix(ch, "@") {
			continue
		}
		url := "https://t.me/" + trimAt(ch)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(trimAt(ch), url),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("I subscribed", "recheck"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// broadcastConfirmKeyboard is shown with the preview.
func broadcastConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Send to everyone", "bcast:send"),
			tgbotapi.NewInlineKeyboardButtonData("Discard", "bcast:drop"),
		),
	)
}

// branchMenuKeyboard heads the branch directory.
func branchMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All branches", "branches:list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Find the nearest", "branches:nearest"),
		),
	)
}

// branchMapKeyboard links every branch on Google Maps.
func branchMapKeyboard(branches []domain.Branch) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, b := range branches {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(b.Name, b.MapsURL()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// locationRequestKeyboard asks the user to share a location.
func locationRequestKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation("Share my location"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// vacancyAdminKeyboard heads the admin's vacancy panel.
func vacancyAdminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Post a vacancy", "vac:add"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Review the board", "vac:list"),
		),
	)
}

// vacancyDeleteKeyboard is shown under each post in the admin review.
func vacancyDeleteKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Delete this post", "vac:del:"+id),
		),
	)
}

func trimAt(channel string) string {
	if len(channel) > 0 && channel[0] == '@' {
		return channel[1:]
	}
	return channel
}
