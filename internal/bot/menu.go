package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
)

const welcomeText = "Welcome to the Fortuna branch bot!\n\n" +
	"Here you can calculate a loan schedule, check today's USD rates " +
	"and reach the branch. Pick an option from the menu below."

const contactsText = "Fortuna microfinance, city branch\n" +
	"Phone: +998 71 200-00-70\n" +
	"Working hours: Mon-Sat 9:00-18:00\n" +
	"Telegram: @fortuna_branch"

// Branch office coordinates for the location button.
const (
	branchLatitude  = 41.311081
	branchLongitude = 69.240562
)

// handleStart gates the menu behind channel subscriptions and registers
// the user for broadcasts.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.states.reset(chatID)

	if missing := b.missingSubscriptions(ctx, msg.From.ID); len(missing) > 0 {
		b.reply(chatID, "To use the bot, subscribe to our channels first:", subscribeKeyboard(missing))
		return
	}

	added, err := b.subscribers.SaveSubscriber(ctx, domain.Subscriber{
		TelegramID: msg.From.ID,
		Username:   msg.From.UserName,
		AddedAt:    time.Now(),
	})
	if err != nil {
		b.logger.Warn("subscriber save failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
	}
	if added {
		b.logger.Info("new subscriber", zap.Int64("user_id", msg.From.ID))
	}

	b.reply(chatID, welcomeText, mainMenuKeyboard())
}

// handleStartRecheck re-runs the gate when the user taps "I subscribed".
func (b *Bot) handleStartRecheck(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if missing := b.missingSubscriptions(ctx, cb.From.ID); len(missing) > 0 {
		b.reply(chatID, "Still missing some subscriptions:", subscribeKeyboard(missing))
		return
	}

	if _, err := b.subscribers.SaveSubscriber(ctx, domain.Subscriber{
		TelegramID: cb.From.ID,
		Username:   cb.From.UserName,
		AddedAt:    time.Now(),
	}); err != nil {
		b.logger.Warn("subscriber save failed", zap.Int64("user_id", cb.From.ID), zap.Error(err))
	}
	b.reply(chatID, welcomeText, mainMenuKeyboard())
}

// missingSubscriptions returns required channels the user has not
// joined, covering both the permanent environment list and the
// admin-managed one. A failed membership lookup counts as missing; the
// user can always tap recheck.
func (b *Bot) missingSubscriptions(ctx context.Context, userID int64) []string {
	var missing []string
	for _, ch := range b.requiredChannels(ctx) {
		target := tgbotapi.ChatConfigWithUser{UserID: userID}
		if strings.HasPrefix(ch, "@") {
			target.SuperGroupUsername = ch
		} else if id, err := strconv.ParseInt(ch, 10, 64); err == nil {
			target.ChatID = id
		} else {
			continue
		}

		member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: target,
		})
		if err != nil {
			b.logger.Debug("membership lookup failed", zap.String("channel", ch), zap.Error(err))
			missing = append(missing, ch)
			continue
		}
		switch member.Status {
		case "creator", "administrator", "member":
		default:
			missing = append(missing, ch)
		}
	}
	return missing
}

// sendRates renders today's USD board into a document.
func (b *Bot) sendRates(ctx context.Context, chatID int64) {
	board, err := b.currency.Rates(ctx)
	if err != nil {
		b.logger.Warn("rate fetch failed", zap.Error(err))
		b.reply(chatID, "Rates are unavailable right now, try again in a minute.", nil)
		return
	}

	title := fmt.Sprintf("USD exchange rates, %s", board.FetchedAt.Format("02.01.2006"))
	blob, filename, err := b.rates.RenderRates(&board, title)
	if err != nil {
		b.logger.Warn("rate render failed", zap.Error(err))
		b.reply(chatID, "Rates are unavailable right now, try again in a minute.", nil)
		return
	}
	b.sendDocument(chatID, blob, filename, title)
}

func (b *Bot) sendContacts(chatID int64) {
	b.reply(chatID, contactsText, nil)
}

func (b *Bot) sendLocation(chatID int64) {
	b.send(tgbotapi.NewLocation(chatID, branchLatitude, branchLongitude))
}
