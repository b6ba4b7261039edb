package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// handleAdminCommand routes commands only the branch administrator may
// run. The caller has already verified the sender.
func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "loan":
		b.startFreeCalculator(chatID)
	case "broadcast":
		b.startBroadcast(ctx, chatID)
	case "export":
		b.handleExport(ctx, chatID)
	case "stats":
		b.handleStats(chatID)
	case "report":
		b.handleManualReport(ctx, chatID)
	case "job":
		b.handleVacancyAdmin(chatID)
	case "channels":
		b.handleChannelAdmin(ctx, msg)
	}
}

// startBroadcast switches the admin chat into collection mode.
func (b *Bot) startBroadcast(ctx context.Context, chatID int64) {
	count, err := b.broadcaster.SubscriberCount(ctx)
	if err != nil {
		b.logger.Warn("subscriber count failed", zap.Error(err))
		b.reply(chatID, "Cannot read the subscriber registry right now.", nil)
		return
	}

	d := b.states.get(chatID)
	*d = dialog{step: stepBroadcastCollect}

	b.reply(chatID, fmt.Sprintf(
		"Broadcast to %d subscribers. Send text, photos or locations one by one; "+
			"forward a post to include it. Send /done when the bundle is ready.",
		count,
	), cancelKeyboard())
}

// collectBroadcastItem appends one message to the pending bundle.
// "/done" moves to the confirmation preview.
func (b *Bot) collectBroadcastItem(chatID int64, msg *tgbotapi.Message, d *dialog) {
	if msg.Text == "/done" || strings.EqualFold(msg.Text, "done") {
		if len(d.items) == 0 {
			b.reply(chatID, "The bundle is empty. Send at least one message first.", nil)
			return
		}
		d.step = stepBroadcastConfirm
		b.previewBroadcast(chatID, d)
		return
	}

	item, ok := broadcastItemFrom(msg)
	if !ok {
		b.reply(chatID, "Only text, photos, locations and forwarded posts can be broadcast.", nil)
		return
	}
	d.items = append(d.items, item)
	b.reply(chatID, fmt.Sprintf("Added (%d queued). Send more or /done.", len(d.items)), nil)
}

// broadcastItemFrom classifies an admin message into a queue item.
func broadcastItemFrom(msg *tgbotapi.Message) (domain.BroadcastItem, bool) {
	switch {
	case msg.ForwardFromChat != nil:
		return domain.BroadcastItem{
			Type:      domain.BroadcastForward,
			FromChat:  fmt.Sprintf("%d", msg.ForwardFromChat.ID),
			MessageID: msg.ForwardFromMessageID,
		}, true
	case len(msg.Photo) > 0:
		// The last size is the largest.
		return domain.BroadcastItem{
			Type:    domain.BroadcastPhoto,
			FileID:  msg.Photo[len(msg.Photo)-1].FileID,
			Caption: msg.Caption,
		}, true
	case msg.Location != nil:
		return domain.BroadcastItem{
			Type:      domain.BroadcastLocation,
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}, true
	case msg.Text != "":
		return domain.BroadcastItem{Type: domain.BroadcastText, Text: msg.Text}, true
	}
	return domain.BroadcastItem{}, false
}

// previewBroadcast replays the bundle back to the admin with the
// send/discard choice.
func (b *Bot) previewBroadcast(chatID int64, d *dialog) {
	b.reply(chatID, "Preview of the broadcast:", nil)
	if err := b.Deliver(context.Background(), chatID, d.items); err != nil {
		b.logger.Warn("broadcast preview failed", zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Send these %d message(s) to everyone?", len(d.items)))
	msg.ReplyMarkup = broadcastConfirmKeyboard()
	b.send(msg)
}

// handleBroadcastDecision runs or discards the confirmed bundle.
func (b *Bot) handleBroadcastDecision(ctx context.Context, chatID int64, confirmed bool) {
	d := b.states.get(chatID)
	if d.step != stepBroadcastConfirm {
		return
	}
	items := d.items
	b.states.reset(chatID)

	if !confirmed {
		b.reply(chatID, "Broadcast discarded.", mainMenuKeyboard())
		return
	}

	b.reply(chatID, "Broadcast started.", mainMenuKeyboard())
	go func() {
		result, err := b.broadcaster.Run(context.WithoutCancel(ctx), items, func(done, total int) {
			b.reply(chatID, fmt.Sprintf("Progress: %d/%d", done, total), nil)
		})
		if err != nil {
			b.logger.Warn("broadcast interrupted", zap.Error(err))
		}
		b.reply(chatID, fmt.Sprintf(
			"Broadcast finished: %d sent, %d unreachable of %d.",
			result.Sent, result.Blocked, result.Total,
		), nil)
	}()
}

// handleExport sends the registry workbook as a spreadsheet.
func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	blob, err := b.exporter.ExportWorkbook(ctx)
	if err != nil {
		b.logger.Warn("workbook export failed", zap.Error(err))
		b.reply(chatID, "Export failed, check the logs.", nil)
		return
	}
	filename := fmt.Sprintf("registry-%s.xlsx", time.Now().Format("2006-01-02"))
	b.sendDocument(chatID, blob, filename, "Subscriber and employee registry")
}

// handleStats prints the counters snapshot.
func (b *Bot) handleStats(chatID int64) {
	s := b.metrics.Snapshot()
	b.reply(chatID, fmt.Sprintf(
		"Bot statistics\n"+
			"Schedules computed: %.0f (errors: %.0f)\n"+
			"Broadcast deliveries: %.0f sent, %.0f unreachable\n"+
			"Screenshots counted: %.0f\n"+
			"Quota reports: %.0f\n"+
			"Rates cache hit rate: %.0f%%",
		s.SchedulesComputed, s.ScheduleErrors,
		s.BroadcastsSent, s.BroadcastsBlocked,
		s.Screenshots, s.QuotaReports,
		s.CacheHitRate*100,
	), nil)
}

// handleManualReport posts a quota report to the group on demand.
func (b *Bot) handleManualReport(ctx context.Context, chatID int64) {
	if err := b.postQuotaReport(ctx); err != nil {
		b.reply(chatID, "Report failed, check the logs.", nil)
		return
	}
	b.reply(chatID, "Report posted to the group.", nil)
}
