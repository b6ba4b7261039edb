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

// handleGroupMessage processes the advertising group: membership
// bookkeeping, screenshot counting, link policing and admin commands.
func (b *Bot) handleGroupMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case len(msg.NewChatMembers) > 0:
		b.handleJoins(ctx, msg)
		return
	case msg.LeftChatMember != nil:
		b.handleLeave(ctx, msg.LeftChatMember)
		return
	}

	if msg.IsCommand() && b.isAdmin(msg.From) {
		switch msg.Command() {
		case "report":
			if err := b.postQuotaReport(ctx); err != nil {
				b.logger.Warn("manual quota report failed", zap.Error(err))
			}
		case "employees":
			b.sendEmployeeList(ctx, msg.Chat.ID)
		case "stats":
			b.handleStats(msg.Chat.ID)
		}
		return
	}

	if b.isScreenshot(msg) {
		b.countScreenshot(ctx, msg)
		return
	}

	if b.containsLink(msg) && !b.isAdmin(msg.From) {
		b.deleteMessage(msg.Chat.ID, msg.MessageID)
	}
}

// handleJoins registers every new member as an active employee.
func (b *Bot) handleJoins(ctx context.Context, msg *tgbotapi.Message) {
	for _, user := range msg.NewChatMembers {
		if user.IsBot {
			continue
		}
		added, err := b.quota.RegisterEmployee(ctx, domain.Employee{
			TelegramID: user.ID,
			Username:   user.UserName,
			FirstName:  user.FirstName,
			LastName:   user.LastName,
			JoinedAt:   time.Now(),
			Status:     domain.EmployeeActive,
		})
		if err != nil {
			b.logger.Warn("employee registration failed", zap.Int64("user_id", user.ID), zap.Error(err))
			continue
		}
		if added {
			b.reply(msg.Chat.ID, fmt.Sprintf(
				"Welcome, %s! Don't forget the daily advertising quota: %d screenshots.",
				displayName(&user), domain.ScreenshotQuota,
			), nil)
		}
	}
}

func (b *Bot) handleLeave(ctx context.Context, user *tgbotapi.User) {
	if user.IsBot {
		return
	}
	if err := b.quota.MarkLeft(ctx, user.ID); err != nil {
		b.logger.Debug("mark-left failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

// isScreenshot treats photos and image documents as quota screenshots.
func (b *Bot) isScreenshot(msg *tgbotapi.Message) bool {
	if len(msg.Photo) > 0 {
		return true
	}
	return msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/")
}

// countScreenshot increments the sender's daily tally and acknowledges
// with the running count.
func (b *Bot) countScreenshot(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	// A screenshot from an unknown member also registers them; the group
	// existed before the bot did.
	if _, err := b.quota.RegisterEmployee(ctx, domain.Employee{
		TelegramID: msg.From.ID,
		Username:   msg.From.UserName,
		FirstName:  msg.From.FirstName,
		LastName:   msg.From.LastName,
		JoinedAt:   time.Now(),
		Status:     domain.EmployeeActive,
	}); err != nil {
		b.logger.Debug("employee refresh failed", zap.Int64("user_id", msg.From.ID), zap.Error(err))
	}

	count := b.quota.CountScreenshot(msg.From.ID)
	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("%s: %d/%d", displayName(msg.From), count, domain.ScreenshotQuota))
	reply.ReplyToMessageID = msg.MessageID
	b.send(reply)
}

// containsLink checks text and entities for URLs and telegram invites.
func (b *Bot) containsLink(msg *tgbotapi.Message) bool {
	for _, e := range append(msg.Entities, msg.CaptionEntities...) {
		if e.Type == "url" || e.Type == "text_link" {
			return true
		}
	}
	text := strings.ToLower(msg.Text + " " + msg.Caption)
	return strings.Contains(text, "http://") ||
		strings.Contains(text, "https://") ||
		strings.Contains(text, "t.me/")
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debug("delete failed", zap.Int("message_id", messageID), zap.Error(err))
	}
}

// postQuotaReport builds today's report and posts it to the group, with
// a short summary to the admin.
func (b *Bot) postQuotaReport(ctx context.Context) error {
	report, err := b.quota.BuildReport(ctx)
	if err != nil {
		return err
	}

	b.reply(b.cfg.GroupID, formatQuotaReport(&report), nil)
	if b.cfg.AdminID != 0 {
		b.reply(b.cfg.AdminID, fmt.Sprintf(
			"Quota check: %d/%d employees done (%d%%).",
			len(report.Completed), report.Total(), report.Percent(),
		), nil)
	}
	return nil
}

func formatQuotaReport(r *domain.QuotaReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Advertising check for %s\n", r.At.Format("02.01.2006 15:04"))
	fmt.Fprintf(&sb, "Quota: %d screenshots per day\n\n", domain.ScreenshotQuota)

	if len(r.Debtors) == 0 {
		sb.WriteString("Everyone is done. Well done, team!")
		return sb.String()
	}

	sb.WriteString("Still owing:\n")
	for _, e := range r.Debtors {
		fmt.Fprintf(&sb, "- %s: %d/%d\n", employeeLabel(e.Employee), e.Count, domain.ScreenshotQuota)
	}
	fmt.Fprintf(&sb, "\nDone: %d of %d (%d%%)", len(r.Completed), r.Total(), r.Percent())
	return sb.String()
}

// sendEmployeeList prints the active roster for the admin.
func (b *Bot) sendEmployeeList(ctx context.Context, chatID int64) {
	report, err := b.quota.BuildReport(ctx)
	if err != nil {
		b.logger.Warn("employee list failed", zap.Error(err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active employees: %d\n", report.Total())
	for _, e := range append(report.Completed, report.Debtors...) {
		fmt.Fprintf(&sb, "- %s (today: %d/%d)\n", employeeLabel(e.Employee), e.Count, domain.ScreenshotQuota)
	}
	b.reply(chatID, sb.String(), nil)
}

func employeeLabel(e domain.Employee) string {
	if e.Username != "" {
		return "@" + e.Username
	}
	if name := e.FullName(); name != "" {
		return name
	}
	return fmt.Sprintf("id%d", e.TelegramID)
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("id%d", u.ID)
}
