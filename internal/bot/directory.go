package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
)

// --- vacancy board ---

// showVacancies prints the board for any user.
func (b *Bot) showVacancies(ctx context.Context, chatID int64) {
	posts, err := b.vacancies.ListVacancies(ctx)
	if err != nil {
		b.logger.Warn("vacancy list failed", zap.Error(err))
		b.reply(chatID, "The vacancy board is unavailable right now.", nil)
		return
	}
	if len(posts) == 0 {
		b.reply(chatID, "No open positions right now. Check back later!", nil)
		return
	}
	for _, v := range posts {
		b.sendVacancy(chatID, v, nil)
	}
}

func (b *Bot) sendVacancy(chatID int64, v domain.Vacancy, keyboard interface{}) {
	if v.PhotoID != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(v.PhotoID))
		photo.Caption = v.Text
		if keyboard != nil {
			photo.ReplyMarkup = keyboard
		}
		b.send(photo)
		return
	}
	b.reply(chatID, v.Text, keyboard)
}

// handleVacancyAdmin opens the admin's vacancy panel.
func (b *Bot) handleVacancyAdmin(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Vacancy board:")
	msg.ReplyMarkup = vacancyAdminKeyboard()
	b.send(msg)
}

// startVacancyPost begins collecting a new post.
func (b *Bot) startVacancyPost(chatID int64) {
	d := b.states.get(chatID)
	*d = dialog{step: stepVacancyPhoto}
	b.reply(chatID, "Send a photo for the post, or the vacancy text right away to post without one.", cancelKeyboard())
}

// stepVacancyPhoto takes the optional photo. Text at this stage is the
// whole post, photo-less.
func (b *Bot) stepVacancyPhoto(ctx context.Context, chatID int64, msg *tgbotapi.Message, d *dialog) {
	switch {
	case len(msg.Photo) > 0:
		d.vacancyPhoto = msg.Photo[len(msg.Photo)-1].FileID
		d.step = stepVacancyText
		b.reply(chatID, "Now send the vacancy text:", nil)
	case msg.Text != "":
		b.saveVacancy(ctx, chatID, "", msg.Text)
	default:
		b.reply(chatID, "Send a photo or the vacancy text.", nil)
	}
}

func (b *Bot) stepVacancyText(ctx context.Context, chatID int64, msg *tgbotapi.Message, d *dialog) {
	if msg.Text == "" {
		b.reply(chatID, "Send the vacancy text:", nil)
		return
	}
	b.saveVacancy(ctx, chatID, d.vacancyPhoto, msg.Text)
}

func (b *Bot) saveVacancy(ctx context.Context, chatID int64, photoID, text string) {
	b.states.reset(chatID)
	err := b.vacancies.SaveVacancy(ctx, domain.Vacancy{
		ID:       uuid.NewString(),
		PhotoID:  photoID,
		Text:     text,
		PostedAt: time.Now(),
	})
	if err != nil {
		b.logger.Warn("vacancy save failed", zap.Error(err))
		b.reply(chatID, "Could not save the vacancy, check the logs.", mainMenuKeyboard())
		return
	}
	b.reply(chatID, "Vacancy posted.", mainMenuKeyboard())
}

// reviewVacancies replays the board to the admin with delete buttons.
func (b *Bot) reviewVacancies(ctx context.Context, chatID int64) {
	posts, err := b.vacancies.ListVacancies(ctx)
	if err != nil {
		b.logger.Warn("vacancy list failed", zap.Error(err))
		return
	}
	if len(posts) == 0 {
		b.reply(chatID, "The board is empty.", nil)
		return
	}
	for _, v := range posts {
		b.sendVacancy(chatID, v, vacancyDeleteKeyboard(v.ID))
	}
}

func (b *Bot) deleteVacancy(ctx context.Context, chatID int64, id string) {
	if err := b.vacancies.DeleteVacancy(ctx, id); err != nil {
		b.logger.Warn("vacancy delete failed", zap.String("id", id), zap.Error(err))
		b.reply(chatID, "That post is already gone.", nil)
		return
	}
	b.reply(chatID, "Vacancy deleted.", nil)
}

// --- branch directory ---

func (b *Bot) showBranchMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Branch directory:")
	msg.ReplyMarkup = branchMenuKeyboard()
	b.send(msg)
}

// listBranches prints every office with a map link per branch.
func (b *Bot) listBranches(ctx context.Context, chatID int64) {
	branches, err := b.branches.ListBranches(ctx)
	if err != nil {
		b.logger.Warn("branch list failed", zap.Error(err))
		b.reply(chatID, "The branch directory is unavailable right now.", nil)
		return
	}
	if len(branches) == 0 {
		b.reply(chatID, "The directory is empty.", nil)
		return
	}

	msg := tgbotapi.NewMessage(chatID, formatBranchList(branches))
	msg.ReplyMarkup = branchMapKeyboard(branches)
	b.send(msg)
}

// askUserLocation switches the chat into nearest-branch mode.
func (b *Bot) askUserLocation(chatID int64) {
	d := b.states.get(chatID)
	*d = dialog{step: stepAwaitLocation}
	b.reply(chatID, "Share your location and I will find the closest branch.", locationRequestKeyboard())
}

// stepUserLocation resolves the shared location to the closest branch.
func (b *Bot) stepUserLocation(ctx context.Context, chatID int64, msg *tgbotapi.Message, _ *dialog) {
	if msg.Location == nil {
		b.reply(chatID, "Use the button below to share your location.", locationRequestKeyboard())
		return
	}
	b.states.reset(chatID)

	branches, err := b.branches.ListBranches(ctx)
	if err != nil {
		b.logger.Warn("branch list failed", zap.Error(err))
		b.reply(chatID, "The branch directory is unavailable right now.", mainMenuKeyboard())
		return
	}
	nearest, ok := domain.NearestBranch(branches, msg.Location.Latitude, msg.Location.Longitude)
	if !ok {
		b.reply(chatID, "The directory is empty.", mainMenuKeyboard())
		return
	}

	dist := nearest.DistanceKM(msg.Location.Latitude, msg.Location.Longitude)
	text := fmt.Sprintf("%s\nAbout %.1f km from you.", formatBranch(nearest), dist)
	reply := tgbotapi.NewMessage(chatID, text)
	reply.ReplyMarkup = mainMenuKeyboard()
	b.send(reply)
	b.send(tgbotapi.NewLocation(chatID, nearest.Latitude, nearest.Longitude))
}

// handleBranchAdmin serves /branches: bare lists usage, "add" starts
// the entry dialog, "del N" removes one.
func (b *Bot) handleBranchAdmin(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch {
	case len(args) == 0:
		b.listBranchesForAdmin(ctx, chatID)
	case args[0] == "add":
		d := b.states.get(chatID)
		*d = dialog{step: stepBranchName}
		b.reply(chatID, "New branch. Enter its name:", cancelKeyboard())
	case args[0] == "del" && len(args) > 1:
		seq, err := strconv.Atoi(args[1])
		if err != nil {
			b.reply(chatID, "Usage: /branches del <number>", nil)
			return
		}
		if err := b.branches.DeleteBranch(ctx, seq); err != nil {
			b.reply(chatID, fmt.Sprintf("No branch with number %d.", seq), nil)
			return
		}
		b.reply(chatID, "Branch removed.", nil)
	default:
		b.reply(chatID, "Usage: /branches, /branches add, /branches del <number>", nil)
	}
}

func (b *Bot) listBranchesForAdmin(ctx context.Context, chatID int64) {
	branches, err := b.branches.ListBranches(ctx)
	if err != nil {
		b.logger.Warn("branch list failed", zap.Error(err))
		return
	}
	if len(branches) == 0 {
		b.reply(chatID, "The directory is empty. Add one with /branches add.", nil)
		return
	}
	b.reply(chatID, formatBranchList(branches)+"\n/branches add - new entry\n/branches del <number> - remove", nil)
}

func (b *Bot) stepBranchName(chatID int64, msg *tgbotapi.Message, d *dialog) {
	if msg.Text == "" {
		b.reply(chatID, "Enter the branch name:", nil)
		return
	}
	d.branch.Name = msg.Text
	d.step = stepBranchAddress
	b.reply(chatID, "Enter the address:", nil)
}

func (b *Bot) stepBranchAddress(chatID int64, msg *tgbotapi.Message, d *dialog) {
	if msg.Text == "" {
		b.reply(chatID, "Enter the address:", nil)
		return
	}
	d.branch.Address = msg.Text
	d.step = stepBranchPhone
	b.reply(chatID, "Enter the phone number:", nil)
}

func (b *Bot) stepBranchPhone(chatID int64, msg *tgbotapi.Message, d *dialog) {
	if msg.Text == "" {
		b.reply(chatID, "Enter the phone number:", nil)
		return
	}
	d.branch.Phone = msg.Text
	d.step = stepBranchHours
	b.reply(chatID, "Enter the working hours, e.g. 09:00 - 18:00:", nil)
}

func (b *Bot) stepBranchHours(chatID int64, msg *tgbotapi.Message, d *dialog) {
	if msg.Text == "" {
		b.reply(chatID, "Enter the working hours:", nil)
		return
	}
	d.branch.Hours = msg.Text
	d.step = stepBranchLocation
	b.reply(chatID, "Now send the branch location (attach > location):", nil)
}

func (b *Bot) stepBranchLocation(ctx context.Context, chatID int64, msg *tgbotapi.Message, d *dialog) {
	if msg.Location == nil {
		b.reply(chatID, "Send a location message to pin the branch on the map.", nil)
		return
	}
	d.branch.Latitude = msg.Location.Latitude
	d.branch.Longitude = msg.Location.Longitude

	branch := d.branch
	b.states.reset(chatID)

	seq, err := b.branches.SaveBranch(ctx, branch)
	if err != nil {
		b.logger.Warn("branch save failed", zap.Error(err))
		b.reply(chatID, "Could not save the branch, check the logs.", mainMenuKeyboard())
		return
	}
	b.reply(chatID, fmt.Sprintf("Branch %d saved: %s", seq, branch.Name), mainMenuKeyboard())
}

func formatBranch(b domain.Branch) string {
	return fmt.Sprintf("%s\nAddress: %s\nPhone: %s\nHours: %s", b.Name, b.Address, b.Phone, b.Hours)
}

func formatBranchList(branches []domain.Branch) string {
	var sb strings.Builder
	sb.WriteString("Our branches:\n\n")
	for _, b := range branches {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s, %s\n\n", b.Seq, b.Name, b.Address, b.Phone, b.Hours)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// --- required channels ---

// handleChannelAdmin serves /channels: bare lists the set, "add" and
// "del" edit the runtime part. Channels from the environment are
// permanent and cannot be removed here.
func (b *Bot) handleChannelAdmin(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	if len(args) == 0 {
		b.listChannels(ctx, chatID)
		return
	}
	if len(args) < 2 {
		b.reply(chatID, "Usage: /channels, /channels add <@name|t.me/name|-100id>, /channels del <ref>", nil)
		return
	}

	ref, ok := normalizeChannel(args[1])
	if !ok {
		b.reply(chatID, "Bad channel reference. Send @name, t.me/name or a -100... id.", nil)
		return
	}

	switch args[0] {
	case "add":
		added, err := b.channels.AddChannel(ctx, ref)
		if err != nil {
			b.logger.Warn("channel add failed", zap.Error(err))
			b.reply(chatID, "Could not save the channel, check the logs.", nil)
			return
		}
		if !added {
			b.reply(chatID, "Already on the list.", nil)
			return
		}
		b.reply(chatID, fmt.Sprintf("Channel %s is now required.", ref), nil)
	case "del":
		for _, permanent := range b.cfg.RequiredChannels {
			if permanent == ref {
				b.reply(chatID, "That channel is permanent and cannot be removed.", nil)
				return
			}
		}
		if err := b.channels.RemoveChannel(ctx, ref); err != nil {
			b.reply(chatID, fmt.Sprintf("%s is not on the list.", ref), nil)
			return
		}
		b.reply(chatID, fmt.Sprintf("Channel %s removed.", ref), nil)
	default:
		b.reply(chatID, "Usage: /channels, /channels add <ref>, /channels del <ref>", nil)
	}
}

func (b *Bot) listChannels(ctx context.Context, chatID int64) {
	var sb strings.Builder
	sb.WriteString("Required channels:\n")
	for _, ch := range b.cfg.RequiredChannels {
		fmt.Fprintf(&sb, "- %s (permanent)\n", ch)
	}
	extra, err := b.channels.ListChannels(ctx)
	if err != nil {
		b.logger.Warn("channel list failed", zap.Error(err))
	}
	for _, ch := range extra {
		fmt.Fprintf(&sb, "- %s\n", ch)
	}
	if len(b.cfg.RequiredChannels)+len(extra) == 0 {
		sb.WriteString("(none)\n")
	}
	sb.WriteString("\n/channels add <ref> - require one more\n/channels del <ref> - stop requiring")
	b.reply(chatID, sb.String(), nil)
}

// requiredChannels merges the permanent environment list with the
// runtime-managed one, deduplicated.
func (b *Bot) requiredChannels(ctx context.Context) []string {
	out := append([]string(nil), b.cfg.RequiredChannels...)
	extra, err := b.channels.ListChannels(ctx)
	if err != nil {
		b.logger.Warn("channel list failed", zap.Error(err))
		return out
	}
	seen := make(map[string]bool, len(out))
	for _, ch := range out {
		seen[ch] = true
	}
	for _, ch := range extra {
		if !seen[ch] {
			seen[ch] = true
			out = append(out, ch)
		}
	}
	return out
}
