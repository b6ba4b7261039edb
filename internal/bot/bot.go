// Package bot is the Telegram transport: it owns the long-poll loop,
// the per-chat dialog state and the keyboards, and delegates every
// business decision to the service layer.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/config"
	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
	"github.com/fortunamfo/branchbot/internal/port"
	"github.com/fortunamfo/branchbot/internal/service"
)

// ratesRenderer renders a bank rate board into a document.
type ratesRenderer interface {
	RenderRates(board *domain.RateBoard, title string) ([]byte, string, error)
}

// Bot wires the Telegram API to the services.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	metrics *observability.Metrics
	logger  *zap.Logger

	states *states

	calc        *service.Calculator
	broadcaster *service.Broadcaster
	quota       *service.QuotaService
	currency    *service.CurrencyService
	subscribers port.SubscriberStore
	vacancies   port.VacancyStore
	branches    port.BranchStore
	channels    port.ChannelStore
	exporter    port.RegistryExporter
	rates       ratesRenderer
}

// Deps bundles the bot's collaborators to keep New readable. The
// broadcaster is injected later via SetBroadcaster because it needs the
// bot itself as its deliverer.
type Deps struct {
	Calculator  *service.Calculator
	Quota       *service.QuotaService
	Currency    *service.CurrencyService
	Subscribers port.SubscriberStore
	Vacancies   port.VacancyStore
	Branches    port.BranchStore
	Channels    port.ChannelStore
	Exporter    port.RegistryExporter
	Rates       ratesRenderer
}

// New creates the bot around an authorized API client.
func New(api *tgbotapi.BotAPI, cfg *config.Config, deps Deps, metrics *observability.Metrics, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger,
		states:      newStates(),
		calc:        deps.Calculator,
		quota:       deps.Quota,
		currency:    deps.Currency,
		subscribers: deps.Subscribers,
		vacancies:   deps.Vacancies,
		branches:    deps.Branches,
		channels:    deps.Channels,
		exporter:    deps.Exporter,
		rates:       deps.Rates,
	}
}

// SetBroadcaster injects the broadcaster after construction. The
// broadcaster needs the bot as its deliverer, so the two are wired in
// two steps.
func (b *Bot) SetBroadcaster(br *service.Broadcaster) {
	b.broadcaster = br
}

// Run consumes the long-poll update stream until ctx is cancelled.
// Each update is handled in its own goroutine; dispatch takes the
// chat's lock for the whole handler, so updates for one conversation
// are applied strictly one at a time while chats stay concurrent.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("bot stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("update handler panicked", zap.Any("panic", r))
		}
	}()

	if chatID, ok := conversationID(update); ok {
		unlock := b.states.lock(chatID)
		defer unlock()
	}

	switch {
	case update.CallbackQuery != nil:
		b.metrics.IncrUpdate("callback")
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		msg := update.Message
		if msg.Chat.ID == b.cfg.GroupID {
			b.metrics.IncrUpdate("group")
			b.handleGroupMessage(ctx, msg)
			return
		}
		if msg.Chat.IsPrivate() {
			b.metrics.IncrUpdate("private")
			b.handlePrivateMessage(ctx, msg)
		}
	}
}

// conversationID extracts the chat the update belongs to, for the
// per-chat handler lock.
func conversationID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	case update.Message != nil:
		return update.Message.Chat.ID, true
	}
	return 0, false
}

// handlePrivateMessage routes a private-chat message through commands,
// menu buttons and the dialog state machine, in that order.
func (b *Bot) handlePrivateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Text == btnCancel {
		b.states.reset(chatID)
		b.reply(chatID, "Cancelled.", mainMenuKeyboard())
		return
	}

	d := b.states.get(chatID)
	if d.step != stepIdle {
		b.continueDialog(ctx, msg, d)
		return
	}

	switch msg.Text {
	case btnCalculator:
		b.startCalculator(ctx, chatID)
	case btnRates:
		b.sendRates(ctx, chatID)
	case btnContacts:
		b.sendContacts(chatID)
	case btnLocation:
		b.sendLocation(chatID)
	case btnBranches:
		b.showBranchMenu(chatID)
	case btnVacancies:
		b.showVacancies(ctx, chatID)
	default:
		b.reply(chatID, "Pick an option from the menu below.", mainMenuKeyboard())
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "cancel":
		b.states.reset(chatID)
		b.reply(chatID, "Cancelled.", mainMenuKeyboard())
	case "done":
		// Closes a broadcast bundle; meaningless outside collection.
		if d := b.states.get(chatID); d.step == stepBroadcastCollect && b.isAdmin(msg.From) {
			b.collectBroadcastItem(chatID, msg, d)
			return
		}
		b.reply(chatID, "Nothing to finish.", nil)
	case "rates":
		b.sendRates(ctx, chatID)
	case "address":
		b.sendLocation(chatID)
		b.sendContacts(chatID)
	case "vacancies":
		b.showVacancies(ctx, chatID)
	case "branches":
		// Admin manages the directory; everyone else browses it.
		if b.isAdmin(msg.From) {
			b.handleBranchAdmin(ctx, msg)
			return
		}
		b.showBranchMenu(chatID)
	case "loan", "broadcast", "export", "stats", "report", "job", "channels":
		if !b.isAdmin(msg.From) {
			b.reply(chatID, "This command is for the branch administrator.", nil)
			return
		}
		b.handleAdminCommand(ctx, msg)
	default:
		b.reply(chatID, "Unknown command. Use the menu below.", mainMenuKeyboard())
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Always answer so the client stops the spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Debug("callback ack failed", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == "recheck":
		b.handleStartRecheck(ctx, cb)
	case data == "products":
		b.startCalculator(ctx, chatID)
	case strings.HasPrefix(data, "product:"):
		b.showProductCard(chatID, strings.TrimPrefix(data, "product:"))
	case strings.HasPrefix(data, "calc:"):
		b.beginProductDialog(chatID, strings.TrimPrefix(data, "calc:"))
	case data == "branches:list":
		b.listBranches(ctx, chatID)
	case data == "branches:nearest":
		b.askUserLocation(chatID)
	case data == "vac:add":
		if b.isAdmin(cb.From) {
			b.startVacancyPost(chatID)
		}
	case data == "vac:list":
		if b.isAdmin(cb.From) {
			b.reviewVacancies(ctx, chatID)
		}
	case strings.HasPrefix(data, "vac:del:"):
		if b.isAdmin(cb.From) {
			b.deleteVacancy(ctx, chatID, strings.TrimPrefix(data, "vac:del:"))
		}
	case data == "bcast:send", data == "bcast:drop":
		if b.isAdmin(cb.From) {
			b.handleBroadcastDecision(ctx, chatID, data == "bcast:send")
		}
	}
}

// Deliver implements the broadcast delivery contract: it sends every
// queued item to one chat, stopping at the first failure.
func (b *Bot) Deliver(_ context.Context, chatID int64, items []domain.BroadcastItem) error {
	for _, item := range items {
		var c tgbotapi.Chattable
		switch item.Type {
		case domain.BroadcastText:
			c = tgbotapi.NewMessage(chatID, item.Text)
		case domain.BroadcastPhoto:
			photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(item.FileID))
			photo.Caption = item.Caption
			c = photo
		case domain.BroadcastLocation:
			c = tgbotapi.NewLocation(chatID, item.Latitude, item.Longitude)
		case domain.BroadcastForward:
			fromChat, err := parseChatRef(item.FromChat)
			if err != nil {
				return err
			}
			c = tgbotapi.NewForward(chatID, fromChat, item.MessageID)
		default:
			continue
		}
		if _, err := b.api.Send(c); err != nil {
			return err
		}
	}
	return nil
}

// reply sends a plain text message, optionally with a keyboard.
func (b *Bot) reply(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("send failed", zap.Error(err))
	}
}

// sendDocument pushes a file blob to a chat.
func (b *Bot) sendDocument(chatID int64, blob []byte, filename, caption string) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: blob})
	doc.Caption = caption
	b.send(doc)
}

func (b *Bot) isAdmin(user *tgbotapi.User) bool {
	return user != nil && user.ID == b.cfg.AdminID
}

// parseChatRef resolves a forward source: "@username" stays a username,
// anything else must be a numeric chat id.
func parseChatRef(ref string) (int64, error) {
	if strings.HasPrefix(ref, "@") {
		return 0, fmt.Errorf("username forward sources are not supported: %s", ref)
	}
	var id int64
	if _, err := fmt.Sscanf(ref, "%d", &id); err != nil {
		return 0, fmt.Errorf("bad chat reference %q: %w", ref, err)
	}
	return id, nil
}
