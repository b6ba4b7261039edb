package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/loan"
)

// Admin free-form calculator bounds. The product dialogs enforce the
// catalog limits instead.
const (
	freeMinPrincipal = 100_000
	freeMaxPrincipal = 1_000_000_000
	freeMinMonths    = 1
	freeMaxMonths    = 300
)

// startCalculator shows the product list.
func (b *Bot) startCalculator(_ context.Context, chatID int64) {
	b.states.reset(chatID)
	msg := tgbotapi.NewMessage(chatID, "Choose a loan product:")
	msg.ReplyMarkup = productKeyboard()
	b.send(msg)
}

// showProductCard prints the product's terms with a calculate button.
func (b *Bot) showProductCard(chatID int64, code string) {
	p, ok := domain.ProductByCode(code)
	if !ok {
		b.reply(chatID, "That product is no longer offered.", nil)
		return
	}
	msg := tgbotapi.NewMessage(chatID, p.Info)
	msg.ReplyMarkup = productCardKeyboard(p.Code)
	b.send(msg)
}

// beginProductDialog starts collecting calculator input for a product.
func (b *Bot) beginProductDialog(chatID int64, code string) {
	p, ok := domain.ProductByCode(code)
	if !ok {
		b.reply(chatID, "That product is no longer offered.", nil)
		return
	}

	d := b.states.get(chatID)
	*d = dialog{step: stepAwaitPrincipal, product: p}

	b.reply(chatID, fmt.Sprintf(
		"Enter the loan amount in soum (%s - %s):",
		loan.FormatAmount(p.MinPrincipal), loan.FormatAmount(p.MaxPrincipal),
	), cancelKeyboard())
}

// continueDialog advances a non-idle conversation by one message.
func (b *Bot) continueDialog(ctx context.Context, msg *tgbotapi.Message, d *dialog) {
	chatID := msg.Chat.ID
	switch d.step {
	case stepAwaitPrincipal:
		b.stepPrincipal(chatID, msg.Text, d)
	case stepAwaitVehicleYear:
		b.stepVehicleYear(chatID, msg.Text, d)
	case stepAwaitTerm:
		b.stepTerm(ctx, chatID, msg.Text, d)
	case stepAdminPrincipal:
		b.stepAdminPrincipal(chatID, msg.Text, d)
	case stepAdminRate:
		b.stepAdminRate(chatID, msg.Text, d)
	case stepAdminTerm:
		b.stepAdminTerm(ctx, chatID, msg.Text, d)
	case stepBroadcastCollect:
		b.collectBroadcastItem(chatID, msg, d)
	case stepBroadcastConfirm:
		b.reply(chatID, "Use the buttons above to send or discard the broadcast.", nil)
	case stepVacancyPhoto:
		b.stepVacancyPhoto(ctx, chatID, msg, d)
	case stepVacancyText:
		b.stepVacancyText(ctx, chatID, msg, d)
	case stepBranchName:
		b.stepBranchName(chatID, msg, d)
	case stepBranchAddress:
		b.stepBranchAddress(chatID, msg, d)
	case stepBranchPhone:
		b.stepBranchPhone(chatID, msg, d)
	case stepBranchHours:
		b.stepBranchHours(chatID, msg, d)
	case stepBranchLocation:
		b.stepBranchLocation(ctx, chatID, msg, d)
	case stepAwaitLocation:
		b.stepUserLocation(ctx, chatID, msg, d)
	default:
		b.states.reset(chatID)
		b.reply(chatID, "Let's start over.", mainMenuKeyboard())
	}
}

func (b *Bot) stepPrincipal(chatID int64, text string, d *dialog) {
	amount, ok := parseAmount(text)
	if !ok {
		b.reply(chatID, "Enter the amount in digits, e.g. 5 000 000.", nil)
		return
	}
	if err := b.calc.CheckPrincipal(d.product, amount); err != nil {
		b.reply(chatID, fmt.Sprintf(
			"The amount must be between %s and %s soum.",
			loan.FormatAmount(d.product.MinPrincipal), loan.FormatAmount(d.product.MaxPrincipal),
		), nil)
		return
	}

	d.principal = amount
	if d.product.AsksVehicleYear {
		d.step = stepAwaitVehicleYear
		b.reply(chatID, "Enter the pledged vehicle's year of manufacture:", nil)
		return
	}
	d.step = stepAwaitTerm
	b.askTerm(chatID, d.product)
}

func (b *Bot) stepVehicleYear(chatID int64, text string, d *dialog) {
	year, ok := parseYear(text)
	if !ok {
		b.reply(chatID, "Enter a four-digit year, e.g. 2015.", nil)
		return
	}
	d.vehicleYear = year
	d.step = stepAwaitTerm
	b.askTerm(chatID, d.product)
}

func (b *Bot) askTerm(chatID int64, p domain.Product) {
	if p.MinMonths == p.MaxMonths {
		b.reply(chatID, fmt.Sprintf("The term is fixed at %d months. Enter %d to continue:", p.MinMonths, p.MinMonths), nil)
		return
	}
	b.reply(chatID, fmt.Sprintf("Enter the term in months (%d - %d):", p.MinMonths, p.MaxMonths), nil)
}

func (b *Bot) stepTerm(ctx context.Context, chatID int64, text string, d *dialog) {
	months, ok := parseMonths(text)
	if !ok {
		b.reply(chatID, "Enter the term in digits, e.g. 18.", nil)
		return
	}
	if err := b.calc.CheckTerm(d.product, months); err != nil {
		b.reply(chatID, fmt.Sprintf(
			"The term must be between %d and %d months.",
			d.product.MinMonths, d.product.MaxMonths,
		), nil)
		return
	}

	p := d.product
	rate := p.AdjustedRate(d.vehicleYear)
	b.finishCalculation(ctx, chatID, p.Name, d.principal, rate, months, p.GraceFirstMonth)
}

// finishCalculation renders both plans and sends them as documents.
func (b *Bot) finishCalculation(ctx context.Context, chatID int64, title string, principal, rate float64, months int, grace bool) {
	b.states.reset(chatID)
	b.reply(chatID, "Preparing your repayment schedules...", mainMenuKeyboard())

	docs, err := b.calc.BuildReports(ctx, title, principal, rate, months, grace)
	if err != nil {
		b.logger.Warn("schedule build failed",
			zap.Float64("principal", principal),
			zap.Int("months", months),
			zap.Error(err),
		)
		b.reply(chatID, "Could not prepare the schedule, please check the input and try again.", nil)
		return
	}
	for _, doc := range docs {
		b.sendDocument(chatID, doc.Blob, doc.Filename, doc.Caption)
	}
}

// startFreeCalculator begins the admin's unconstrained calculation.
func (b *Bot) startFreeCalculator(chatID int64) {
	d := b.states.get(chatID)
	*d = dialog{step: stepAdminPrincipal}
	b.reply(chatID, fmt.Sprintf(
		"Free calculation. Enter the amount (%s - %s):",
		loan.FormatAmount(freeMinPrincipal), loan.FormatAmount(freeMaxPrincipal),
	), cancelKeyboard())
}

func (b *Bot) stepAdminPrincipal(chatID int64, text string, d *dialog) {
	amount, ok := parseAmount(text)
	if !ok || amount < freeMinPrincipal || amount > freeMaxPrincipal {
		b.reply(chatID, fmt.Sprintf(
			"Enter an amount between %s and %s.",
			loan.FormatAmount(freeMinPrincipal), loan.FormatAmount(freeMaxPrincipal),
		), nil)
		return
	}
	d.principal = amount
	d.step = stepAdminRate
	b.reply(chatID, "Enter the annual rate in percent, e.g. 48.5:", nil)
}

func (b *Bot) stepAdminRate(chatID int64, text string, d *dialog) {
	rate, ok := parseRate(text)
	if !ok {
		b.reply(chatID, "Enter the rate in digits, e.g. 48.5.", nil)
		return
	}
	d.rate = rate
	d.step = stepAdminTerm
	b.reply(chatID, fmt.Sprintf("Enter the term in months (%d - %d):", freeMinMonths, freeMaxMonths), nil)
}

func (b *Bot) stepAdminTerm(ctx context.Context, chatID int64, text string, d *dialog) {
	months, ok := parseMonths(text)
	if !ok || months < freeMinMonths || months > freeMaxMonths {
		b.reply(chatID, fmt.Sprintf("Enter a term between %d and %d months.", freeMinMonths, freeMaxMonths), nil)
		return
	}
	b.finishCalculation(ctx, chatID, "Custom loan", d.principal, d.rate, months, false)
}
