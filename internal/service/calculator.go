// Package service holds the bot's business rules: schedule preparation,
// broadcast fan-out, advertising quota control and currency boards. The
// transport layer stays thin and delegates here.
package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
	"github.com/fortunamfo/branchbot/internal/loan"
	"github.com/fortunamfo/branchbot/internal/port"
)

var tracer = otel.Tracer("service")

// ScheduleDocument is one rendered repayment plan ready for delivery.
type ScheduleDocument struct {
	Blob     []byte
	Filename string
	Caption  string
}

// Calculator validates calculator input against product bounds, runs the
// amortization engine for both plans and renders the report documents.
type Calculator struct {
	renderer port.ScheduleRenderer
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCalculator creates the calculator service.
func NewCalculator(renderer port.ScheduleRenderer, metrics *observability.Metrics, logger *zap.Logger) *Calculator {
	return &Calculator{renderer: renderer, metrics: metrics, logger: logger}
}

// CheckPrincipal enforces the product's principal bounds. Called by the
// dialog before the engine ever sees the value.
func (c *Calculator) CheckPrincipal(p domain.Product, amount float64) error {
	if amount < p.MinPrincipal || amount > p.MaxPrincipal {
		return &domain.ErrOutOfRange{Field: "principal", Min: p.MinPrincipal, Max: p.MaxPrincipal}
	}
	return nil
}

// CheckTerm enforces the product's term bounds.
func (c *Calculator) CheckTerm(p domain.Product, months int) error {
	if months < p.MinMonths || months > p.MaxMonths {
		return &domain.ErrOutOfRange{Field: "term", Min: float64(p.MinMonths), Max: float64(p.MaxMonths)}
	}
	return nil
}

// BuildReports computes the annuity and the differentiated schedule for
// the given terms and renders each into a document. Titles carry the
// product name, the term and the plan kind, the way the branch's printed
// offers do.
func (c *Calculator) BuildReports(ctx context.Context, title string, principal, ratePercent float64, months int, grace bool) ([]ScheduleDocument, error) {
	_, span := tracer.Start(ctx, "Calculator.BuildReports")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("loan.principal", principal),
		attribute.Float64("loan.rate", ratePercent),
		attribute.Int("loan.months", months),
	)

	kinds := []struct {
		kind  domain.ScheduleKind
		label string
	}{
		{domain.Annuity, "Annuity"},
		{domain.Differentiated, "Differentiated"},
	}

	docs := make([]ScheduleDocument, 0, len(kinds))
	for _, k := range kinds {
		start := time.Now()
		schedule, err := loan.ComputeSchedule(domain.ScheduleRequest{
			Principal:         principal,
			AnnualRatePercent: ratePercent,
			TermMonths:        months,
			GraceFirstMonth:   grace,
			Kind:              k.kind,
		})
		c.metrics.RecordScheduleDuration(string(k.kind), time.Since(start))
		if err != nil {
			c.metrics.IncrSchedule("error")
			c.logger.Warn("schedule computation rejected",
				zap.Float64("principal", principal),
				zap.Int("months", months),
				zap.Error(err),
			)
			return nil, err
		}
		c.metrics.IncrSchedule("success")

		table := loan.BuildTable(schedule, fmt.Sprintf("%s - %d months | %s", title, months, k.label))
		blob, filename, err := c.renderer.Render(table)
		if err != nil {
			return nil, &domain.ErrExternalService{Service: "render", Err: err}
		}

		docs = append(docs, ScheduleDocument{
			Blob:     blob,
			Filename: filename,
			Caption:  fmt.Sprintf("%s schedule", k.label),
		})
	}

	c.logger.Info("schedules rendered",
		zap.String("title", title),
		zap.Float64("principal", principal),
		zap.Int("months", months),
		zap.Bool("grace", grace),
	)
	return docs, nil
}
