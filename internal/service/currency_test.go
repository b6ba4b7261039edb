package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/cache"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
)

type fakeRateFetcher struct {
	calls int
	board *domain.RateBoard
	err   error
}

func (f *fakeRateFetcher) FetchRates(context.Context) (*domain.RateBoard, error) {
	f.calls++
	return f.board, f.err
}

func TestRates_CachesBoard(t *testing.T) {
	fetcher := &fakeRateFetcher{board: &domain.RateBoard{
		FetchedAt: time.Now(),
		Rates:     []domain.BankRate{{Bank: "NBU", Buy: 12650, Sell: 12720}},
	}}
	svc := NewCurrencyService(fetcher, cache.New[domain.RateBoard](time.Minute), observability.NewMetrics(), zap.NewNop())

	first, err := svc.Rates(context.Background())
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	second, err := svc.Rates(context.Background())
	if err != nil {
		t.Fatalf("Rates (cached): %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
	if len(first.Rates) != 1 || len(second.Rates) != 1 {
		t.Errorf("unexpected boards: %+v / %+v", first, second)
	}
}

func TestRates_FetchError(t *testing.T) {
	fetcher := &fakeRateFetcher{err: &domain.ErrExternalService{Service: "currency", Err: errors.New("empty page")}}
	svc := NewCurrencyService(fetcher, cache.New[domain.RateBoard](time.Minute), observability.NewMetrics(), zap.NewNop())

	if _, err := svc.Rates(context.Background()); err == nil {
		t.Fatal("expected error from fetcher")
	}

	// Errors are never cached.
	if _, err := svc.Rates(context.Background()); err == nil {
		t.Fatal("expected error again")
	}
	if fetcher.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", fetcher.calls)
	}
}
