package currency_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/currency"
	"github.com/fortunamfo/branchbot/internal/infra/resilience"
)

const ratesPage = `
<html><body>
<tr><td>NBU</td><td>12650</td><td>12720</td></tr>
<tr><td>Hamkorbank</td><td>12630</td><td>12740</td></tr>
<tr><td>Some Other Bank</td><td>12000</td><td>13000</td></tr>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *currency.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return currency.NewClient(
		srv.Client(),
		srv.URL,
		resilience.NewCircuitBreaker("currency-test"),
		resilience.Config{MaxRetries: 1, InitialBackoff: 5 * time.Millisecond},
		zap.NewNop(),
	)
}

func TestFetchRates_ParsesTargetBanks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(ratesPage))
	})

	board, err := c.FetchRates(context.Background())
	if err != nil {
		t.Fatalf("FetchRates: %v", err)
	}

	byBank := make(map[string]domain.BankRate)
	for _, r := range board.Rates {
		byBank[r.Bank] = r
	}

	nbu, ok := byBank["NBU"]
	if !ok {
		t.Fatal("expected NBU quote")
	}
	if nbu.Buy != 12650 || nbu.Sell != 12720 {
		t.Errorf("NBU = %+v, want buy 12650 sell 12720", nbu)
	}
	if _, ok := byBank["Some Other Bank"]; ok {
		t.Error("non-target banks must be ignored")
	}
}

func TestFetchRates_EmptyPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>no quotes today</html>"))
	})

	_, err := c.FetchRates(context.Background())
	if err == nil {
		t.Fatal("expected error when no quotes are found")
	}
	if _, ok := err.(*domain.ErrExternalService); !ok {
		t.Errorf("expected ErrExternalService, got %T", err)
	}
}

func TestFetchRates_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchRates(context.Background())
	if err == nil {
		t.Fatal("expected error on 5xx")
	}
}
