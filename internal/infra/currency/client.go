// Package currency scrapes bank USD quotes from a public rates page.
// There is no structured API, so quotes are pulled out of the HTML with
// per-bank regular expressions.
package currency

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/resilience"
)

var tracer = otel.Tracer("currency")

// targetBanks maps display name to the label used on the rates page.
var targetBanks = []struct {
	Display string
	Label   string
}{
	{"Agrobank", "Agro Bank"},
	{"Mikrokreditbank", "Mikrokreditbank"},
	{"Xalq banki", "Xalq Banki"},
	{"Hamkorbank", "Hamkorbank"},
	{"Aloqabank", "AloqaBank"},
	{"Trastbank", "Trastbank"},
	{"Turon bank", "Turon Bank"},
	{"Ipoteka bank", "Ipoteka Bank"},
	{"NBU", "NBU"},
	{"Asaka bank", "Asaka Bank"},
}

// Client fetches and parses the rates page. Outbound calls go through
// the shared circuit breaker and retry policy like every other external
// dependency.
type Client struct {
	httpClient *http.Client
	url        string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a rates client.
func NewClient(httpClient *http.Client, url string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		url:        url,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// FetchRates downloads the page and extracts buy/sell quotes for the
// target banks. Banks missing from the page are skipped; an empty board
// is an error.
func (c *Client) FetchRates(ctx context.Context) (*domain.RateBoard, error) {
	ctx, span := tracer.Start(ctx, "Currency.FetchRates")
	defer span.End()

	var html string
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			page, err := c.fetch(ctx)
			if err != nil {
				return err
			}
			html = page
			return nil
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "currency", Err: err}
	}

	board := &domain.RateBoard{FetchedAt: time.Now()}
	for _, bank := range targetBanks {
		rate, ok := parseBank(html, bank.Label)
		if !ok {
			c.logger.Debug("currency: bank not found on page", zap.String("bank", bank.Display))
			continue
		}
		rate.Bank = bank.Display
		board.Rates = append(board.Rates, rate)
	}

	if len(board.Rates) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "currency",
			Err:     fmt.Errorf("no bank quotes found on %s", c.url),
		}
	}
	return board, nil
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("currency: request failed", zap.String("url", c.url), zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rates page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// parseBank finds the first two 4-6 digit numbers after the bank label:
// buy rate, then sell rate.
func parseBank(html, label string) (domain.BankRate, bool) {
	pattern := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(label) + `.*?(\d{4,6})\D+(\d{4,6})`)
	m := pattern.FindStringSubmatch(html)
	if m == nil {
		return domain.BankRate{}, false
	}
	buy, err1 := strconv.Atoi(m[1])
	sell, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return domain.BankRate{}, false
	}
	return domain.BankRate{Buy: buy, Sell: sell}, true
}
