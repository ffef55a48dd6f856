package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/pkg/observability"
)

// HTTPAdapterConfig configures the rate-table HTTP client
type HTTPAdapterConfig struct {
	// BaseURL of the rate-table service, e.g. https://rates.internal/v1
	BaseURL string

	// Timeout per lookup. Kept short: the posting operation fails closed
	// on timeout rather than guessing a rate.
	Timeout time.Duration
}

// DefaultHTTPAdapterConfig returns production defaults
func DefaultHTTPAdapterConfig(baseURL string) *HTTPAdapterConfig {
	return &HTTPAdapterConfig{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}
}

// HTTPAdapter implements ports.RateSource against the externally configured,
// versioned rate-table service
type HTTPAdapter struct {
	config *HTTPAdapterConfig
	client *http.Client
	logger ports.Logger
}

// NewHTTPAdapter creates a new rate-table HTTP adapter
func NewHTTPAdapter(config *HTTPAdapterConfig, logger ports.Logger) *HTTPAdapter {
	return &HTTPAdapter{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

type rateResponse struct {
	Rate string `json:"rate"`
}

// CommissionRate looks up the commission percentage for a role and product
// category as of the sale date
func (a *HTTPAdapter) CommissionRate(ctx context.Context, role models.ProfileRole, productCategory string, asOf time.Time) ports.RateResult {
	endpoint := fmt.Sprintf("%s/commission-rates?role=%s&category=%s&as_of=%s",
		a.config.BaseURL,
		url.QueryEscape(string(role)),
		url.QueryEscape(productCategory),
		url.QueryEscape(asOf.UTC().Format(time.RFC3339)))
	return a.lookup(ctx, "commission", endpoint)
}

// WithholdingRate looks up the tax withholding percentage for a jurisdiction
func (a *HTTPAdapter) WithholdingRate(ctx context.Context, jurisdiction string) ports.RateResult {
	endpoint := fmt.Sprintf("%s/withholding-rates?jurisdiction=%s",
		a.config.BaseURL, url.QueryEscape(jurisdiction))
	return a.lookup(ctx, "withholding", endpoint)
}

func (a *HTTPAdapter) lookup(ctx context.Context, kind, endpoint string) ports.RateResult {
	result := a.fetch(ctx, endpoint)
	observability.RecordRateLookup(kind, strings.ToLower(string(result.Outcome)))
	return result
}

func (a *HTTPAdapter) fetch(ctx context.Context, endpoint string) ports.RateResult {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ports.RateResult{Outcome: ports.RateOutcomeError, Err: err}
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			a.logger.Warn("rate lookup timed out", ports.String("endpoint", endpoint))
			return ports.RateResult{Outcome: ports.RateOutcomeTimeout, Err: err}
		}
		return ports.RateResult{Outcome: ports.RateOutcomeError, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return ports.RateResult{Outcome: ports.RateOutcomeNotFound}
	default:
		return ports.RateResult{
			Outcome: ports.RateOutcomeError,
			Err:     fmt.Errorf("rate table returned status %d", resp.StatusCode),
		}
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ports.RateResult{Outcome: ports.RateOutcomeError, Err: fmt.Errorf("decode rate response: %w", err)}
	}
	rate, err := decimal.NewFromString(body.Rate)
	if err != nil {
		return ports.RateResult{Outcome: ports.RateOutcomeError, Err: fmt.Errorf("parse rate %q: %w", body.Rate, err)}
	}
	return ports.RateResult{Rate: rate, Outcome: ports.RateOutcomeFound}
}
