package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
	"github.com/tourvia/commission-service/pkg/observability"
)

// CachedAdapter decorates a RateSource with a redis cache. Rate tables are
// versioned by effective date and change rarely, so found rates are cached;
// misses, timeouts and errors are never cached (they must stay visible so
// posting keeps failing closed until the table is fixed).
type CachedAdapter struct {
	source ports.RateSource
	client *redis.Client
	ttl    time.Duration
	logger ports.Logger
}

// NewCachedAdapter wraps a rate source with a redis cache
func NewCachedAdapter(source ports.RateSource, client *redis.Client, ttl time.Duration, logger ports.Logger) *CachedAdapter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedAdapter{source: source, client: client, ttl: ttl, logger: logger}
}

// CommissionRate returns the cached commission rate or falls through to the
// underlying source
func (c *CachedAdapter) CommissionRate(ctx context.Context, role models.ProfileRole, productCategory string, asOf time.Time) ports.RateResult {
	// Rates version by effective date, so the day is enough cache key
	key := fmt.Sprintf("rates:commission:%s:%s:%s", role, productCategory, asOf.UTC().Format("2006-01-02"))
	return c.lookup(ctx, "commission", key, func() ports.RateResult {
		return c.source.CommissionRate(ctx, role, productCategory, asOf)
	})
}

// WithholdingRate returns the cached withholding rate or falls through to
// the underlying source
func (c *CachedAdapter) WithholdingRate(ctx context.Context, jurisdiction string) ports.RateResult {
	key := "rates:withholding:" + jurisdiction
	return c.lookup(ctx, "withholding", key, func() ports.RateResult {
		return c.source.WithholdingRate(ctx, jurisdiction)
	})
}

func (c *CachedAdapter) lookup(ctx context.Context, kind, key string, miss func() ports.RateResult) ports.RateResult {
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if rate, perr := decimal.NewFromString(cached); perr == nil {
			observability.RecordRateLookup(kind, "cache_hit")
			return ports.RateResult{Rate: rate, Outcome: ports.RateOutcomeFound}
		}
		// Corrupt cache entry: drop it and fall through
		c.client.Del(ctx, key)
	}

	result := miss()
	if result.Outcome == ports.RateOutcomeFound {
		if err := c.client.Set(ctx, key, result.Rate.String(), c.ttl).Err(); err != nil {
			c.logger.Warn("failed to cache rate", ports.String("key", key), ports.Err(err))
		}
	}
	return result
}
