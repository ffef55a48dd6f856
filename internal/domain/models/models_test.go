package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodOf(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)

	tests := []struct {
		name string
		t    time.Time
		want Period
	}{
		{"mid month", time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), "2026-03"},
		{"first instant", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "2026-03"},
		{"last instant", time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC), "2026-03"},
		// 2026-04-01 08:00 KST is still 2026-03-31 23:00 UTC
		{"zone normalized to UTC", time.Date(2026, 4, 1, 8, 0, 0, 0, kst), "2026-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodOf(tt.t))
		})
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2026-03")
	require.NoError(t, err)
	assert.Equal(t, Period("2026-03"), p)

	for _, bad := range []string{"", "2026", "2026-3", "2026-13", "03-2026", "2026-03-15"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, "period %q must not parse", bad)
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end := Period("2026-03").Bounds()
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), end)

	// December rolls into the next year
	start, end = Period("2026-12").Bounds()
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestLedgerLineRecompute(t *testing.T) {
	tests := []struct {
		name            string
		gross           int64
		withholdingRate string
		wantWithholding int64
		wantNet         int64
	}{
		{"exact split", 100_000, "3.3", 3_300, 96_700},
		{"flooring", 9_999, "3.3", 329, 9_670},
		{"zero withholding", 50_000, "0", 0, 50_000},
		{"zero gross", 0, "3.3", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := &LedgerLine{
				GrossAmount:     tt.gross,
				WithholdingRate: decimal.RequireFromString(tt.withholdingRate),
			}
			line.Recompute()
			assert.Equal(t, tt.wantWithholding, line.WithholdingAmount)
			assert.Equal(t, tt.wantNet, line.NetAmount)
			assert.Equal(t, line.GrossAmount, line.NetAmount+line.WithholdingAmount)
		})
	}
}

func TestRelationCoversInstant(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	open := &AffiliateRelation{EffectiveFrom: from}
	assert.False(t, open.CoversInstant(from.Add(-time.Second)))
	assert.True(t, open.CoversInstant(from), "interval start is inclusive")
	assert.True(t, open.CoversInstant(from.AddDate(10, 0, 0)), "open episode has no upper bound")

	closed := &AffiliateRelation{EffectiveFrom: from, EffectiveUntil: &until}
	assert.True(t, closed.CoversInstant(until.Add(-time.Second)))
	assert.False(t, closed.CoversInstant(until), "interval end is exclusive")
}
