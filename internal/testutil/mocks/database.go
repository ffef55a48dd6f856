package mocks

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/mock"
	"github.com/tourvia/commission-service/internal/domain/models"
	"github.com/tourvia/commission-service/internal/domain/ports"
)

// MockDBPort mocks ports.DBPort. WithTransaction runs the callback with a
// nil pgx.Tx; repositories under test are mocked so the tx handle is never
// dereferenced.
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx, nil)
}

// ExpectTransaction sets up WithTransaction to run its callback
func (m *MockDBPort) ExpectTransaction() *mock.Call {
	return m.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
}

// ExpectReadOnlyTransaction sets up WithReadOnlyTransaction to run its callback
func (m *MockDBPort) ExpectReadOnlyTransaction() *mock.Call {
	return m.On("WithReadOnlyTransaction", mock.Anything, mock.Anything).Return(nil)
}

// MockRateSource mocks ports.RateSource
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) CommissionRate(ctx context.Context, role models.ProfileRole, productCategory string, asOf time.Time) ports.RateResult {
	args := m.Called(ctx, role, productCategory, asOf)
	return args.Get(0).(ports.RateResult)
}

func (m *MockRateSource) WithholdingRate(ctx context.Context, jurisdiction string) ports.RateResult {
	args := m.Called(ctx, jurisdiction)
	return args.Get(0).(ports.RateResult)
}

// NopLogger is a ports.Logger that discards everything
type NopLogger struct{}

func (NopLogger) Info(msg string, fields ...ports.Field)  {}
func (NopLogger) Error(msg string, fields ...ports.Field) {}
func (NopLogger) Warn(msg string, fields ...ports.Field)  {}
func (NopLogger) Debug(msg string, fields ...ports.Field) {}
