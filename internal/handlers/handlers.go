package handlers

import (
	"github.com/tourvia/commission-service/internal/domain/ports"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers for dependency injection. Keep these
// thin: parse and validate input, call the service ports, return JSON.
type Handlers struct {
	Ledger        ports.LedgerService
	Adjustments   ports.AdjustmentService
	Settlements   ports.SettlementService
	Relationships ports.RelationshipService
	Logger        *zap.Logger
}

func New(
	ledger ports.LedgerService,
	adjustments ports.AdjustmentService,
	settlements ports.SettlementService,
	relationships ports.RelationshipService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		Ledger:        ledger,
		Adjustments:   adjustments,
		Settlements:   settlements,
		Relationships: relationships,
		Logger:        logger,
	}
}
