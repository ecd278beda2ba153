package service

import (
	"context"
	"time"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/ledger"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
)

// postingFrom turns a payment request into a ledger posting recorded by the caller
func postingFrom(ctx context.Context, req *domain.RecordPaymentRequest) ledger.Posting {
	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = req.PaidAt.UTC()
	}
	return ledger.Posting{
		Amount:     mapper.Decimal(req.Amount),
		Mode:       req.Mode,
		Reference:  req.Reference,
		Notes:      req.Notes,
		PaidAt:     paidAt,
		RecordedBy: actorID(ctx),
	}
}
