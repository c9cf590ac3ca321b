package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/erp/stocktransfer/internal/domain/transfer"
	"github.com/google/uuid"
)

const refNoAttempts = 5

// DatedRefNoGenerator builds reference numbers like ST2026-10-16-4F2A9C.
// The suffix is random; collisions are checked against the repository.
type DatedRefNoGenerator struct {
	now func() time.Time
}

// NewDatedRefNoGenerator creates a DatedRefNoGenerator
func NewDatedRefNoGenerator() *DatedRefNoGenerator {
	return &DatedRefNoGenerator{now: time.Now}
}

// Next returns an unused reference number for kind
func (g *DatedRefNoGenerator) Next(ctx context.Context, repo transfer.TransactionRepository, tenantID uuid.UUID, kind transfer.Kind) (string, error) {
	for range refNoAttempts {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		refNo := fmt.Sprintf("%s%s-%s", refNoPrefix(kind), g.now().Format(time.DateOnly), suffix)
		exists, err := repo.ExistsByRefNo(ctx, tenantID, kind, refNo)
		if err != nil {
			return "", fmt.Errorf("check reference number: %w", err)
		}
		if !exists {
			return refNo, nil
		}
	}
	return "", shared.NewDomainError(shared.CodeAlreadyExists, "could not allocate a free reference number")
}

func refNoPrefix(kind transfer.Kind) string {
	switch kind {
	case transfer.KindSellTransfer, transfer.KindPurchaseTransfer:
		return "ST"
	case transfer.KindPurchase:
		return "PO"
	default:
		return "OS"
	}
}
