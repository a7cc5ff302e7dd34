package orders

import (
	"context"
	"strings"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/google/uuid"
)

type Submitter interface {
	Submit(ctx context.Context, req domain.OrderRequest) (*domain.OrderConfirmation, error)
}

// NewOrderReference returns "ORD" followed by 8 random uppercase alphanumerics. There is no
// persistence to collide against, so no uniqueness check is made.
func NewOrderReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD" + strings.ToUpper(raw[:8])
}
