package ports

import (
	"context"

	"github.com/flowlens/flowlens/internal/domain"
)

// TicketSource pulls the full ticket history for a project from an
// external tracker or a fixture file. Implementations return every ticket
// with its changelog attached.
type TicketSource interface {
	FetchTickets(ctx context.Context, project string) ([]*domain.Ticket, error)
}
