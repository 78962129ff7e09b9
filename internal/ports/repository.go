package ports

import (
	"context"
	"time"

	"github.com/flowlens/flowlens/internal/domain"
)

// TicketStore persists synced tickets and per-project sync metadata.
type TicketStore interface {
	// UpsertTickets inserts or replaces tickets by key within one
	// transaction.
	UpsertTickets(ctx context.Context, project string, tickets []*domain.Ticket) error
	// ListByProject returns every stored ticket for the project.
	ListByProject(ctx context.Context, project string) ([]*domain.Ticket, error)
	// CountByProject returns the number of stored tickets for the project.
	CountByProject(ctx context.Context, project string) (int, error)
	// ProjectMeta returns the sync metadata, or domain.ErrProjectNotFound
	// when the project was never synced.
	ProjectMeta(ctx context.Context, project string) (*domain.ProjectSyncMeta, error)
	// UpdateProjectMeta records a completed sync.
	UpdateProjectMeta(ctx context.Context, project string, syncedAt time.Time, totalTickets int) error
	// DeleteProject removes the project's tickets and metadata.
	DeleteProject(ctx context.Context, project string) error
}

// TicketCache is a read-through cache in front of the store. A miss is
// not an error; the boolean result distinguishes miss from hit.
type TicketCache interface {
	GetTickets(ctx context.Context, project string) ([]*domain.Ticket, bool, error)
	SetTickets(ctx context.Context, project string, tickets []*domain.Ticket) error
	Invalidate(ctx context.Context, project string) error
}
