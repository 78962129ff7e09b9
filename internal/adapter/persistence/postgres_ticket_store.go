package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowlens/flowlens/internal/domain"
	"github.com/flowlens/flowlens/internal/ports"
)

// PostgresTicketStore implements TicketStore using PostgreSQL. Tickets are
// stored as one row per key with the full document in a JSON column, so
// the changelog survives round trips without a separate events table.
type PostgresTicketStore struct {
	db *sql.DB
}

// NewPostgresTicketStore creates a new PostgreSQL ticket store.
func NewPostgresTicketStore(db *sql.DB) ports.TicketStore {
	return &PostgresTicketStore{db: db}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			project_key   TEXT PRIMARY KEY,
			last_sync_at  TIMESTAMPTZ NOT NULL,
			total_tickets INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			ticket_key  TEXT PRIMARY KEY,
			project_key TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT '',
			created     TEXT NOT NULL DEFAULT '',
			resolved    TEXT,
			ticket_data JSONB NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_project ON tickets (project_key)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (project_key, status)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertTickets inserts or replaces tickets by key within one transaction.
func (s *PostgresTicketStore) UpsertTickets(ctx context.Context, project string, tickets []*domain.Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tickets (ticket_key, project_key, status, created, resolved, ticket_data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (ticket_key) DO UPDATE SET
			project_key = EXCLUDED.project_key,
			status      = EXCLUDED.status,
			created     = EXCLUDED.created,
			resolved    = EXCLUDED.resolved,
			ticket_data = EXCLUDED.ticket_data,
			updated_at  = NOW()
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, ticket := range tickets {
		data, err := json.Marshal(ticket)
		if err != nil {
			return fmt.Errorf("failed to marshal ticket %s: %w", ticket.Key, err)
		}

		var resolved sql.NullString
		if ticket.Resolved != "" {
			resolved = sql.NullString{String: ticket.Resolved, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			ticket.Key,
			project,
			ticket.Status,
			ticket.Created,
			resolved,
			data,
		); err != nil {
			return fmt.Errorf("failed to upsert ticket %s: %w", ticket.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// ListByProject returns every stored ticket for the project.
func (s *PostgresTicketStore) ListByProject(ctx context.Context, project string) ([]*domain.Ticket, error) {
	query := `SELECT ticket_data FROM tickets WHERE project_key = $1 ORDER BY ticket_key`

	rows, err := s.db.QueryContext(ctx, query, project)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []*domain.Ticket{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}

		var ticket domain.Ticket
		if err := json.Unmarshal(data, &ticket); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}

// CountByProject returns the number of stored tickets for the project.
func (s *PostgresTicketStore) CountByProject(ctx context.Context, project string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tickets WHERE project_key = $1`
	if err := s.db.QueryRowContext(ctx, query, project).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

// ProjectMeta returns the sync metadata for a project.
func (s *PostgresTicketStore) ProjectMeta(ctx context.Context, project string) (*domain.ProjectSyncMeta, error) {
	query := `SELECT project_key, last_sync_at, total_tickets FROM projects WHERE project_key = $1`

	var meta domain.ProjectSyncMeta
	err := s.db.QueryRowContext(ctx, query, project).Scan(
		&meta.Project,
		&meta.LastSyncAt,
		&meta.TotalTickets,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return &meta, nil
}

// UpdateProjectMeta records a completed sync, inserting the project row on
// first sync.
func (s *PostgresTicketStore) UpdateProjectMeta(ctx context.Context, project string, syncedAt time.Time, totalTickets int) error {
	query := `
		INSERT INTO projects (project_key, last_sync_at, total_tickets)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_key) DO UPDATE SET
			last_sync_at  = EXCLUDED.last_sync_at,
			total_tickets = EXCLUDED.total_tickets
	`
	if _, err := s.db.ExecContext(ctx, query, project, syncedAt, totalTickets); err != nil {
		return fmt.Errorf("failed to update project metadata: %w", err)
	}
	return nil
}

// DeleteProject removes the project's tickets and metadata.
func (s *PostgresTicketStore) DeleteProject(ctx context.Context, project string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE project_key = $1`, project); err != nil {
		return fmt.Errorf("failed to delete tickets: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE project_key = $1`, project); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
