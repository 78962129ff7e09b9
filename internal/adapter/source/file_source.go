package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/flowlens/flowlens/internal/domain"
	"github.com/flowlens/flowlens/internal/ports"
)

// FileSource implements TicketSource from a JSON fixture on disk. The file
// holds either a map of project key to ticket array, or a bare ticket
// array that serves every project.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed ticket source.
func NewFileSource(path string) ports.TicketSource {
	return &FileSource{path: path}
}

// FetchTickets reads the fixture and returns the tickets for the project.
func (s *FileSource) FetchTickets(ctx context.Context, project string) ([]*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket file: %w", err)
	}

	var byProject map[string][]*domain.Ticket
	if err := json.Unmarshal(data, &byProject); err == nil {
		tickets, ok := byProject[project]
		if !ok {
			return nil, fmt.Errorf("project %s: %w", project, domain.ErrProjectNotFound)
		}
		return tickets, nil
	}

	var tickets []*domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode ticket file: %w", err)
	}
	return tickets, nil
}
