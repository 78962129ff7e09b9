package ports

import (
	"io"

	"github.com/flowlens/flowlens/internal/domain"
)

// ReportRenderer turns computed metrics into an output document. The JSON
// API serializes metrics directly; this port exists for alternative
// output formats.
type ReportRenderer interface {
	Render(w io.Writer, metrics *domain.FlowMetrics) error
}
