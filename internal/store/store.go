package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kuro68k/kibom/internal/report"
)

// ErrNotFound is returned when no BOM has the requested id.
var ErrNotFound = eris.New("store: bom not found")

// BOMRecord is one archived BOM.
type BOMRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Source   string `json:"source"`
	Revision string `json:"revision"`
	// Lines is the number of BOM lines, Parts the number of physical parts.
	Lines     int       `json:"lines"`
	Parts     int       `json:"parts"`
	CreatedAt time.Time `json:"created_at"`
	// Document is only populated by GetBOM.
	Document *report.Document `json:"document,omitempty"`
}

// BOMFilter specifies criteria for listing archived BOMs.
type BOMFilter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store archives generated BOMs.
type Store interface {
	SaveBOM(ctx context.Context, doc report.Document) (*BOMRecord, error)
	GetBOM(ctx context.Context, id string) (*BOMRecord, error)
	ListBOMs(ctx context.Context, filter BOMFilter) ([]BOMRecord, error)
	DeleteBOM(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// summarize counts the fitted lines and parts of doc.
func summarize(doc report.Document) (lines, parts int) {
	for _, g := range doc.Groups {
		lines += g.Len()
		parts += g.Parts()
	}
	return lines, parts
}
