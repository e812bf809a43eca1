// internal/storage/recent/store.go
package recent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/core"
)

// Store keeps recently generated reports in memory
type Store interface {
	// Save records a report, evicting the oldest one when full.
	Save(ctx context.Context, r *analysis.Report) error

	// Get retrieves a report by its ID.
	Get(ctx context.Context, id string) (*analysis.Report, error)

	// List returns report summaries matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Summary, error)

	// Count returns the number of reports matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter defines criteria for listing reports.
type ListFilter struct {
	Ticker string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Summary is the listing view of a report
type Summary struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Window    core.Window `json:"window"`
	Tickers   []string    `json:"tickers"`
	Status    string      `json:"status"`
}

// Summarize builds the listing view of r
func Summarize(r *analysis.Report) Summary {
	return Summary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Window:    r.Window,
		Tickers:   r.Tickers(),
		Status:    r.Status(),
	}
}

// MemoryStore is a bounded in-memory Store.
type MemoryStore struct {
	reports []*analysis.Report
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a store holding at most maxSize reports.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &MemoryStore{
		reports: make([]*analysis.Report, 0, maxSize),
		maxSize: maxSize,
	}
}

// Save adds a report to the store. A report saved twice replaces the
// earlier copy.
func (m *MemoryStore) Save(ctx context.Context, r *analysis.Report) error {
	if r == nil || r.ID == "" {
		return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("report has no id"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.reports {
		if existing.ID == r.ID {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			break
		}
	}
	m.reports = append(m.reports, r)

	// Trim if over capacity (remove oldest)
	if len(m.reports) > m.maxSize {
		m.reports = m.reports[len(m.reports)-m.maxSize:]
	}
	return nil
}

// Get retrieves a report by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*analysis.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, core.WrapError(core.ErrReportNotFound, fmt.Errorf("%s", id))
}

// List returns summaries matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []Summary{}
	for i := len(m.reports) - 1; i >= 0; i-- {
		if matches(m.reports[i], filter) {
			result = append(result, Summarize(m.reports[i]))
		}
	}

	if filter.Offset >= len(result) {
		return []Summary{}, nil
	}
	if filter.Offset > 0 {
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Count returns the count of matching reports.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, r := range m.reports {
		if matches(r, filter) {
			count++
		}
	}
	return count, nil
}

func matches(r *analysis.Report, filter ListFilter) bool {
	if filter.Ticker != "" {
		found := false
		for _, c := range r.Companies {
			if strings.EqualFold(c.Ticker, filter.Ticker) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !filter.From.IsZero() && r.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && r.CreatedAt.After(filter.To) {
		return false
	}
	return true
}
