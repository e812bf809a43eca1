// internal/storage/archive/reports.go
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newthinker/finsight/internal/analysis"
	"github.com/newthinker/finsight/internal/config"
	"github.com/newthinker/finsight/internal/core"
)

// ReportPrefix is the root of every archived report
const ReportPrefix = "reports"

// ReportPath returns reports/<yyyy>/<mm>/<id>.json for r
func ReportPath(r *analysis.Report) string {
	return path.Join(ReportPrefix, r.CreatedAt.UTC().Format("2006/01"), r.ID+".json")
}

// Open builds the backend selected by cfg.
func Open(cfg config.ColdStorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage type %q", cfg.Type))
	}
}

// Reports archives finished reports as JSON documents on a Storage
// backend.
type Reports struct {
	store  Storage
	logger *zap.Logger
}

// NewReports wraps store. logger may be nil.
func NewReports(store Storage, logger *zap.Logger) *Reports {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reports{store: store, logger: logger}
}

// Save writes r and returns its archive path.
func (a *Reports) Save(ctx context.Context, r *analysis.Report) (string, error) {
	if r.ID == "" {
		return "", core.WrapError(core.ErrInvalidRequest, fmt.Errorf("report has no id"))
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding report %s: %w", r.ID, err)
	}

	p := ReportPath(r)
	if err := a.store.Write(ctx, p, data); err != nil {
		return "", fmt.Errorf("archiving report %s: %w", r.ID, err)
	}
	a.logger.Debug("report archived", zap.String("id", r.ID), zap.String("path", p), zap.Int("bytes", len(data)))
	return p, nil
}

// Load finds a report by ID anywhere under the archive.
func (a *Reports) Load(ctx context.Context, id string) (*analysis.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, core.WrapError(core.ErrReportNotFound, fmt.Errorf("malformed id %q", id))
	}

	paths, err := a.store.List(ctx, ReportPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	want := id + ".json"
	for _, p := range paths {
		if path.Base(p) != want {
			continue
		}
		data, err := a.store.Read(ctx, p)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var r analysis.Report
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", p, err)
		}
		return &r, nil
	}
	return nil, core.WrapError(core.ErrReportNotFound, fmt.Errorf("%s", id))
}

// IDs lists archived report IDs for a month ("2024/03"), or all of them
// when month is empty, newest path first.
func (a *Reports) IDs(ctx context.Context, month string) ([]string, error) {
	prefix := ReportPrefix
	if month != "" {
		prefix = path.Join(ReportPrefix, month)
	}
	paths, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))

	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.HasSuffix(p, ".json") {
			ids = append(ids, strings.TrimSuffix(path.Base(p), ".json"))
		}
	}
	return ids, nil
}

// Delete removes the report with the given ID.
func (a *Reports) Delete(ctx context.Context, id string) error {
	r, err := a.Load(ctx, id)
	if err != nil {
		return err
	}
	return a.store.Delete(ctx, ReportPath(r))
}
