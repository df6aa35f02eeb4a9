package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fielddash/internal/session"
	"fielddash/internal/shared/testutil"
	"fielddash/pkg/contracts/domain"
)

var date = testutil.Date

func ptr[T any](v T) *T {
	return &v
}

var (
	xlsxBytes     = testutil.WorkbookBytes
	fieldSheets   = testutil.FieldSheets
	fieldOrder    = testutil.FieldOrder
	fieldWorkbook = testutil.FieldWorkbook
)

type stubRasterizer struct {
	available bool
	calls     atomic.Int32
}

func (s *stubRasterizer) Name() string    { return "stub" }
func (s *stubRasterizer) Available() bool { return s.available }

func (s *stubRasterizer) Rasterize(ctx context.Context, spec *domain.ChartSpec) ([]byte, error) {
	s.calls.Add(1)
	return []byte("\x89PNG" + spec.ID), nil
}

func newTestService(t *testing.T, opts DashboardOptions) *DashboardService {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return date(2024, 1, 15) }
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds, err := NewDashboardService(session.NewMemoryStore(), opts, logger)
	require.NoError(t, err)
	return ds
}

// loadedSession creates a session holding the field workbook
func loadedSession(t *testing.T, ds *DashboardService) string {
	t.Helper()
	ctx := context.Background()
	view, err := ds.CreateSession(ctx)
	require.NoError(t, err)
	_, err = ds.Upload(ctx, view.ID, []UploadFile{{Name: "campanha.xlsx", Reader: bytes.NewReader(fieldWorkbook(t))}})
	require.NoError(t, err)
	return view.ID
}
