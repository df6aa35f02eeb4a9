package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fielddash/internal/charts"
	"fielddash/internal/dataprocessing"
	"fielddash/internal/exporter"
	"fielddash/internal/session"
	"fielddash/pkg/contracts/domain"
)

// ChartDefaults are the presentation settings applied to every chart
type ChartDefaults struct {
	TickCount      int
	// Padding nil keeps the chart package default
	Padding *float64
	PrimaryColor   string
	SecondaryColor string
}

// DashboardOptions wires the collaborators of a DashboardService
type DashboardOptions struct {
	Charts     ChartDefaults
	HTML       *exporter.HTMLRenderer
	Rasterizer exporter.Rasterizer
	// RasterLimit bounds the number of charts rasterized concurrently
	RasterLimit int
	Now         func() time.Time
}

// DashboardService runs the monitoring pipeline against per-user sessions
type DashboardService struct {
	store      session.Store
	defaults   ChartDefaults
	html       *exporter.HTMLRenderer
	rasterizer exporter.Rasterizer
	limit      int
	now        func() time.Time
	telemetry  *pipelineTelemetry
	logger     *slog.Logger
}

// UploadFile is one workbook received from the client
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// SheetSummary describes a loaded sheet
type SheetSummary struct {
	Sheet   domain.SheetName `json:"sheet"`
	Slug    string           `json:"slug"`
	Rows    int              `json:"rows"`
	Columns []string         `json:"columns"`
}

// SessionView is the client-facing state of a session
type SessionView struct {
	ID        string                    `json:"id"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
	Files     []string                  `json:"files"`
	Sheets    []SheetSummary            `json:"sheets"`
	Span      dataprocessing.DateWindow `json:"span"`
	Window    dataprocessing.DateWindow `json:"window"`
	Filters   session.Filters           `json:"filters"`
}

// FiltersUpdate is a partial update of the session filters. Nil fields are left untouched.
type FiltersUpdate struct {
	Categories   *[]string
	Wells        *[]string
	Measurements *[]string
	Columns      *[]string
	Start        *time.Time
	End          *time.Time
	Granularity  *string
}

// NewDashboardService creates a dashboard service
func NewDashboardService(store session.Store, opts DashboardOptions, logger *slog.Logger) (*DashboardService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: session store is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.HTML == nil {
		opts.HTML = exporter.NewHTMLRenderer("", 0)
	}
	if opts.Rasterizer == nil {
		opts.Rasterizer = exporter.Unavailable{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	telemetry, err := newPipelineTelemetry()
	if err != nil {
		return nil, err
	}

	logger.Info("DashboardService initialized",
		slog.String("rasterizer", opts.Rasterizer.Name()),
		slog.Bool("images_available", opts.Rasterizer.Available()),
		slog.Int("tick_count", opts.Charts.TickCount))

	return &DashboardService{
		store:      store,
		defaults:   opts.Charts,
		html:       opts.HTML,
		rasterizer: opts.Rasterizer,
		limit:      opts.RasterLimit,
		now:        opts.Now,
		telemetry:  telemetry,
		logger:     logger,
	}, nil
}

// CreateSession starts a new empty session
func (ds *DashboardService) CreateSession(ctx context.Context) (*SessionView, error) {
	s := session.New(ds.now())
	if err := ds.store.Create(s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	ds.logger.InfoContext(ctx, "session created", slog.String("session_id", s.ID))
	return viewOf(s), nil
}

// GetSession returns the state of a session
func (ds *DashboardService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	s, err := ds.session(id)
	if err != nil {
		return nil, err
	}
	return viewOf(s), nil
}

// DeleteSession discards a session and its data
func (ds *DashboardService) DeleteSession(ctx context.Context, id string) error {
	if err := ds.store.Delete(id); err != nil {
		return mapStoreError(err)
	}
	ds.logger.InfoContext(ctx, "session deleted", slog.String("session_id", id))
	return nil
}

// Upload reads every workbook, validates and sanitizes the known sheets and
// replaces the session data. Sheets from several files are stacked. The date
// window is reset to the observed span of the pumped-volume sheet.
func (ds *DashboardService) Upload(ctx context.Context, id string, files []UploadFile) (view *SessionView, err error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if _, err := ds.session(id); err != nil {
		return nil, err
	}

	ctx, finish := ds.telemetry.stage(ctx, "upload", "")
	defer func() {
		finish(err)
		ds.telemetry.recordUpload(ctx, len(files), err)
	}()

	loaded := make([]map[domain.SheetName]*dataprocessing.Table, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables, err := loadWorkbook(f)
			if err != nil {
				return err
			}
			loaded[i] = tables
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ds.logger.WarnContext(ctx, "upload rejected",
			slog.String("session_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	merged := make(map[domain.SheetName]*dataprocessing.Table)
	for _, schema := range domain.Schemas() {
		var parts []*dataprocessing.Table
		for _, tables := range loaded {
			if t, ok := tables[schema.Name]; ok {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			merged[schema.Name] = dataprocessing.Concat(parts...)
		}
	}

	var span dataprocessing.DateWindow
	if t, ok := merged[domain.SheetVolumePumped]; ok {
		span, _ = dataprocessing.ObservedSpan(t, domain.ColumnDate)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	s, err := ds.store.Update(id, func(s *session.Session) error {
		s.Files = names
		s.Tables = merged
		s.Span = span
		s.Filters.DateWindow = span
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	ds.logger.InfoContext(ctx, "workbooks uploaded",
		slog.String("session_id", id),
		slog.Int("files", len(files)),
		slog.Int("sheets", len(merged)),
		slog.Time("span_start", span.Start),
		slog.Time("span_end", span.End))

	return viewOf(s), nil
}

// loadWorkbook reads one file and returns its sanitized known sheets
func loadWorkbook(f UploadFile) (map[domain.SheetName]*dataprocessing.Table, error) {
	wb, err := dataprocessing.ReadWorkbook(f.Reader, f.Name)
	if err != nil {
		return nil, err
	}
	tables := make(map[domain.SheetName]*dataprocessing.Table)
	for _, schema := range domain.Schemas() {
		t, err := wb.LoadSheet(schema)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		if schema.DetectValues {
			t = dataprocessing.CoerceNumeric(t, dataprocessing.DetectNumericColumns(t, domain.ColumnDate)...)
		}
		tables[schema.Name] = t
	}
	return tables, nil
}

// UpdateFilters applies a partial update to the session filters
func (ds *DashboardService) UpdateFilters(ctx context.Context, id string, update FiltersUpdate) (*SessionView, error) {
	s, err := ds.store.Update(id, func(s *session.Session) error {
		return applyFilters(s, update)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	ds.logger.DebugContext(ctx, "filters updated",
		slog.String("session_id", id),
		slog.String("granularity", string(s.Filters.Granularity)))
	return viewOf(s), nil
}

func applyFilters(s *session.Session, update FiltersUpdate) error {
	if update.Categories != nil {
		slugs := make([]string, 0, len(*update.Categories))
		for _, c := range *update.Categories {
			schema, ok := domain.SchemaBySlug(c)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownSheet, c)
			}
			slugs = append(slugs, schema.Slug)
		}
		s.Filters.Categories = slugs
	}
	if update.Wells != nil {
		s.Filters.Wells = append([]string(nil), *update.Wells...)
	}
	if update.Measurements != nil {
		s.Filters.Measurements = append([]string(nil), *update.Measurements...)
	}
	if update.Columns != nil {
		s.Filters.Columns = append([]string(nil), *update.Columns...)
	}
	if update.Granularity != nil {
		g, err := domain.ParseGranularity(*update.Granularity)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		s.Filters.Granularity = g
	}
	if update.Start != nil || update.End != nil {
		if !s.Loaded() {
			return ErrNoData
		}
		current := s.Window()
		start, end := current.Start, current.End
		if update.Start != nil {
			start = *update.Start
		}
		if update.End != nil {
			end = *update.End
		}
		w, err := dataprocessing.NewDateWindow(start, end)
		if err != nil {
			return err
		}
		if !s.Span.IsZero() {
			if err := w.Validate(s.Span); err != nil {
				return err
			}
		}
		s.Filters.DateWindow = w
	}
	return nil
}

// ResetFilter restores one filter key, or every key when key is empty
func (ds *DashboardService) ResetFilter(ctx context.Context, id, key string) (*SessionView, error) {
	var parsed session.FilterKey
	if key != "" {
		k, err := session.ParseFilterKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		parsed = k
	}
	s, err := ds.store.Update(id, func(s *session.Session) error {
		if parsed == "" {
			s.Filters.ResetAll()
			return nil
		}
		return s.Filters.Reset(parsed)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return viewOf(s), nil
}

// session loads a session, translating store errors
func (ds *DashboardService) session(id string) (*session.Session, error) {
	s, err := ds.store.Get(id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return s, nil
}

// sheet resolves a slug to a loaded table of the session
func (ds *DashboardService) sheet(s *session.Session, slug string) (domain.SheetSchema, *dataprocessing.Table, error) {
	schema, ok := domain.SchemaBySlug(slug)
	if !ok {
		return domain.SheetSchema{}, nil, fmt.Errorf("%w: %q", ErrUnknownSheet, slug)
	}
	if !s.Loaded() {
		return schema, nil, ErrNoData
	}
	t, ok := s.Table(schema.Name)
	if !ok {
		return schema, nil, fmt.Errorf("%w: %s", ErrSheetNotLoaded, schema.Name)
	}
	return schema, t, nil
}

// windowed applies the session date window, and the well selection on sheets
// keyed by well. An empty well selection keeps every well.
func windowed(s *session.Session, schema domain.SheetSchema, t *dataprocessing.Table) (*dataprocessing.Table, error) {
	out := t
	if w := s.Window(); !w.IsZero() {
		var err error
		out, err = dataprocessing.FilterWindow(t, domain.ColumnDate, w)
		if err != nil {
			return nil, err
		}
	}
	if len(schema.GroupKeys) > 0 && len(s.Filters.Wells) > 0 && out.HasColumn(domain.ColumnWell) {
		out = dataprocessing.FilterIn(out, domain.ColumnWell, s.Filters.Wells)
	}
	return out, nil
}

func mapStoreError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return err
}

func viewOf(s *session.Session) *SessionView {
	v := &SessionView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Files:     s.Files,
		Sheets:    []SheetSummary{},
		Span:      s.Span,
		Window:    s.Window(),
		Filters:   s.Filters,
	}
	if v.Files == nil {
		v.Files = []string{}
	}
	for _, schema := range domain.Schemas() {
		t, ok := s.Table(schema.Name)
		if !ok {
			continue
		}
		v.Sheets = append(v.Sheets, SheetSummary{
			Sheet:   schema.Name,
			Slug:    schema.Slug,
			Rows:    t.Len(),
			Columns: t.Columns(),
		})
	}
	return v
}

// dualAxisOptions applies the configured chart defaults
func (ds *DashboardService) dualAxisOptions(key, x, y string) charts.DualAxisOptions {
	return charts.DualAxisOptions{
		Key:            key,
		X:              x,
		SortKey:        domain.ColumnDate,
		Y:              y,
		Title:          y,
		PrimaryColor:   ds.defaults.PrimaryColor,
		SecondaryColor: ds.defaults.SecondaryColor,
		TickCount:      ds.defaults.TickCount,
		Padding:        ds.defaults.Padding,
	}
}
