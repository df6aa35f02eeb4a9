package http

import (
	"errors"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fielddash/internal/errors"
	appmw "fielddash/internal/middleware"
	"fielddash/internal/services"
	api "fielddash/pkg/contracts/api/v1"
)

// multipart parts above this size are spooled to temporary files
const uploadMemory = 32 << 20

// DashboardHandler serves the session, upload, filter, chart and export API
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    Validator
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a dashboard handler. maxUpload caps the size of
// one upload request in bytes.
func NewDashboardHandler(service DashboardServiceInterface, validator Validator, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the session routes, mounted under /api/sessions
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.CreateSession)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.With(appmw.ContentTypeValidator(h.errorHandler, "multipart/form-data")).
			Post("/uploads", h.Upload)

		r.With(appmw.ContentTypeValidator(h.errorHandler, "application/json")).
			Put("/filters", h.UpdateFilters)
		r.Delete("/filters", h.ResetFilters)
		r.Delete("/filters/{key}", h.ResetFilters)

		r.Route("/sheets/{sheet}", func(r chi.Router) {
			r.Use(h.SheetCtx)
			r.Get("/table", h.GetTable)
			r.Get("/charts", h.GetCharts)
			r.Get("/kpis", h.GetKPIs)
			r.Get("/export/{format}", h.Export)
		})
	})

	return r
}

// SessionCtx rejects malformed session ids before they reach the service
func (h *DashboardHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := api.SessionRequest{SessionID: chi.URLParam(r, "id")}
		if err := h.validator.ValidateStruct(&req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SheetCtx validates the sheet path segment
func (h *DashboardHandler) SheetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := sheetRequest(r)
		if err := h.validator.ValidateStruct(&req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSession handles POST /api/sessions
func (h *DashboardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	view, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to create session",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "session created",
		slog.String("session_id", view.ID),
		slog.String("request_id", reqID),
	)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetSession handles GET /api/sessions/{id}
func (h *DashboardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// DeleteSession handles DELETE /api/sessions/{id}
func (h *DashboardHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteSession(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "session deleted",
		slog.String("session_id", id),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

// Upload handles POST /api/sessions/{id}/uploads with multipart field "files"
func (h *DashboardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	id := chi.URLParam(r, "id")

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.PayloadTooLarge("Upload", h.maxUpload, 0))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, services.ErrNoFiles)
		return
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if err := h.validator.ValidateStruct(&api.UploadedFile{Name: fh.Filename, Size: fh.Size}); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		defer closeQuietly(f)
		files = append(files, services.UploadFile{Name: fh.Filename, Reader: f})
	}

	start := time.Now()
	view, err := h.service.Upload(r.Context(), id, files)
	if err != nil {
		h.logger.WarnContext(r.Context(), "upload rejected",
			slog.String("error", err.Error()),
			slog.String("session_id", id),
			slog.Int("files", len(files)),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "workbooks uploaded",
		slog.String("session_id", id),
		slog.Int("files", len(files)),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", reqID),
	)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// UpdateFilters handles PUT /api/sessions/{id}/filters
func (h *DashboardHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req api.FiltersRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	update, err := filtersUpdate(req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.UpdateFilters(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// ResetFilters handles DELETE /api/sessions/{id}/filters[/{key}]
func (h *DashboardHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	req := api.FilterResetRequest{
		SessionRequest: api.SessionRequest{SessionID: chi.URLParam(r, "id")},
		Key:            chi.URLParam(r, "key"),
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.ResetFilter(r.Context(), req.SessionID, req.Key)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetTable handles GET /api/sessions/{id}/sheets/{sheet}/table
func (h *DashboardHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Table(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sheet"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Rows),
	})
}

// GetCharts handles GET /api/sessions/{id}/sheets/{sheet}/charts. A missing
// selection is a successful response whose data carries the guidance message.
func (h *DashboardHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Charts(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sheet"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Charts),
	})
}

// GetKPIs handles GET /api/sessions/{id}/sheets/{sheet}/kpis
func (h *DashboardHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.KPIs(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "sheet"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   set,
	})
}

// Export handles GET /api/sessions/{id}/sheets/{sheet}/export/{format}.
// Artifacts are sent as attachments; notices come back as JSON.
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	req := api.ExportRequest{
		SheetRequest: sheetRequest(r),
		Format:       chi.URLParam(r, "format"),
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := services.ParseExportFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Export(r.Context(), req.SessionID, req.Sheet, format)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()),
			slog.String("format", string(format)),
			slog.String("sheet", req.Sheet),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if result.Artifact == nil {
		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"data":   result,
		})
		return
	}

	a := result.Artifact
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(a.Data); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		return
	}

	h.logger.InfoContext(r.Context(), "export sent",
		slog.String("file", a.FileName),
		slog.Int("bytes", len(a.Data)),
		slog.String("request_id", reqID),
	)
}

// filtersUpdate converts the wire request; dates were checked by the validator
func filtersUpdate(req api.FiltersRequest) (services.FiltersUpdate, error) {
	update := services.FiltersUpdate{
		Categories:   req.Categories,
		Wells:        req.Wells,
		Measurements: req.Measurements,
		Columns:      req.Columns,
		Granularity:  req.Granularity,
	}
	for _, bound := range []struct {
		field string
		in    *string
		out   **time.Time
	}{
		{"start", req.Start, &update.Start},
		{"end", req.End, &update.End},
	} {
		if bound.in == nil {
			continue
		}
		t, err := time.ParseInLocation(time.DateOnly, *bound.in, time.UTC)
		if err != nil {
			return update, apierrors.ErrValidation(bound.field, "must be a date formatted as 2006-01-02")
		}
		*bound.out = &t
	}
	return update, nil
}

func sheetRequest(r *http.Request) api.SheetRequest {
	return api.SheetRequest{
		SessionRequest: api.SessionRequest{SessionID: chi.URLParam(r, "id")},
		Sheet:          chi.URLParam(r, "sheet"),
	}
}

func closeQuietly(f multipart.File) {
	_ = f.Close()
}
