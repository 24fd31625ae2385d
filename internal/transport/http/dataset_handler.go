package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"huntstats/internal/dataprocessing"
	apperrors "huntstats/internal/errors"
	"huntstats/internal/infrastructure"
	"huntstats/internal/middleware"
	"huntstats/internal/operations"
	"huntstats/internal/services"
)

// Media types accepted by the upload endpoint
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeTSV  = "text/tab-separated-values"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// TransformRequest is the body of POST /api/datasets/{id}/transform
type TransformRequest struct {
	Steps []StepRequest `json:"steps" validate:"required,min=1,max=64,dive"`
}

// StepRequest names one registered step and its parameters
type StepRequest struct {
	ID     string            `json:"id" validate:"required,step"`
	Params operations.Params `json:"params,omitempty"`
}

// Specs converts the request into pipeline step specs
func (req TransformRequest) Specs() []operations.StepSpec {
	specs := make([]operations.StepSpec, len(req.Steps))
	for i, s := range req.Steps {
		specs[i] = operations.StepSpec{ID: s.ID, Params: s.Params}
	}
	return specs
}

// TransformResponse describes the dataset produced by a transform
type TransformResponse struct {
	Dataset services.DatasetInfo  `json:"dataset"`
	Run     *operations.RunState `json:"run"`
}

// DatasetHandler serves the dataset API
type DatasetHandler struct {
	service      DatasetServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	maxUpload    int64
}

// NewDatasetHandler creates a dataset handler. Uploads larger than
// maxUpload bytes are rejected with 413.
func NewDatasetHandler(service DatasetServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler, maxUpload int64) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validator:    validator,
		logger:       infrastructure.WithComponent(logger, "dataset_handler"),
		errorHandler: errorHandler,
		maxUpload:    maxUpload,
	}
}

// Routes returns the dataset routes, mounted under /api/datasets
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.With(middleware.RequireContentType(ContentTypeCSV, ContentTypeTSV, ContentTypeXLSX)).
		Post("/", h.Upload)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Describe)
		r.Delete("/", h.Delete)
		r.Get("/eda", h.EDA)
		r.Get("/kills-by-region", h.KillsByRegion)
		r.Get("/avg-reward-by-region", h.AvgRewardByRegion)
		r.Get("/most-dangerous", h.MostDangerous)
		r.Get("/class-distribution", h.ClassDistribution)
		r.Get("/export", h.Export)
		r.With(middleware.RequireContentType("application/json")).
			Post("/transform", h.Transform)
	})

	return r
}

// Upload handles POST /api/datasets. The body is the file itself; its
// format comes from ?format= or the Content-Type header.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	format, err := uploadFormat(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload." + string(format)
	}

	body := r.Body
	if h.maxUpload > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	ds, err := h.service.Load(r.Context(), path.Base(name), body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperrors.PayloadTooLarge(h.maxUpload)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset uploaded",
		slog.String("dataset_id", ds.ID),
		slog.String("format", string(format)),
		slog.Int("rows", ds.Table.Len()),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ds.Info())
}

// List handles GET /api/datasets
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets := h.service.List(r.Context())
	render.JSON(w, r, map[string]any{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// Describe handles GET /api/datasets/{id}
func (h *DatasetHandler) Describe(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Describe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Delete handles DELETE /api/datasets/{id}
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

// EDA handles GET /api/datasets/{id}/eda
func (h *DatasetHandler) EDA(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.EDA(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// KillsByRegion handles GET /api/datasets/{id}/kills-by-region
func (h *DatasetHandler) KillsByRegion(w http.ResponseWriter, r *http.Request) {
	kills, err := h.service.KillsByRegion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"kills_by_region": kills})
}

// AvgRewardByRegion handles GET /api/datasets/{id}/avg-reward-by-region
func (h *DatasetHandler) AvgRewardByRegion(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.service.AvgRewardByRegion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"avg_reward_by_region": rewards})
}

// MostDangerous handles GET /api/datasets/{id}/most-dangerous
func (h *DatasetHandler) MostDangerous(w http.ResponseWriter, r *http.Request) {
	name, err := h.service.MostDangerousMonster(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"most_dangerous_monster": name})
}

// ClassDistribution handles GET /api/datasets/{id}/class-distribution?column=
func (h *DatasetHandler) ClassDistribution(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if err := h.validator.ValidateVar("column", column, "required,column"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dist, err := h.service.ClassDistribution(r.Context(), chi.URLParam(r, "id"), column)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"column":       column,
		"distribution": dist,
	})
}

// Transform handles POST /api/datasets/{id}/transform. A failed run is
// reported as a problem carrying the run state.
func (h *DatasetHandler) Transform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if !h.validator.DecodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	derived, run, err := h.service.Transform(r.Context(), id, req.Specs())
	if err != nil {
		if run == nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		h.logger.WarnContext(r.Context(), "transform failed",
			slog.String("dataset_id", id),
			slog.String("run_id", run.ID),
			slog.String("error", err.Error()))

		problem := h.errorHandler.ErrorToProblem(err, r).
			WithExtension("trace_id", middleware.GetRequestID(r.Context())).
			WithExtension("run", run)
		if step, ok := operations.FailedStep(err); ok {
			problem.WithExtension("failed_step", step)
		}
		_ = render.Render(w, r, problem)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, TransformResponse{Dataset: derived.Info(), Run: run})
}

// Export handles GET /api/datasets/{id}/export?format=csv|xlsx
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := services.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	ds, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Buffer so a failed export still gets a problem response
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), id, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": exportName(ds.Name, format),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func uploadFormat(r *http.Request) (dataprocessing.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		switch f := dataprocessing.Format(strings.ToLower(q)); f {
		case dataprocessing.FormatCSV, dataprocessing.FormatTSV, dataprocessing.FormatXLSX:
			return f, nil
		default:
			return "", apperrors.ErrValidation("format", fmt.Sprintf("unsupported upload format %q", q))
		}
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", apperrors.ErrValidation("Content-Type", "invalid Content-Type header")
	}
	switch mediaType {
	case ContentTypeTSV:
		return dataprocessing.FormatTSV, nil
	case ContentTypeXLSX:
		return dataprocessing.FormatXLSX, nil
	default:
		return dataprocessing.FormatCSV, nil
	}
}

func exportName(name string, format services.ExportFormat) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if base == "" {
		base = "dataset"
	}
	return base + "." + string(format)
}
