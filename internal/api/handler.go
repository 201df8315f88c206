package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"procfeed/internal/crawler"
	"procfeed/internal/logger"
	"procfeed/internal/models"
	"procfeed/internal/normalizer"
	"procfeed/internal/service"
	"procfeed/internal/store"
)

// Runner executes ingestion runs.
type Runner interface {
	Run(ctx context.Context, url string, opts service.RunOptions) (*service.RunReport, error)
	SyncAll(ctx context.Context) ([]service.SourceReport, error)
}

// Ensure the ingestion service implements Runner.
var _ Runner = (*service.IngestionService)(nil)

// IngestRequest is the body of POST /api/v1/ingest.
type IngestRequest struct {
	URL     string `json:"url" binding:"required"`
	Strict  bool   `json:"strict"`
	Persist bool   `json:"persist"`
}

// IngestResponse summarizes one run.
type IngestResponse struct {
	Saved          *store.SaveResult                   `json:"saved,omitempty"`
	RunID          string                              `json:"run_id,omitempty"`
	Format         normalizer.Format                   `json:"format"`
	Entries        []*models.CanonicalProcurementEntry `json:"entries"`
	RejectedErrors []string                            `json:"rejected_errors"`
	TopLevelKeys   []string                            `json:"top_level_keys,omitempty"`
	Accepted       int                                 `json:"accepted"`
	Found          int                                 `json:"found"`
	Attempts       int                                 `json:"attempts"`
}

// Handler serves ingestion endpoints.
type Handler struct {
	runner Runner
	log    *logger.Logger
}

// NewHandler creates a handler.
func NewHandler(runner Runner, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}

	return &Handler{runner: runner, log: log}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	Success(c, gin.H{"status": "ok"})
}

// Ingest runs one ingestion of the requested URL.
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "invalid request: url is required")

		return
	}

	report, err := h.runner.Run(c.Request.Context(), req.URL, service.RunOptions{
		Strict:  req.Strict,
		Persist: req.Persist,
	})
	if err != nil {
		h.log.Error("ingest request failed", "url", req.URL, "error", err)
		Fail(c, statusFor(err), err.Error())

		return
	}

	Success(c, newIngestResponse(report))
}

// Sync runs every enabled source.
func (h *Handler) Sync(c *gin.Context) {
	reports, err := h.runner.SyncAll(c.Request.Context())
	if err != nil {
		Fail(c, statusFor(err), err.Error())

		return
	}

	out := make([]gin.H, 0, len(reports))
	for _, r := range reports {
		item := gin.H{"source": r.Source, "ok": r.Succeeded()}

		if r.Error != "" {
			item["error"] = r.Error
		}

		if r.Run != nil && r.Run.Result != nil {
			item["found"] = r.Run.Result.Found
			item["accepted"] = r.Run.Result.Accepted()
			item["location"] = r.Run.Location
		}

		out = append(out, item)
	}

	Success(c, out)
}

func newIngestResponse(report *service.RunReport) IngestResponse {
	result := report.Result

	resp := IngestResponse{
		Saved:          report.Saved,
		Format:         result.Format,
		Entries:        result.Entries,
		RejectedErrors: result.RejectedErrors(),
		TopLevelKeys:   result.TopLevelKeys,
		Accepted:       result.Accepted(),
		Found:          result.Found,
		Attempts:       report.Attempts,
	}

	if resp.Entries == nil {
		resp.Entries = []*models.CanonicalProcurementEntry{}
	}

	if result.Metadata != nil {
		resp.RunID = result.Metadata.RunID
	}

	return resp
}

// statusFor maps fatal run errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, crawler.ErrPolicy):
		return http.StatusForbidden
	case errors.Is(err, crawler.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, crawler.ErrFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrMissingLocation), errors.Is(err, service.ErrPersistenceDisabled):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoEnabledSources):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
