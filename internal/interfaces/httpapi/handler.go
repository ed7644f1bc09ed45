package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/matchfeed/external/httpfetch"
	"github.com/riskibarqy/matchfeed/internal/domain/ingeststate"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

const maxJobPayloadBytes = 64 << 10

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// IngestionService is the part of usecase.IngestionService the API exposes.
type IngestionService interface {
	RunCycle(ctx context.Context, input usecase.CycleInput) (usecase.CycleResult, error)
	State() usecase.FetchState
	DisplayState(ctx context.Context) (ingeststate.State, error)
}

// UpstreamStatus reports the shared fetcher's latch and breaker.
type UpstreamStatus interface {
	Status() httpfetch.Status
}

type Handler struct {
	ingestion IngestionService
	upstream  UpstreamStatus
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(ingestion IngestionService, upstream UpstreamStatus, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		ingestion: ingestion,
		upstream:  upstream,
		logger:    logger.Named("httpapi"),
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetIngestionState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetIngestionState")
	defer span.End()

	display, err := h.ingestion.DisplayState(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get ingestion state failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := ingestionStateDTO{
		Display: displayStateToDTO(display),
		Fetch:   h.ingestion.State(),
	}
	if h.upstream != nil {
		status := h.upstream.Status()
		resp.Upstream = &status
	}
	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) RunIngestJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunIngestJob")
	defer span.End()

	req, err := decodeIngestJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(
		attribute.StringSlice("matchfeed.competitions", req.Competitions),
		attribute.Bool("matchfeed.force", req.Force),
	)

	result, err := h.ingestion.RunCycle(ctx, usecase.CycleInput{
		Competitions: req.Competitions,
		Force:        req.Force,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run ingest job failed", "competitions", req.Competitions, "force", req.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type ingestJobRequest struct {
	Competitions []string `json:"competitions" validate:"omitempty,max=32,dive,required,alphanum,max=8"`
	Force        bool     `json:"force"`
}

// decodeIngestJobRequest accepts an empty body as "all competitions".
func decodeIngestJobRequest(r *http.Request) (ingestJobRequest, error) {
	var req ingestJobRequest
	if r.Body == nil {
		return req, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJobPayloadBytes+1))
	if err != nil {
		return req, fmt.Errorf("%w: read payload: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) > maxJobPayloadBytes {
		return req, fmt.Errorf("%w: payload too large", usecase.ErrInvalidInput)
	}
	if strings.TrimSpace(string(body)) == "" {
		return req, nil
	}
	if err := strictJSON.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return req, nil
}
