package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halcyon-cloud/accountflow/domains/accounts/be/event"
	"github.com/halcyon-cloud/accountflow/domains/accounts/be/service"
	platformlogging "github.com/halcyon-cloud/accountflow/platform/go/logging"
	"github.com/halcyon-cloud/accountflow/platform/go/metrics"
	"github.com/halcyon-cloud/accountflow/platform/go/requesttrace"
)

const maxEventBody = 1 << 20

// Handler exposes the lifecycle ingest and record inspection endpoints.
type Handler struct {
	svc        *service.Service
	normalizer *event.Normalizer
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// New constructs a Handler instance.
func New(svc *service.Service, normalizer *event.Normalizer, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if svc == nil {
		panic("accounts service is required")
	}
	if normalizer == nil {
		panic("normalizer is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, normalizer: normalizer, logger: logger, metrics: m}
}

// Register mounts the handler's routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.ingestEvent)
	r.Post("/accounts", h.createAccount)
	r.Get("/accounts", h.listAccounts)
	r.Get("/accounts/{environment}/{tenantID}", h.getAccount)
}

type ingestResponse struct {
	Result   string          `json:"result"` // applied | skipped | ignored
	IngestID string          `json:"ingestId"`
	Record   *accountPayload `json:"record,omitempty"`
}

// ingestEvent runs one raw envelope through normalize, correlate and reconcile.
// Every failure is terminal for the event; the transport's redelivery is the only
// retry path, so errors map straight to status codes without queueing.
func (h *Handler) ingestEvent(w http.ResponseWriter, r *http.Request) {
	ingestID := uuid.NewString()
	logger := platformlogging.FromRequest(r, h.logger).With(zap.String("ingest_id", ingestID))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		h.writeError(w, logger, http.StatusBadRequest, "read event body", err)
		return
	}

	start := time.Now()
	sig, err := h.normalizer.Normalize(body)
	if err != nil {
		h.observeSignal("unknown", "rejected", start)
		h.writeError(w, logger, statusForError(err), "normalize event", err)
		return
	}
	if sig == nil {
		h.observeSignal("unknown", "ignored", start)
		logger.Debug("event ignored: unrecognized source/type")
		writeJSON(w, http.StatusOK, ingestResponse{Result: "ignored", IngestID: ingestID})
		return
	}

	kind := string(sig.Kind())
	logger = logger.With(zap.String("signal_kind", kind))

	ctx := r.Context()
	if trace, err := requesttrace.EventBridge(ingestID, requesttrace.FromContextOrUnknown(ctx).RequestID); err == nil {
		ctx = requesttrace.IntoContext(ctx, trace)
	}

	outcome, err := h.svc.Apply(ctx, sig)
	if err != nil {
		h.observeSignal(kind, "failed", start)
		h.countFailure(err)
		if errors.Is(err, service.ErrAmbiguousCorrelation) {
			// Broken secondary-uniqueness invariant, not a transient race.
			logger.Error("ambiguous correlation, update withheld",
				zap.Bool("alert", true), zap.Error(err))
		}
		h.writeError(w, logger, statusForError(err), "apply signal", err)
		return
	}

	result := "skipped"
	if outcome.Written {
		result = "applied"
	}
	h.observeSignal(kind, result, start)

	logger.Info("signal processed",
		zap.String("record_key", outcome.Key.String()),
		zap.Bool("written", outcome.Written),
	)
	payload := toPayload(outcome.Record)
	writeJSON(w, http.StatusOK, ingestResponse{Result: result, IngestID: ingestID, Record: &payload})
}

type createAccountRequest struct {
	TenantID    string `json:"tenantId"`
	Environment string `json:"environment"`
}

// createAccount is the pre-creation step: it registers the placeholder record
// before any lifecycle event can reference it.
func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	var req createAccountRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEventBody)).Decode(&req); err != nil {
		h.writeError(w, logger, http.StatusBadRequest, "decode request body", err)
		return
	}

	rec, err := h.svc.Create(r.Context(), service.CreateInput{
		TenantID:    req.TenantID,
		Environment: service.Environment(req.Environment),
	})
	if err != nil {
		h.writeError(w, logger, statusForError(err), "create account record", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPayload(rec))
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	records, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, logger, http.StatusInternalServerError, "list account records", err)
		return
	}

	items := make([]accountPayload, 0, len(records))
	for _, rec := range records {
		items = append(items, toPayload(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	logger := platformlogging.FromRequest(r, h.logger)

	environment, err := service.ParseEnvironment(chi.URLParam(r, "environment"))
	if err != nil {
		h.writeError(w, logger, http.StatusBadRequest, "parse environment", err)
		return
	}
	key := service.Key{TenantID: chi.URLParam(r, "tenantID"), Environment: environment}

	rec, err := h.svc.Get(r.Context(), key)
	if err != nil {
		h.writeError(w, logger, statusForError(err), "get account record", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayload(rec))
}

func (h *Handler) observeSignal(kind, outcome string, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.SignalsTotal.WithLabelValues(kind, outcome).Inc()
	h.metrics.SignalDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (h *Handler) countFailure(err error) {
	if h.metrics == nil {
		return
	}
	switch {
	case errors.Is(err, service.ErrAmbiguousCorrelation):
		h.metrics.AmbiguousMatches.Inc()
		h.metrics.CorrelationFailures.WithLabelValues("ambiguous").Inc()
	case errors.Is(err, service.ErrNotFound):
		h.metrics.CorrelationFailures.WithLabelValues("not_found").Inc()
	case errors.Is(err, service.ErrWriteConflict):
		h.metrics.WriteConflicts.Inc()
	}
}

func (h *Handler) writeError(w http.ResponseWriter, logger *zap.Logger, status int, msg string, err error) {
	logger.Warn(msg, zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusForError maps the service error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrCorrelationKeyMissing),
		errors.Is(err, service.ErrMalformedResourceID):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrWriteConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type accountPayload struct {
	TenantID      string    `json:"tenantId"`
	Environment   string    `json:"environment"`
	AccountStatus string    `json:"accountStatus"`
	AccountID     string    `json:"accountId,omitempty"`
	AccountName   string    `json:"accountName,omitempty"`
	RoleStatus    string    `json:"roleStatus"`
	RoleArn       string    `json:"roleArn,omitempty"`
	LastModified  time.Time `json:"lastModified"`
}

func toPayload(rec service.Record) accountPayload {
	return accountPayload{
		TenantID:      rec.TenantID,
		Environment:   string(rec.Environment),
		AccountStatus: string(rec.AccountStatus),
		AccountID:     rec.AccountID,
		AccountName:   rec.AccountName,
		RoleStatus:    string(rec.RoleStatus),
		RoleArn:       rec.RoleArn,
		LastModified:  rec.LastModified,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
