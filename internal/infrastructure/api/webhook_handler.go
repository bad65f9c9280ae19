package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/sundram7865/shopify-insights/internal/domain"
	"github.com/sundram7865/shopify-insights/internal/infrastructure/metrics"

	"github.com/rs/zerolog"
)

// Ingester enqueues a verified webhook body for a tenant
type Ingester interface {
	Ingest(ctx context.Context, tenantID, topic string, body []byte) (*domain.Job, error)
}

// SignatureVerifier checks a webhook request against its signature header
type SignatureVerifier interface {
	Verify(r *http.Request) bool
}

// WebhookHandler receives Shopify webhooks on POST /api/webhook?tenantId=...
type WebhookHandler struct {
	ingester     Ingester
	verifier     SignatureVerifier
	metrics      *metrics.Metrics
	maxBodyBytes int64
	logger       zerolog.Logger
}

// NewWebhookHandler creates the webhook endpoint handler
func NewWebhookHandler(
	ingester Ingester,
	verifier SignatureVerifier,
	m *metrics.Metrics,
	maxBodyBytes int64,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		ingester:     ingester,
		verifier:     verifier,
		metrics:      m,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// ServeHTTP godoc
// @Summary      Receive a Shopify webhook
// @Description  Verifies the HMAC signature and enqueues the body for reconciliation
// @Accept       json
// @Produce      plain
// @Param        tenantId  query   string  true  "Tenant ID"
// @Param        X-Shopify-Topic  header  string  true  "Webhook topic, e.g. orders/create"
// @Param        X-Shopify-Hmac-Sha256  header  string  true  "Base64 HMAC-SHA256 of the body"
// @Success      200  {string}  string  "OK"
// @Failure      400  {string}  string
// @Failure      401  {string}  string
// @Failure      404  {string}  string
// @Failure      500  {string}  string
// @Router       /api/webhook [post]
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read webhook payload")
		h.respond(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if !h.verifier.Verify(r) {
		h.logger.Warn().Str("remote", r.RemoteAddr).Msg("Webhook signature verification failed")
		h.respond(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		h.respond(w, http.StatusBadRequest, "tenantId is required")
		return
	}
	topic := r.Header.Get("X-Shopify-Topic")
	if topic == "" {
		h.logger.Warn().Str("tenantId", tenantID).Msg("Missing X-Shopify-Topic header")
		h.respond(w, http.StatusBadRequest, "Missing X-Shopify-Topic header")
		return
	}

	if _, err := h.ingester.Ingest(r.Context(), tenantID, topic, body); err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			h.logger.Warn().Str("tenantId", tenantID).Msg("Webhook for unknown tenant")
			h.respond(w, http.StatusNotFound, "Tenant not found")
			return
		}
		h.logger.Error().Err(err).Str("tenantId", tenantID).Str("topic", topic).Msg("Failed to ingest webhook")
		h.respond(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respond(w, http.StatusOK, "OK")
}

func (h *WebhookHandler) respond(w http.ResponseWriter, status int, msg string) {
	h.metrics.WebhooksReceived.WithLabelValues(strconv.Itoa(status)).Inc()
	if status != http.StatusOK {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
}
