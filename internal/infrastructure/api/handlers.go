package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"shopify-agent-gateway/internal/application"
	"shopify-agent-gateway/internal/domain"
	"shopify-agent-gateway/internal/infrastructure/metrics"
	"shopify-agent-gateway/internal/ports"
	"shopify-agent-gateway/internal/protocol"
)

// Handlers bundles the HTTP surface of the gateway.
type Handlers struct {
	dispatcher   *application.Dispatcher
	discovery    *application.DiscoveryService
	merchants    ports.MerchantRepository
	interactions ports.InteractionRepository
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(
	dispatcher *application.Dispatcher,
	discovery *application.DiscoveryService,
	merchants ports.MerchantRepository,
	interactions ports.InteractionRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		dispatcher:   dispatcher,
		discovery:    discovery,
		merchants:    merchants,
		interactions: interactions,
		metrics:      m,
		logger:       logger,
	}
}

// RPC serves POST /mcp/{shop}. Every outcome, including parse failures and
// panics, is a well-formed JSON-RPC envelope with HTTP 200: the transport
// stays uniform so callers never see a bare 5xx.
func (h *Handlers) RPC(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Interface("panic", rec).Str("shop", shop).Msg("Panic in RPC dispatch")
			writeJSON(w, http.StatusOK, protocol.NewErrorResponse(nil, protocol.CodeInternalError, "internal error"))
		}
	}()

	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, protocol.NewErrorResponse(nil, protocol.CodeParseError, "invalid JSON"))
		return
	}

	resp := h.dispatcher.Handle(r.Context(), shop, req)

	if req.Method == "tools/call" {
		outcome := "ok"
		if resp.Error != nil {
			outcome = "error"
		}
		var params protocol.CallParams
		_ = json.Unmarshal(req.Params, &params)
		if params.Name != "" {
			h.metrics.ToolCalls.WithLabelValues(params.Name, outcome).Inc()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Discovery serves GET /ucp/{shop}: the capability document, cacheable for
// five minutes and readable cross-origin.
func (h *Handlers) Discovery(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	doc, err := h.discovery.Document(r.Context(), shop)
	if err != nil {
		if errors.Is(err, domain.ErrMerchantNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "merchant not found"})
			return
		}
		h.logger.Error().Err(err).Str("shop", shop).Msg("Failed to render discovery document")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// GetProfile serves GET /merchants/{shop}/profile.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	merchant, err := h.merchants.GetByShop(r.Context(), shop)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shop).Msg("Failed to load merchant")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if merchant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "merchant not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shop":    merchant.Shop,
		"enabled": merchant.Enabled,
		"profile": merchant.Profile,
	})
}

type updateProfileRequest struct {
	Enabled *bool           `json:"enabled,omitempty"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

// UpdateProfile serves PUT /merchants/{shop}/profile and invalidates the
// cached discovery document.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	merchant, err := h.merchants.GetByShop(r.Context(), shop)
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shop).Msg("Failed to load merchant")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if merchant == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "merchant not found"})
		return
	}

	if req.Enabled != nil {
		merchant.Enabled = *req.Enabled
	}
	if req.Profile != nil {
		merchant.Profile = *req.Profile
	}
	if err := h.merchants.Save(r.Context(), merchant); err != nil {
		h.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save merchant settings")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	h.discovery.Invalidate(r.Context(), shop)

	writeJSON(w, http.StatusOK, map[string]any{
		"shop":    merchant.Shop,
		"enabled": merchant.Enabled,
		"profile": merchant.Profile,
	})
}

// Interactions serves GET /merchants/{shop}/interactions: the most recent
// agent interactions, for the merchant-facing analytics view.
func (h *Handlers) Interactions(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	interactions, err := h.interactions.ListByShop(r.Context(), shop, parseLimit(r))
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shop).Msg("Failed to list interactions")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interactions": interactions})
}

// MissedOpportunities serves GET /merchants/{shop}/missed-opportunities:
// zero-result search terms ordered by how often agents asked for them.
func (h *Handlers) MissedOpportunities(w http.ResponseWriter, r *http.Request) {
	shop := chi.URLParam(r, "shop")

	rows, err := h.interactions.ListMissed(r.Context(), shop, parseLimit(r))
	if err != nil {
		h.logger.Error().Err(err).Str("shop", shop).Msg("Failed to list missed opportunities")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"missed_opportunities": rows})
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(body)
}
