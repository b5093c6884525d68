// Package relay is the same-origin token validation endpoint. It forwards
// the request body to the backend untouched and reports transport failures
// in a shape operators can tell apart from a rejected token.
package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/agentdeck/internal/logging"
)

const validatePath = "/validate-token"

// Handler serves POST /validate-token.
type Handler struct {
	target  string
	client  *http.Client
	logger  logging.Logger
	metrics *Metrics
}

// NewHandler forwards to target (a base address such as
// "http://localhost:5000"). metrics may be nil.
func NewHandler(target string, client *http.Client, logger logging.Logger, metrics *Metrics) *Handler {
	return &Handler{
		target:  strings.TrimRight(target, "/"),
		client:  client,
		logger:  logger.With("component", "relay"),
		metrics: metrics,
	}
}

type faultResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.observe(outcomeBadRequest)
		writeJSON(w, http.StatusBadRequest, faultResponse{Error: "failed to read request body", Status: "error"})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.target+validatePath, bytes.NewReader(body))
	if err != nil {
		h.transportFault(w, r, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.transportFault(w, r, err)
		return
	}
	defer resp.Body.Close()

	h.metrics.observe(outcomeForwarded)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Warn(ctx, "failed to relay backend response", "error", err)
	}
}

func (h *Handler) transportFault(w http.ResponseWriter, r *http.Request, err error) {
	h.metrics.observe(outcomeTransportFault)
	h.logger.Error(r.Context(), "backend unreachable", "target", h.target, "error", err)

	writeJSON(w, http.StatusInternalServerError, faultResponse{
		Error:  fmt.Sprintf("Failed to connect to backend service at %s: %v", h.target, err),
		Status: "error",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
