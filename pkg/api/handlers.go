package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/robotwatch/pkg/accesswatch"
	"github.com/dmitrymomot/robotwatch/pkg/clientip"
	"github.com/dmitrymomot/robotwatch/pkg/filter"
	"github.com/dmitrymomot/robotwatch/pkg/logger"
	"github.com/dmitrymomot/robotwatch/pkg/ratelimiter"
	"github.com/dmitrymomot/robotwatch/pkg/robots"
)

type handlers struct {
	src    filter.Source
	logger *slog.Logger
}

type userAgentRequest struct {
	Value string `json:"value"`
}

type identityRequest struct {
	Address   string `json:"address"`
	UserAgent string `json:"user_agent"`
}

func (h *handlers) address(w http.ResponseWriter, r *http.Request) {
	rec, err := h.src.Address(r.Context(), chi.URLParam(r, "ip"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handlers) userAgent(w http.ResponseWriter, r *http.Request) {
	var req userAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := h.src.UserAgent(r.Context(), req.Value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// identity falls back to the caller address when none is given.
func (h *handlers) identity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Address == "" {
		req.Address = clientip.FromContext(r.Context())
	}
	id, err := h.src.Identity(r.Context(), req.Address, req.UserAgent)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "lookup failed", logger.Error(err))
	}
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	var apiErr *accesswatch.APIError
	switch {
	case errors.Is(err, robots.ErrInvalidAddress):
		return http.StatusBadRequest, "invalid address"
	case errors.Is(err, robots.ErrNoDatabase):
		return http.StatusServiceUnavailable, "robots database not loaded"
	case errors.As(err, &apiErr):
		return apiErr.Status, apiErr.Message
	case errors.Is(err, accesswatch.ErrRequestFailed):
		return http.StatusBadGateway, "upstream lookup failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func requireAPIKey(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(accesswatch.APIKeyHeader))
			for _, k := range keys {
				if subtle.ConstantTimeCompare(got, []byte(k)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusUnauthorized, "invalid api key")
		})
	}
}

func clientKey(r *http.Request) string {
	return clientip.FromContext(r.Context())
}

func denyRateLimited(w http.ResponseWriter, _ *http.Request, _ *ratelimiter.Result) {
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
