package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MUR0612/smart-inventory/internal/apperr"
	"github.com/MUR0612/smart-inventory/internal/orders"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(code string) int {
	switch code {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeInsufficientStock, apperr.CodeIllegalTransition, apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := apperr.Code(err)
	status := statusFor(code)
	p := errorPayload{Code: code, Message: err.Error()}

	var ise *apperr.InsufficientStockError
	var ite *orders.IllegalTransitionError
	switch {
	case errors.As(err, &ise):
		p.Details = map[string]any{
			"product_id": ise.ProductID,
			"requested":  ise.Requested,
			"available":  ise.Available,
		}
	case errors.As(err, &ite):
		p.Details = map[string]any{
			"from":    ite.From,
			"to":      ite.To,
			"allowed": ite.Allowed,
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("code", code), zap.Error(err))
		if status == http.StatusInternalServerError {
			p.Message = "internal error"
		}
	}
	writeJSON(w, status, map[string]errorPayload{"error": p})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid json: %v", err)
	}
	return nil
}
