package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/suresoft/ams-client/internal/apierr"
)

// ErrorResponse mirrors the backend's error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// writeJSON writes a JSON response with the given status code.
// Logs encoding failures internally using the provided context.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeJSONError writes a JSON error response with the given status code.
func writeJSONError(ctx context.Context, w http.ResponseWriter, detail string, status int) {
	writeJSON(ctx, w, ErrorResponse{Detail: detail}, status)
}

// errorResponse maps a client error onto the status and detail returned to the
// local caller.
func errorResponse(err error) (int, string) {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, err.Error()
	}

	detail := apiErr.Detail
	if detail == "" {
		detail = apiErr.Error()
	}

	if apierr.RequiresLogin(apiErr.Kind) {
		return http.StatusUnauthorized, detail
	}

	switch apiErr.Kind {
	case apierr.KindNetwork:
		return http.StatusBadGateway, detail
	case apierr.KindForbidden:
		return http.StatusForbidden, detail
	case apierr.KindNotFound:
		return http.StatusNotFound, detail
	}

	if apiErr.Status >= 400 {
		return apiErr.Status, detail
	}
	return http.StatusInternalServerError, detail
}
