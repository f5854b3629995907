package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/estoque-api/internal/http/apierr"
)

// MessageResponse is the body for operations that report a status string.
type MessageResponse struct {
	Message string `json:"message"`
}

// responder centralizes JSON encoding and error mapping for the handlers.
type responder struct {
	logger *slog.Logger
}

func (rp responder) JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		rp.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

func (rp responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	rp.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	rp.JSON(w, r, res.StatusCode, res)
}
