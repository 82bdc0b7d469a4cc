package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"refl/internal/core"
	"refl/internal/log"
)

type chatData struct {
	ID       int64         `json:"id"`
	LogType  core.Category `json:"log_type"`
	Quantity *float64      `json:"quantity"`
	Unit     *string       `json:"unit"`
}

type chatResponse struct {
	Status string   `json:"status"`
	Data   chatData `json:"data"`
}

type logEntryResponse struct {
	ID        int64         `json:"id"`
	Message   string        `json:"message"`
	LogType   core.Category `json:"log_type"`
	Quantity  *float64      `json:"quantity"`
	Unit      *string       `json:"unit"`
	Timestamp string        `json:"timestamp"`
}

func toLogEntryResponse(e core.Entry) logEntryResponse {
	return logEntryResponse{
		ID:        e.ID,
		Message:   e.Message,
		LogType:   e.Category,
		Quantity:  e.Quantity,
		Unit:      e.Unit,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"message": "Reflect API is active!"}).Write(w)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := ParseChatRequest(r)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	entry, err := s.entries.LogMessage(r.Context(), req.Message)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to log message", log.FieldError, err)
		InternalServerError("failed to save entry").Write(w)
		return
	}

	NewJSONResponse().Body(chatResponse{
		Status: "success",
		Data: chatData{
			ID:       entry.ID,
			LogType:  entry.Category,
			Quantity: entry.Quantity,
			Unit:     entry.Unit,
		},
	}).Write(w)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	entries, err := s.entries.Recent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list entries", log.FieldError, err, "limit", limit)
		InternalServerError("failed to list entries").Write(w)
		return
	}

	out := make([]logEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLogEntryResponse(e))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, err := core.ParseWindow(r.PathValue("window"))
	if err != nil {
		NotFoundError("unknown summary window").Write(w)
		return
	}

	summary, err := s.summaries.Summary(r.Context(), window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute summary", log.FieldError, err, log.FieldWindow, window.Name)
		InternalServerError("failed to compute summary").Write(w)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ServiceUnavailableError("not ready").Write(w)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		reqErr.Response().Write(w)
		return
	}
	slog.ErrorContext(r.Context(), "Unexpected request error", log.FieldError, err)
	InternalServerError("internal server error").Write(w)
}
