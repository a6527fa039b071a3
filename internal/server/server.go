package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/dialogue"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
)

const maxBodyBytes = 64 << 10

// Dialogue is the conversation core the transport drives.
type Dialogue interface {
	HandleTurn(ctx context.Context, userID int64, displayName, text string) dialogue.TurnResult
	Welcome(displayName string) string
}

type ChatRequest struct {
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Message     string `json:"message"`
}

type errorBody struct {
	Code    errx.Code `json:"code"`
	Message string    `json:"message"`
}

type Server struct {
	dialogue Dialogue
}

func New(d Dialogue) *Server {
	return &Server{dialogue: d}
}

// Routes returns the HTTP handler for the chat API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /welcome", s.handleWelcome)
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logx.Error().Err(err).Msg("Unable to write healthcheck")
		}
	})
	return mux
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errx.New(errx.CodeParseFailure, err, "request body must be a JSON chat request"))
		return
	}
	if req.UserID <= 0 {
		writeError(w, errx.Newf(errx.CodeParseFailure, "user_id must be a positive integer"))
		return
	}

	start := time.Now()
	res := s.dialogue.HandleTurn(r.Context(), req.UserID, strings.TrimSpace(req.DisplayName), req.Message)
	logx.Debug().
		Str("turn_id", res.TurnID).
		Int64("user_id", req.UserID).
		Dur("elapsed", time.Since(start)).
		Msg("chat request served")

	// dialogue failures are reported in-band
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	writeJSON(w, http.StatusOK, map[string]string{"message": s.dialogue.Welcome(name)})
}

func writeError(w http.ResponseWriter, appErr *errx.AppError) {
	writeJSON(w, http.StatusBadRequest, errorBody{Code: appErr.Code, Message: appErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("Unable to write response")
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", addr).Msg("Bookstore chat API available")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logx.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logx.Info().Msg("Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
