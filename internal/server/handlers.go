package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"voice-assistant/internal/assistant"
	apperrors "voice-assistant/internal/common/errors"
	"voice-assistant/internal/common/metrics"
	"voice-assistant/internal/common/validation"
	"voice-assistant/internal/conversation"
	"voice-assistant/internal/models"
)

var chatRequestSchema = validation.MustCompile(fmt.Sprintf(`{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message":   {"type": "string", "maxLength": %d},
		"sessionId": {"type": "string"}
	}
}`, MaxMessageLength))

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type ChatResponse struct {
	RequestID string `json:"requestId"`
	SessionID string `json:"sessionId"`
	assistant.Result
}

type VoiceResponse struct {
	RequestID  string            `json:"requestId"`
	SessionID  string            `json:"sessionId"`
	Transcript string            `json:"transcript,omitempty"`
	Failure    string            `json:"failure,omitempty"`
	Code       string            `json:"code,omitempty"`
	Result     *assistant.Result `json:"result,omitempty"`
}

type HistoryResponse struct {
	SessionID string        `json:"sessionId"`
	Turns     []models.Turn `json:"turns"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func (s *Server) chat(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	if res := chatRequestSchema.ValidateJSON(string(body)); !res.Valid {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid request",
			Details: res.GetErrorMessages(),
		})
	}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON")
	}

	sess := s.deps.Sessions.Get(req.SessionID)
	start := time.Now()
	ex := sess.Send(c.Request().Context(), req.Message)
	s.observe(c, ex, time.Since(start))

	return c.JSON(http.StatusOK, ChatResponse{
		RequestID: requestID(c),
		SessionID: sess.ID(),
		Result:    ex.Result,
	})
}

// voice takes a raw LINEAR16 body. A transcription failure answers 422 with the failure
// message and leaves the session untouched.
func (s *Server) voice(c echo.Context) error {
	if s.deps.Transcriber == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "speech recognition is disabled")
	}

	audio, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxAudioBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	sess := s.deps.Sessions.Get(c.QueryParam("sessionId"))
	start := time.Now()
	ex := sess.SendAudio(c.Request().Context(), s.deps.Transcriber, audio)

	resp := VoiceResponse{RequestID: requestID(c), SessionID: sess.ID()}
	if ex.Failed {
		failure := apperrors.NewTranscriptionFailedError(errors.New(ex.Input))
		s.logger.Warn("transcription failed", map[string]interface{}{
			"requestId": resp.RequestID,
			"sessionId": resp.SessionID,
			"code":      string(failure.Code),
		})
		resp.Failure = ex.Input
		resp.Code = string(failure.Code)
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}

	s.observe(c, ex, time.Since(start))
	resp.Transcript = ex.Input
	resp.Result = &ex.Result
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) history(c echo.Context) error {
	sess, ok := s.deps.Sessions.Lookup(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	return c.JSON(http.StatusOK, HistoryResponse{SessionID: sess.ID(), Turns: sess.History()})
}

func (s *Server) deleteSession(c echo.Context) error {
	if _, ok := s.deps.Sessions.Lookup(c.Param("id")); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown session")
	}
	s.deps.Sessions.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) observe(c echo.Context, ex conversation.Exchange, elapsed time.Duration) {
	res := ex.Result
	metrics.ObserveReply(string(res.Route), res.Intent, string(res.Sentiment), res.City)
	if s.deps.Observability != nil {
		s.deps.Observability.RecordReply(c.Request().Context(), string(res.Route), elapsed)
	}
}
