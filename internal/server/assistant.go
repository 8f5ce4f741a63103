// ABOUTME: JSON assistant endpoint: one question plus the client's session in, reply plus next session out
// ABOUTME: Bodies are capped at MaxBodyBytes; decode failures map to 400, oversize to 413

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mauromedda/portfolio-bot/internal/chatbot"
	"github.com/mauromedda/portfolio-bot/internal/render"
	"github.com/mauromedda/portfolio-bot/internal/session"
)

// AssistantRequest is the POST /api/assistant body. A missing session starts
// a new conversation.
type AssistantRequest struct {
	Query   string         `json:"query"`
	Session *session.State `json:"session,omitempty"`
}

// AssistantResponse is the reply with a sanitized HTML rendering of its
// text, plus the visitor's question escaped for echoing into a transcript.
type AssistantResponse struct {
	chatbot.Reply
	HTML      string `json:"html"`
	QueryHTML string `json:"query_html"`
}

func newResponse(query string, r chatbot.Reply) AssistantResponse {
	return AssistantResponse{
		Reply:     r,
		HTML:      render.HTML(r.Text),
		QueryHTML: render.UserHTML(query),
	}
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAssistant(w, r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit))
			return
		}
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := session.New()
	if req.Session != nil {
		sess = *req.Session
	}
	reply := s.engines.Engine().Respond(req.Query, sess)
	s.logger.Debug("assistant reply",
		"intent", reply.Intent.String(),
		"confidence", reply.Confidence,
		"variant", reply.VariantID,
		"turn", reply.Session.Turn,
	)
	JSON(w, http.StatusOK, newResponse(req.Query, reply))
}

func decodeAssistant(w http.ResponseWriter, r *http.Request) (AssistantRequest, error) {
	var req AssistantRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("empty request body")
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return req, err
		}
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Session != nil && req.Session.Turn < 0 {
		return req, errors.New("invalid session: negative turn")
	}
	return req, nil
}
