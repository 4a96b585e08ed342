package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"checkmate-agent/internal/application/port/input"
	"checkmate-agent/internal/usecase/notegen"
)

type communityNoteRequest struct {
	Text        string `json:"text"`
	ImageURL    string `json:"imageUrl"`
	Caption     string `json:"caption"`
	AddPlanning bool   `json:"addPlanning"`
}

func (s *Server) getCommunityNote(w http.ResponseWriter, r *http.Request) {
	var body communityNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	verdict, err := s.notes.GenerateNote(r.Context(), input.NoteRequest{
		Text:        body.Text,
		ImageURL:    body.ImageURL,
		Caption:     body.Caption,
		AddPlanning: body.AddPlanning,
		Provider:    r.URL.Query().Get("provider"),
		RequestID:   requestIDFrom(r.Context()),
	})
	if err != nil {
		if errors.Is(err, notegen.ErrNoContent) || errors.Is(err, notegen.ErrBothContent) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Community note generation failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) getNeedsChecking(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}

	result, err := s.screener.NeedsChecking(r.Context(), text)
	if err != nil {
		s.logger.Error("Needs-checking filter failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) sensitivityFilter(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}

	result, err := s.screener.IsSensitive(r.Context(), text)
	if err != nil {
		s.logger.Error("Sensitivity filter failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) redact(w http.ResponseWriter, r *http.Request) {
	text, ok := decodeText(w, r)
	if !ok {
		return
	}

	result, err := s.screener.Redact(r.Context(), text)
	if err != nil {
		s.logger.Error("Redaction failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body textRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return "", false
	}
	return body.Text, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
