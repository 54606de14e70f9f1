package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/bartoszbak/mcqs-helper/internal/logging"
)

// feedbackHandler relays feedback emails through Resend, with a subject
// line synthesized from the feedback text
func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.GetLogger()

	if s.config.ResendAPIKey == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Server misconfiguration: RESEND_API_KEY is missing",
		})
		return
	}

	var req struct {
		HTMLBody string      `json:"html_body"`
		To       interface{} `json:"to"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	var missing []string
	if req.HTMLBody == "" {
		missing = append(missing, "html_body")
	}
	if isEmptyValue(req.To) {
		missing = append(missing, "to")
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Missing required parameters: " + strings.Join(missing, ", "),
		})
		return
	}

	recipients, ok := stringList(req.To)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "'to' parameter must be a list of email strings",
		})
		return
	}

	// Subject generation failures are absorbed inside the generator, so
	// a Gemini outage can never block the email itself.
	subject := s.subjects.GenerateSubject(ctx, req.HTMLBody)

	result, err := s.emails.Send(ctx, recipients, subject, req.HTMLBody)
	if err != nil {
		log.Errorf("Network error contacting Resend: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "Network error contacting Resend",
		})
		return
	}

	if !result.OK() {
		log.Warnf("Resend API returned non-2xx (status %d): %s", result.StatusCode, result.Body)
		writeJSON(w, result.StatusCode, map[string]interface{}{
			"error":         "Failed to send email via Resend",
			"resend_status": result.StatusCode,
			"resend_body":   string(result.Body),
		})
		return
	}

	relayBody(w, http.StatusOK, "application/json", result.Body)
}

// explainHandler relays the explanation provider's response to the
// caller verbatim, whatever its status code
func (s *Server) explainHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.GetLogger()

	if s.config.PerplexityAPIKey == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Server misconfiguration: PERPLEXITY_API_KEY is missing",
		})
		return
	}

	var req struct {
		Question      string `json:"question"`
		CorrectAnswer string `json:"correct_answer"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	var missing []string
	if strings.TrimSpace(req.Question) == "" {
		missing = append(missing, "question")
	}
	if strings.TrimSpace(req.CorrectAnswer) == "" {
		missing = append(missing, "correct_answer")
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Missing required parameters: " + strings.Join(missing, ", "),
		})
		return
	}

	resp, err := s.explainer.Explain(ctx, req.Question, req.CorrectAnswer)
	if err != nil {
		log.Errorf("Network error contacting Perplexity: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "Network error contacting Perplexity",
		})
		return
	}

	relayBody(w, resp.StatusCode, resp.ContentType, resp.Body)
}

// decodeJSONBody rejects non-JSON requests and decodes the body into
// dst, writing the 400 response itself when the request is unusable
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if !isJSONRequest(r) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Request body must be JSON",
		})
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Request body must be JSON",
		})
		return false
	}

	return true
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// isEmptyValue reports whether a decoded JSON value counts as missing:
// absent, null, or an empty array
func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	if list, ok := v.([]interface{}); ok {
		return len(list) == 0
	}
	return false
}

// stringList converts a decoded JSON value into a list of strings,
// reporting false for anything that is not an array of strings
func stringList(v interface{}) ([]string, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}

	return out, true
}

// relayBody forwards an upstream body as-is, preserving the bytes
// instead of re-encoding them
func relayBody(w http.ResponseWriter, statusCode int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(statusCode)
	w.Write(body)
}
