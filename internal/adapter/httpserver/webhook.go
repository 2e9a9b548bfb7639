package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raisa-rms/raisa-backend/internal/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Webhook-Signature"

// EmailWebhookHandler receives inbound email notifications from the mail
// provider and enqueues them for classification. The raw body is verified
// against the shared secret before any parsing.
func (s *Server) EmailWebhookHandler() http.HandlerFunc {
	type request struct {
		Remetente  string    `json:"remetente"`
		Assunto    string    `json:"assunto"`
		Corpo      string    `json:"corpo"`
		RecebidoEm time.Time `json:"recebido_em"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Cfg.WebhookSecret == "" {
			writeError(w, r, fmt.Errorf("%w: webhook secret not configured", domain.ErrConfiguration), nil)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: body read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if !verifySignature(s.Cfg.WebhookSecret, body, r.Header.Get(SignatureHeader)) {
			writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: apiError{
				Code: "UNAUTHORIZED", Message: "invalid webhook signature",
			}})
			return
		}

		var req request
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, r, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidArgument), nil)
			return
		}
		if req.Remetente == "" {
			writeError(w, r, fmt.Errorf("%w: remetente required", domain.ErrInvalidArgument), nil)
			return
		}
		if req.RecebidoEm.IsZero() {
			req.RecebidoEm = time.Now().UTC()
		}

		id, err := s.EmailQueue.Enqueue(r.Context(), domain.EmailQueueItem{
			Remetente:  req.Remetente,
			Assunto:    req.Assunto,
			Corpo:      req.Corpo,
			RecebidoEm: req.RecebidoEm,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
	}
}

func verifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Sign computes the webhook signature for a body. Exported for callers and
// tests that need to produce valid requests.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
