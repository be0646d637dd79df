// Package httpapi exposes the daemon's three HTTP endpoints on the
// loopback interface: POST /notify, POST /pai and GET /health. Adapted
// from the Cadence-TTS example's SendError/SendSuccess response-envelope
// idiom and switch-on-sentinel-error-for-status pattern, reimplemented on
// net/http.ServeMux since that example's own go.mod carries no resolvable
// gin-gonic version to adopt.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pai-voice/paivoiced/internal/daemon"
	"github.com/pai-voice/paivoiced/internal/daemonerr"
	"github.com/pai-voice/paivoiced/internal/dlog"
	"github.com/pai-voice/paivoiced/internal/voiceconf"
)

var log = dlog.For("httpapi")

const allowedOrigin = "http://localhost"

// NewMux builds the daemon's HTTP surface. It is the only input the
// daemon accepts.
func NewMux(d *daemon.Daemon) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/notify", withCORS(rateLimited(d, handleNotify(d))))
	mux.HandleFunc("/pai", withCORS(rateLimited(d, handlePAI(d))))
	mux.HandleFunc("/health", withCORS(handleHealth(d)))
	return mux
}

func withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Forwarded-For")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func rateLimited(d *daemon.Daemon, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Forwarded-For")
		if key == "" {
			key = "loopback"
		}
		if !d.RateLimit.Allow(key) {
			sendError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next(w, r)
	}
}

type notifyBody struct {
	Title         string             `json:"title"`
	Message       string             `json:"message"`
	VoiceEnabled  *bool              `json:"voice_enabled"`
	VoiceID       string             `json:"voice_id"`
	VoiceName     string             `json:"voice_name"`
	VoiceSettings *voiceconf.Prosody `json:"voice_settings"`
	Volume        *float64           `json:"volume"`
}

func handleNotify(d *daemon.Daemon) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		var body notifyBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			sendError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req := voiceconf.NotifyRequest{
			Title:         body.Title,
			Message:       body.Message,
			VoiceEnabled:  body.VoiceEnabled,
			VoiceID:       body.VoiceID,
			VoiceName:     body.VoiceName,
			VoiceSettings: body.VoiceSettings,
			Volume:        body.Volume,
		}

		enqueueAndRespond(d, r.Context(), req, w)
	}
}

type paiBody struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func handlePAI(d *daemon.Daemon) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		var body paiBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			sendError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req := voiceconf.NotifyRequest{Title: body.Title, Message: body.Message}
		enqueueAndRespond(d, r.Context(), req, w)
	}
}

func enqueueAndRespond(d *daemon.Daemon, ctx context.Context, req voiceconf.NotifyRequest, w http.ResponseWriter) {
	if err := d.Enqueue(ctx, req); err != nil {
		var invalid *daemonerr.InvalidInput
		if asInvalidInput(err, &invalid) {
			sendError(w, http.StatusBadRequest, "Invalid "+invalid.Field+": "+invalid.Reason)
			return
		}
		log.Error("unexpected error enqueuing notification", "err", err)
		sendError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Notification sent",
	})
}

func asInvalidInput(err error, target **daemonerr.InvalidInput) bool {
	if e, ok := err.(*daemonerr.InvalidInput); ok {
		*target = e
		return true
	}
	return false
}

func handleHealth(d *daemon.Daemon) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, http.StatusOK, map[string]any{
			"status":                "healthy",
			"port":                  d.Config.Port,
			"voice_system":          d.Dispatcher.Selected.String(),
			"selected_local_engine": d.Dispatcher.Selected.String(),
			"elevenlabs_configured": d.Config.CloudConfigured(),
			"default_voice_id":      d.Config.DefaultVoiceID,
			"platform":              d.Platform.OS,
		})
	}
}

func sendJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func sendError(w http.ResponseWriter, code int, message string) {
	sendJSON(w, code, map[string]string{"status": "error", "message": message})
}
