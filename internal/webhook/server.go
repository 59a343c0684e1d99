// Package webhook is the HTTP entry point: an inbound-message hook in the
// form-encoded shape WhatsApp gateways post, plus the voice-mode and
// session-reset operations and a TTS test endpoint.
package webhook

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/user/cartable/internal/chatbot"
	"github.com/user/cartable/internal/gateway"
	"github.com/user/cartable/internal/types"
)

// replyTimeout bounds how long a webhook call waits for its turn through
// the sender's lane.
const replyTimeout = 30 * time.Second

// Server is a lightweight HTTP handler around the gateway and bot.
type Server struct {
	gateway *gateway.Gateway
	engine  *chatbot.Bot
	synth   types.Synthesizer
	mux     *http.ServeMux
}

// NewServer creates the webhook Server. synth may be nil, which disables
// the /tts endpoint.
func NewServer(gw *gateway.Gateway, engine *chatbot.Bot, synth types.Synthesizer) *Server {
	s := &Server{
		gateway: gw,
		engine:  engine,
		synth:   synth,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /webhook", s.handleInbound)
	s.mux.HandleFunc("POST /voice", s.handleVoice)
	s.mux.HandleFunc("POST /session/clear", s.handleClear)
	s.mux.HandleFunc("POST /tts", s.handleTTS)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// inboundRequest is the JSON alternative to the form-encoded hook body.
type inboundRequest struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// inboundResponse carries the answer; audio is base64 when voice mode
// produced speech.
type inboundResponse struct {
	Text     string `json:"text"`
	AudioB64 string `json:"audio_b64,omitempty"`
}

func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	from, body, ok := parseInbound(r)
	if !ok {
		http.Error(w, `{"error":"from is required"}`, http.StatusBadRequest)
		return
	}

	replyCh := make(chan types.Reply, 1)
	msg := &types.InboundMessage{Sender: senderKey(from), Text: body}
	err := s.gateway.HandleInbound(r.Context(), msg, gateway.WithOnComplete(func(reply types.Reply) {
		replyCh <- reply
	}))
	if err != nil {
		slog.Error("webhook enqueue failed", "from", from, "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	select {
	case reply := <-replyCh:
		writeReply(w, reply)
	case <-time.After(replyTimeout):
		http.Error(w, `{"error":"timed out"}`, http.StatusGatewayTimeout)
	case <-r.Context().Done():
	}
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	from, _, ok := parseInbound(r)
	if !ok {
		http.Error(w, `{"error":"from is required"}`, http.StatusBadRequest)
		return
	}
	ack := s.engine.RequestVoice(senderKey(from))
	writeReply(w, types.TextReply(ack))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	from, _, ok := parseInbound(r)
	if !ok {
		http.Error(w, `{"error":"from is required"}`, http.StatusBadRequest)
		return
	}
	s.engine.ClearSession(senderKey(from))
	writeReply(w, types.TextReply("Votre session a été réinitialisée."))
}

// ttsRequest is the JSON body for POST /tts.
type ttsRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.synth == nil {
		http.Error(w, `{"error":"tts not configured"}`, http.StatusNotImplemented)
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, `{"error":"text is required"}`, http.StatusBadRequest)
		return
	}
	if req.Lang == "" {
		req.Lang = "fr"
	}

	ctx, cancel := context.WithTimeout(r.Context(), replyTimeout)
	defer cancel()
	audio, err := s.synth.Synthesize(ctx, req.Text, req.Lang)
	if err != nil {
		slog.Error("tts test endpoint failed", "error", err)
		http.Error(w, `{"error":"synthesis failed"}`, http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Write(audio)
}

// parseInbound reads From/Body from a form post or a JSON body.
func parseInbound(r *http.Request) (from, body string, ok bool) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req inboundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", false
		}
		from, body = req.From, req.Body
	} else {
		if err := r.ParseForm(); err != nil {
			return "", "", false
		}
		from, body = r.PostFormValue("From"), r.PostFormValue("Body")
	}
	return from, strings.TrimSpace(body), from != ""
}

// senderKey normalizes the hook's From value: "whatsapp:+336..." is already
// channel-qualified, a bare number gets the whatsapp prefix.
func senderKey(from string) types.SenderKey {
	if strings.Contains(from, ":") {
		return types.SenderKey(from)
	}
	return types.NewSenderKey("whatsapp", from)
}

func writeReply(w http.ResponseWriter, reply types.Reply) {
	resp := inboundResponse{Text: reply.Text}
	if reply.HasAudio() {
		resp.AudioB64 = base64.StdEncoding.EncodeToString(reply.Audio)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
