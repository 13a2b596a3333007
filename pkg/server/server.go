// Package server exposes the assistant over HTTP: a JSON chat endpoint, a
// multipart voice endpoint and a health check.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxChatBodySize  = 1 << 20  // 1MB
	maxVoiceBodySize = 25 << 20 // 25MB, Whisper's upload ceiling
)

// Processor handles one conversation turn. Implemented by chat.Orchestrator.
type Processor interface {
	Process(ctx context.Context, conversationID, message string) (string, error)
}

// Speech bridges the audio endpoint to the voice service.
type Speech interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Deps struct {
	Processor Processor
	Voice     Speech // optional; nil disables /api/voice
}

type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
}

type VoiceResponse struct {
	ConversationID string `json:"conversation_id"`
	Transcript     string `json:"transcript"`
	Reply          string `json:"reply"`
	Audio          string `json:"audio,omitempty"` // base64 MP3
}

func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Post("/api/chat", handleChat(deps))
	r.Post("/api/voice", handleVoice(deps))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return r
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "message is required")
			return
		}
		if req.ConversationID == "" {
			req.ConversationID = uuid.NewString()
		}

		reply, err := deps.Processor.Process(r.Context(), req.ConversationID, req.Message)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "failed to process message")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{
			ConversationID: req.ConversationID,
			Reply:          reply,
		})
	}
}

func handleVoice(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Voice == nil {
			httpError(w, http.StatusNotImplemented, "voice is not configured")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxVoiceBodySize)
		defer r.Body.Close()

		file, header, err := r.FormFile("audio")
		if err != nil {
			httpError(w, http.StatusBadRequest, "audio file is required: %v", err)
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusBadRequest, "failed to read audio: %v", err)
			return
		}

		conversationID := r.FormValue("conversation_id")
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		transcript, err := deps.Voice.Transcribe(r.Context(), audio, header.Filename)
		if err != nil {
			log.Warn().Err(err).Msg("Transcription failed")
			httpError(w, http.StatusBadGateway, "failed to transcribe audio")
			return
		}

		reply, err := deps.Processor.Process(r.Context(), conversationID, transcript)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "failed to process message")
			return
		}

		resp := VoiceResponse{
			ConversationID: conversationID,
			Transcript:     transcript,
			Reply:          reply,
		}
		if r.FormValue("speak") == "true" {
			if spoken, err := deps.Voice.Synthesize(r.Context(), reply); err != nil {
				log.Warn().Err(err).Msg("Synthesis failed, returning text only")
			} else {
				resp.Audio = base64.StdEncoding.EncodeToString(spoken)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprintf(format, args...)})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}
