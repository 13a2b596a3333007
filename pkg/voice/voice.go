// Package voice wraps the OpenAI audio APIs so the spoken front end can feed
// the text pipeline: transcription in, optional synthesis out.
package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
)

type Service struct {
	Client *openai.Client
	Voice  string
}

func New(cli *openai.Client, voice string) *Service {
	return &Service{Client: cli, Voice: voice}
}

// Transcribe converts spoken audio to text with Whisper. The filename only
// hints the container format to the API.
func (s *Service) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	resp, err := s.Client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.FileParam(bytes.NewReader(audio), filename, "application/octet-stream"),
		Model:    openai.F(openai.AudioModelWhisper1),
		Language: openai.String("es"),
	})
	if err != nil {
		return "", fmt.Errorf("voice: transcription failed: %w", err)
	}
	log.Debug().Int("bytes", len(audio)).Msg("Transcribed audio")
	return resp.Text, nil
}

// Synthesize renders the reply as MP3 audio.
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.Client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.F(openai.SpeechModelTTS1),
		Input:          openai.String(text),
		Voice:          openai.F(openai.AudioSpeechNewParamsVoice(s.Voice)),
		ResponseFormat: openai.F(openai.AudioSpeechNewParamsResponseFormatMP3),
	})
	if err != nil {
		return nil, fmt.Errorf("voice: synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("voice: reading synthesized audio: %w", err)
	}
	return audio, nil
}
