// Package llm adapts the OpenAI chat completions API to the orchestrator's
// Completer interface.
package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"

	"github.com/semillaai/semilla/pkg/chat"
)

type Service struct {
	Client *openai.Client
	Model  string
}

func New(cli *openai.Client, model string) *Service {
	return &Service{Client: cli, Model: model}
}

// Complete issues one non-streaming chat completion.
func (s *Service) Complete(ctx context.Context, msgs []chat.Message) (string, error) {
	union := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case chat.RoleSystem:
			union = append(union, openai.SystemMessage(m.Content))
		case chat.RoleAssistant:
			union = append(union, openai.AssistantMessage(m.Content))
		default:
			union = append(union, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: openai.F(union),
		Model:    openai.String(s.Model),
	}

	completion, err := s.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("llm: completion returned no choices")
	}

	log.Debug().Int("messages", len(msgs)).Msg("Completion succeeded")
	return completion.Choices[0].Message.Content, nil
}
