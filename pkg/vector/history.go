package vector

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/semillaai/semilla/pkg/chat"
)

// HistoryService is the append-only conversation log. It satisfies the
// orchestrator's Recorder interface; write failures are the caller's to
// swallow.
type HistoryService struct {
	V *Service
}

func NewHistory(ctx context.Context, v *Service) (*HistoryService, error) {
	_, err := v.DB.ExecContext(ctx, fmt.Sprintf(historySchemaSQL, v.Dimensions))
	if err != nil {
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &HistoryService{V: v}, nil
}

func (s *HistoryService) Record(ctx context.Context, conversationID string, msg chat.Message) error {
	embedding, err := s.V.GenerateEmbeddings(ctx, msg.Content)
	if err != nil {
		return err
	}

	args := map[string]interface{}{
		"conversation_id": conversationID,
		"role":            msg.Role,
		"content":         msg.Content,
		"created_at":      time.Now().UTC(),
		"embedding":       pgvector.NewVector(embedding),
	}
	_, err = s.V.DB.NamedExecContext(ctx, storeHistorySQL, args)
	return err
}
