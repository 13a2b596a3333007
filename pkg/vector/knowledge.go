package vector

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// KnowledgeService answers similarity lookups over the seeded ERP usage
// notes. It satisfies the orchestrator's Retriever interface.
type KnowledgeService struct {
	V *Service
}

func NewKnowledge(ctx context.Context, v *Service) (*KnowledgeService, error) {
	_, err := v.DB.ExecContext(ctx, fmt.Sprintf(knowledgeSchemaSQL, v.Dimensions))
	if err != nil {
		return nil, fmt.Errorf("failed to create knowledge schema: %w", err)
	}
	return &KnowledgeService{V: v}, nil
}

func (s *KnowledgeService) Store(ctx context.Context, text string) error {
	embedding, err := s.V.GenerateEmbeddings(ctx, text)
	if err != nil {
		return err
	}
	return s.StoreEmbedding(ctx, text, embedding)
}

func (s *KnowledgeService) StoreEmbedding(ctx context.Context, text string, embedding []float32) error {
	_, err := s.V.DB.ExecContext(ctx, storeKnowledgeSQL, text, pgvector.NewVector(embedding))
	return err
}

// Search returns the limit closest notes to the input text.
func (s *KnowledgeService) Search(ctx context.Context, input string, limit int) ([]string, error) {
	embedding, err := s.V.GenerateEmbeddings(ctx, input)
	if err != nil {
		return nil, err
	}

	var rows []string
	err = s.V.DB.SelectContext(ctx, &rows, queryKnowledgeSQL, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *KnowledgeService) Truncate(ctx context.Context) error {
	_, err := s.V.DB.ExecContext(ctx, truncateKnowledgeSQL)
	return err
}
