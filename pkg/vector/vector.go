// Package vector stores embeddings in PostgreSQL/pgvector: ERP usage notes
// for prompt retrieval and the append-only conversation log.
package vector

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/semillaai/semilla/pkg/config"
)

type Service struct {
	DB         *sqlx.DB
	OpenAICli  *openai.Client
	Model      string
	Dimensions int64
}

func New(ctx context.Context, cfg *config.Config, cli *openai.Client) (*Service, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.KBDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to knowledge database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable pgvector extension: %w", err)
	}

	return &Service{
		DB:         db,
		OpenAICli:  cli,
		Model:      cfg.LLMEmbeddingModel,
		Dimensions: cfg.LLMEmbeddingDimensions,
	}, nil
}

func (s *Service) Close() {
	s.DB.Close()
}

func (s *Service) GenerateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.OpenAICli.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:          openai.F[openai.EmbeddingNewParamsInputUnion](shared.UnionString(text)),
		Model:          openai.String(s.Model),
		EncodingFormat: openai.F(openai.EmbeddingNewParamsEncodingFormatFloat),
	})
	if err != nil {
		return nil, err
	}
	embedding := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}
