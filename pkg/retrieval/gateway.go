package retrieval

import (
	"context"
	"fmt"

	"ai-chat-be/internal/entity"
	"ai-chat-be/pkg/embedding"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// SearchParams scopes one knowledge-index lookup. TenantCode/OrgCode narrow
// the candidate set when non-empty; Hybrid blends lexical rank with vector
// similarity instead of ranking by similarity alone.
type SearchParams struct {
	Partition  entity.RetrievalPartition
	TenantCode string
	OrgCode    string
	Limit      int
	Hybrid     bool
}

// Gateway answers similarity queries against the knowledge index. The outer
// slice of the result is keyed by query index: result[i] holds the hits for
// queries[i], best first.
type Gateway interface {
	Search(ctx context.Context, queries []string, params SearchParams) ([][]entity.RetrievalEntity, error)
}

type PgGateway struct {
	db       *gorm.DB
	embedder embedding.EmbeddingProvider
}

func NewPgGateway(db *gorm.DB, embedder embedding.EmbeddingProvider) *PgGateway {
	return &PgGateway{db: db, embedder: embedder}
}

type knowledgeHit struct {
	Kind     string
	Question *string
	Answer   *string
	Content  *string
	Source   string
	FileName *string
	Score    float64
}

func (g *PgGateway) Search(ctx context.Context, queries []string, params SearchParams) ([][]entity.RetrievalEntity, error) {
	if params.Limit <= 0 {
		params.Limit = 5
	}

	results := make([][]entity.RetrievalEntity, len(queries))
	for i, query := range queries {
		hits, err := g.searchOne(ctx, query, params)
		if err != nil {
			return nil, fmt.Errorf("search query %d: %w", i, err)
		}
		results[i] = hits
	}
	return results, nil
}

func (g *PgGateway) searchOne(ctx context.Context, query string, params SearchParams) ([]entity.RetrievalEntity, error) {
	resp, err := g.embedder.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec := pgvector.NewVector(resp.Values)

	sql, args := buildSearchSQL(query, vec, params)

	var rows []knowledgeHit
	if err := g.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	hits := make([]entity.RetrievalEntity, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, toRetrievalEntity(row))
	}
	return hits, nil
}

// buildSearchSQL ranks by cosine similarity alone, or blends it evenly with
// Postgres full-text rank when Hybrid is set. The searchable text of a row is
// its question for QA entries and its content for document chunks.
func buildSearchSQL(query string, vec pgvector.Vector, params SearchParams) (string, []interface{}) {
	scoreExpr := "1 - (embedding <=> ?)"
	args := []interface{}{vec}
	if params.Hybrid {
		scoreExpr = `0.5 * ts_rank(
			to_tsvector('simple', coalesce(question, '') || ' ' || coalesce(content, '')),
			plainto_tsquery('simple', ?)
		) + 0.5 * (1 - (embedding <=> ?))`
		args = []interface{}{query, vec}
	}

	sql := fmt.Sprintf(`SELECT kind, question, answer, content, source, file_name, %s AS score
		FROM knowledge_entries
		WHERE kind = ? AND deleted_at IS NULL`, scoreExpr)
	args = append(args, string(params.Partition))

	if params.TenantCode != "" {
		sql += " AND tenant_code = ?"
		args = append(args, params.TenantCode)
	}
	if params.OrgCode != "" {
		sql += " AND org_code = ?"
		args = append(args, params.OrgCode)
	}

	sql += " ORDER BY score DESC LIMIT ?"
	args = append(args, params.Limit)

	return sql, args
}

func toRetrievalEntity(row knowledgeHit) entity.RetrievalEntity {
	e := entity.RetrievalEntity{
		Kind:   entity.RetrievalPartition(row.Kind),
		Source: row.Source,
	}
	if row.Question != nil {
		e.Question = *row.Question
	}
	if row.Answer != nil {
		e.Answer = *row.Answer
	}
	if row.Content != nil {
		e.Content = *row.Content
	}
	if row.FileName != nil {
		e.FileName = *row.FileName
	}
	return e
}
