package assembler

import (
	"context"
	"fmt"
	"strings"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/extractor"
	"ai-chat-be/pkg/retrieval"
)

const uploadedDocSourceName = "Uploaded document"

// Params are the retrieval-mode inputs of one question. The two mode flags
// are checked in priority order: an uploaded document wins over the vector
// index, and with neither set no retrieval happens at all.
type Params struct {
	Question       string
	TenantCode     string
	OrgCode        string
	UseUploadedDoc bool
	UploadedDocURL string
	UseVectorDb    bool
	Limit          int
}

// Bundle is the assembled context for one generation call: prompt-text
// fragments plus the deduplicated source attributions to show the user.
type Bundle struct {
	Fragments []string
	Sources   []entity.SourceDocument
}

// IsEmpty reports whether no context was gathered.
func (b *Bundle) IsEmpty() bool {
	return len(b.Fragments) == 0 && len(b.Sources) == 0
}

// Assembler turns request parameters into a Bundle. It owns no state of its
// own and absorbs every retrieval or extraction failure: a broken knowledge
// index degrades answer quality, it never fails the request.
type Assembler struct {
	gateway   retrieval.Gateway
	extractor extractor.Extractor
	log       logger.ILogger
	docMaxLen int
}

func NewAssembler(gateway retrieval.Gateway, extractor extractor.Extractor, log logger.ILogger, docMaxLen int) *Assembler {
	return &Assembler{
		gateway:   gateway,
		extractor: extractor,
		log:       log,
		docMaxLen: docMaxLen,
	}
}

func (a *Assembler) Assemble(ctx context.Context, p Params) *Bundle {
	switch {
	case p.UseUploadedDoc && p.UploadedDocURL != "":
		return a.fromUploadedDoc(ctx, p.UploadedDocURL)
	case p.UseVectorDb:
		return a.fromKnowledgeIndex(ctx, p)
	default:
		return &Bundle{}
	}
}

func (a *Assembler) fromUploadedDoc(ctx context.Context, docURL string) *Bundle {
	text, err := a.extractor.ExtractText(ctx, docURL)
	if err != nil {
		a.log.Warn("CHAT", "Document extraction failed, continuing without context", map[string]interface{}{
			"document_url": docURL,
			"error":        err.Error(),
		})
		return &Bundle{}
	}
	if strings.TrimSpace(text) == "" {
		a.log.Warn("CHAT", "Document extraction returned empty text", map[string]interface{}{
			"document_url": docURL,
		})
		return &Bundle{}
	}

	return &Bundle{
		Fragments: []string{truncate(text, a.docMaxLen)},
		Sources: []entity.SourceDocument{
			{Name: uploadedDocSourceName, Url: docURL},
		},
	}
}

// fromKnowledgeIndex queries the QA and DOCUMENT partitions independently and
// concatenates the results QA-first with no cross-partition re-ranking. The
// source summary is built from the entire merged list; the prompt fragment
// only from the first Limit entities, so attributions can name more documents
// than the prompt actually contains.
func (a *Assembler) fromKnowledgeIndex(ctx context.Context, p Params) *Bundle {
	merged := a.searchPartition(ctx, p, entity.PartitionQA)
	merged = append(merged, a.searchPartition(ctx, p, entity.PartitionDocument)...)

	sources := dedupeSources(merged)

	promptEntities := merged
	if len(promptEntities) > p.Limit {
		promptEntities = promptEntities[:p.Limit]
	}

	bundle := &Bundle{Sources: sources}
	if fragment := renderFragment(promptEntities); fragment != "" {
		bundle.Fragments = []string{fragment}
	}
	return bundle
}

func (a *Assembler) searchPartition(ctx context.Context, p Params, partition entity.RetrievalPartition) []entity.RetrievalEntity {
	results, err := a.gateway.Search(ctx, []string{p.Question}, retrieval.SearchParams{
		Partition:  partition,
		TenantCode: p.TenantCode,
		OrgCode:    p.OrgCode,
		Limit:      p.Limit,
		Hybrid:     true,
	})
	if err != nil {
		a.log.Warn("CHAT", "Knowledge index search failed, continuing with partial context", map[string]interface{}{
			"partition": string(partition),
			"error":     err.Error(),
		})
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// dedupeSources collapses entities by origin URL, first-seen name winning.
func dedupeSources(entities []entity.RetrievalEntity) []entity.SourceDocument {
	seen := make(map[string]bool, len(entities))
	sources := make([]entity.SourceDocument, 0, len(entities))
	for _, e := range entities {
		if e.Source == "" || seen[e.Source] {
			continue
		}
		seen[e.Source] = true
		sources = append(sources, entity.SourceDocument{
			Name: e.DisplayName(),
			Url:  e.Source,
		})
	}
	return sources
}

func renderFragment(entities []entity.RetrievalEntity) string {
	if len(entities) == 0 {
		return ""
	}

	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		switch e.Kind {
		case entity.PartitionQA:
			parts = append(parts, fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Answer))
		default:
			if e.Content != "" {
				parts = append(parts, e.Content)
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "Knowledge base content:\n" + strings.Join(parts, "\n\n")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
