package assembler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-chat-be/internal/entity"
	"ai-chat-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeGateway struct {
	byPartition map[entity.RetrievalPartition][]entity.RetrievalEntity
	errs        map[entity.RetrievalPartition]error
	calls       []retrieval.SearchParams
}

func (g *fakeGateway) Search(ctx context.Context, queries []string, params retrieval.SearchParams) ([][]entity.RetrievalEntity, error) {
	g.calls = append(g.calls, params)
	if err := g.errs[params.Partition]; err != nil {
		return nil, err
	}
	return [][]entity.RetrievalEntity{g.byPartition[params.Partition]}, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) ExtractText(ctx context.Context, documentURL string) (string, error) {
	return e.text, e.err
}

func newTestAssembler(gateway *fakeGateway, ext *fakeExtractor, docMaxLen int) *Assembler {
	if gateway == nil {
		gateway = &fakeGateway{}
	}
	if ext == nil {
		ext = &fakeExtractor{}
	}
	return NewAssembler(gateway, ext, nopLogger{}, docMaxLen)
}

func TestAssemble_NoRetrievalModeYieldsEmptyBundle(t *testing.T) {
	a := newTestAssembler(nil, nil, 3000)

	bundle := a.Assemble(context.Background(), Params{Question: "anything at all"})

	assert.True(t, bundle.IsEmpty())
}

func TestAssemble_UploadedDocTakesPriorityOverVectorSearch(t *testing.T) {
	gateway := &fakeGateway{}
	a := newTestAssembler(gateway, &fakeExtractor{text: "extracted body"}, 3000)

	bundle := a.Assemble(context.Background(), Params{
		Question:       "q",
		UseUploadedDoc: true,
		UploadedDocURL: "http://files/doc.pdf",
		UseVectorDb:    true,
		Limit:          5,
	})

	assert.Empty(t, gateway.calls, "vector search must not run when a document is supplied")
	require.Len(t, bundle.Fragments, 1)
	assert.Equal(t, "extracted body", bundle.Fragments[0])
	assert.Equal(t, []entity.SourceDocument{{Name: "Uploaded document", Url: "http://files/doc.pdf"}}, bundle.Sources)
}

func TestAssemble_UploadedDocTruncatedToMaxLength(t *testing.T) {
	a := newTestAssembler(nil, &fakeExtractor{text: strings.Repeat("x", 100)}, 10)

	bundle := a.Assemble(context.Background(), Params{
		Question:       "q",
		UseUploadedDoc: true,
		UploadedDocURL: "http://files/doc.pdf",
	})

	require.Len(t, bundle.Fragments, 1)
	assert.Len(t, bundle.Fragments[0], 10)
}

func TestAssemble_ExtractionFailureDegradesToEmptyBundle(t *testing.T) {
	a := newTestAssembler(nil, &fakeExtractor{err: errors.New("ocr down")}, 3000)

	bundle := a.Assemble(context.Background(), Params{
		Question:       "q",
		UseUploadedDoc: true,
		UploadedDocURL: "http://files/doc.pdf",
	})

	assert.True(t, bundle.IsEmpty())
}

func TestAssemble_MergesPartitionsQAFirst(t *testing.T) {
	gateway := &fakeGateway{
		byPartition: map[entity.RetrievalPartition][]entity.RetrievalEntity{
			entity.PartitionQA: {
				{Kind: entity.PartitionQA, Question: "a", Answer: "b", Source: "s1"},
			},
			entity.PartitionDocument: {
				{Kind: entity.PartitionDocument, Content: "c", Source: "s2"},
			},
		},
	}
	a := newTestAssembler(gateway, nil, 3000)

	bundle := a.Assemble(context.Background(), Params{Question: "q", UseVectorDb: true, Limit: 5})

	require.Len(t, bundle.Sources, 2)
	assert.Equal(t, "s1", bundle.Sources[0].Url)
	assert.Equal(t, "s2", bundle.Sources[1].Url)

	require.Len(t, bundle.Fragments, 1)
	assert.Contains(t, bundle.Fragments[0], "Q: a\nA: b")
	assert.Contains(t, bundle.Fragments[0], "c")

	require.Len(t, gateway.calls, 2)
	assert.Equal(t, entity.PartitionQA, gateway.calls[0].Partition)
	assert.Equal(t, entity.PartitionDocument, gateway.calls[1].Partition)
	assert.True(t, gateway.calls[0].Hybrid)
}

func TestAssemble_SourcesBuiltFromFullMergeBeyondPromptTruncation(t *testing.T) {
	gateway := &fakeGateway{
		byPartition: map[entity.RetrievalPartition][]entity.RetrievalEntity{
			entity.PartitionQA: {
				{Kind: entity.PartitionQA, Question: "first", Answer: "a1", Source: "s1"},
			},
			entity.PartitionDocument: {
				{Kind: entity.PartitionDocument, Content: "second body", Source: "s2", FileName: "doc.pdf"},
			},
		},
	}
	a := newTestAssembler(gateway, nil, 3000)

	bundle := a.Assemble(context.Background(), Params{Question: "q", UseVectorDb: true, Limit: 1})

	// Attribution still names both hits even though the prompt holds only one.
	assert.Len(t, bundle.Sources, 2)
	require.Len(t, bundle.Fragments, 1)
	assert.Contains(t, bundle.Fragments[0], "first")
	assert.NotContains(t, bundle.Fragments[0], "second body")
}

func TestAssemble_DeduplicatesSourcesFirstNameWins(t *testing.T) {
	gateway := &fakeGateway{
		byPartition: map[entity.RetrievalPartition][]entity.RetrievalEntity{
			entity.PartitionQA: {
				{Kind: entity.PartitionQA, Question: "first name", Answer: "a", Source: "s1"},
			},
			entity.PartitionDocument: {
				{Kind: entity.PartitionDocument, Content: "c", Source: "s1", FileName: "other name"},
			},
		},
	}
	a := newTestAssembler(gateway, nil, 3000)

	bundle := a.Assemble(context.Background(), Params{Question: "q", UseVectorDb: true, Limit: 5})

	require.Len(t, bundle.Sources, 1)
	assert.Equal(t, "first name", bundle.Sources[0].Name)
}

func TestAssemble_PartialRetrievalFailureKeepsSurvivingPartition(t *testing.T) {
	gateway := &fakeGateway{
		byPartition: map[entity.RetrievalPartition][]entity.RetrievalEntity{
			entity.PartitionDocument: {
				{Kind: entity.PartitionDocument, Content: "doc text", Source: "s2"},
			},
		},
		errs: map[entity.RetrievalPartition]error{
			entity.PartitionQA: errors.New("index offline"),
		},
	}
	a := newTestAssembler(gateway, nil, 3000)

	bundle := a.Assemble(context.Background(), Params{Question: "q", UseVectorDb: true, Limit: 5})

	require.Len(t, bundle.Sources, 1)
	assert.Equal(t, "s2", bundle.Sources[0].Url)
	require.Len(t, bundle.Fragments, 1)
	assert.Contains(t, bundle.Fragments[0], "doc text")
}

func TestAssemble_TotalRetrievalFailureYieldsEmptyBundle(t *testing.T) {
	gateway := &fakeGateway{
		errs: map[entity.RetrievalPartition]error{
			entity.PartitionQA:       errors.New("down"),
			entity.PartitionDocument: errors.New("down"),
		},
	}
	a := newTestAssembler(gateway, nil, 3000)

	bundle := a.Assemble(context.Background(), Params{Question: "q", UseVectorDb: true, Limit: 5})

	assert.True(t, bundle.IsEmpty())
}
