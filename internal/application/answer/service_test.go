package answer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/infrastructure/llm"
	"arxiv-digest-api/internal/workflow/prompt"
	apperrors "arxiv-digest-api/pkg/errors"
)

type fakePaperRepo struct {
	paper *entity.Paper
}

func (f *fakePaperRepo) GetByArxivID(_ context.Context, arxivID string) (*entity.Paper, error) {
	if f.paper != nil && f.paper.ArxivID == arxivID {
		return f.paper, nil
	}
	return nil, apperrors.ErrPaperNotFound.WithDetail(arxivID)
}

func (f *fakePaperRepo) RecentByCategory(_ context.Context, _ string, _ int) ([]*entity.Paper, error) {
	return nil, nil
}

type fakeChunkRepo struct {
	chunks []*entity.PaperChunk
	topK   int
}

func (f *fakeChunkRepo) GetByPaper(_ context.Context, _ string) ([]*entity.PaperChunk, error) {
	return f.chunks, nil
}

func (f *fakeChunkRepo) SearchByVector(_ context.Context, _ string, _ []float32, topK int) ([]*entity.PaperChunk, error) {
	f.topK = topK
	return f.chunks, nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return []float32{0.1, 0.2}, nil
}

type fakeInference struct {
	calls int
	text  string
	err   error
}

func (f *fakeInference) Generate(_ context.Context, _ *llm.Request) (*llm.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Result{Text: f.text, Model: "test-model"}, nil
}

func (f *fakeInference) Stream(_ context.Context, _ *llm.Request) (*schema.StreamReader[*schema.Message], error) {
	return nil, f.err
}

func newTestService(papers *fakePaperRepo, chunks *fakeChunkRepo, inf *fakeInference) *Service {
	return &Service{
		papers:   papers,
		chunks:   chunks,
		embedder: &fakeEmbedder{},
		gateway:  inf,
		registry: prompt.NewRegistry(),
		cfg:      &config.AnswerConfig{TopK: 4},
	}
}

func testPaper() *entity.Paper {
	return &entity.Paper{ArxivID: "2401.00001", Title: "T", PDFProcessed: true}
}

func testChunks() []*entity.PaperChunk {
	return []*entity.PaperChunk{
		{ArxivID: "2401.00001", ChunkIndex: 0, SectionTitle: "Method", Text: "we use attention"},
		{ArxivID: "2401.00001", ChunkIndex: 1, SectionTitle: "Results", Text: "sota on benchmark"},
	}
}

func TestAskReturnsStructuredAnswer(t *testing.T) {
	out, err := json.Marshal(map[string]any{
		"answer":     "Attention is used in the method section.",
		"citations":  []string{"[1]"},
		"confidence": "high",
	})
	require.NoError(t, err)

	chunks := &fakeChunkRepo{chunks: testChunks()}
	svc := newTestService(&fakePaperRepo{paper: testPaper()}, chunks, &fakeInference{text: string(out)})

	answer, err := svc.Ask(context.Background(), "2401.00001", "what method?")

	require.NoError(t, err)
	assert.Equal(t, "Attention is used in the method section.", answer.Answer)
	assert.Equal(t, entity.ConfidenceHigh, answer.Metadata.Confidence)
	assert.Equal(t, []string{"[1]"}, answer.Citations)
	// 模型未声明 sources 时从检索段落回填
	assert.Equal(t, []string{"[1] Method", "[2] Results"}, answer.Sources)
	assert.Equal(t, 4, chunks.topK)
}

func TestAskUnknownPaper(t *testing.T) {
	inf := &fakeInference{}
	svc := newTestService(&fakePaperRepo{}, &fakeChunkRepo{chunks: testChunks()}, inf)

	_, err := svc.Ask(context.Background(), "2401.99999", "q")

	assert.True(t, apperrors.IsCode(err, apperrors.CodePaperNotFound))
	assert.Equal(t, 0, inf.calls)
}

func TestAskNoIndexedContent(t *testing.T) {
	inf := &fakeInference{}
	svc := newTestService(&fakePaperRepo{paper: testPaper()}, &fakeChunkRepo{}, inf)

	_, err := svc.Ask(context.Background(), "2401.00001", "q")

	assert.True(t, apperrors.IsCode(err, apperrors.CodeNoContentIndexed))
	assert.Equal(t, 0, inf.calls)
}

func TestAskEmptyQuestionRejected(t *testing.T) {
	svc := newTestService(&fakePaperRepo{paper: testPaper()}, &fakeChunkRepo{chunks: testChunks()}, &fakeInference{})

	_, err := svc.Ask(context.Background(), "2401.00001", "  ")

	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestAskDegradesOnPlainTextOutput(t *testing.T) {
	svc := newTestService(&fakePaperRepo{paper: testPaper()},
		&fakeChunkRepo{chunks: testChunks()},
		&fakeInference{text: "The paper mainly studies attention."})

	answer, err := svc.Ask(context.Background(), "2401.00001", "q")

	require.NoError(t, err)
	assert.Equal(t, "The paper mainly studies attention.", answer.Answer)
	assert.True(t, answer.Metadata.IsPartial)
	assert.Equal(t, entity.ConfidenceLow, answer.Metadata.Confidence)
	assert.Contains(t, answer.Metadata.Diagnostics, "degraded_plain_text_response")
}

func TestParseAnswerRepairsSurroundingText(t *testing.T) {
	raw := "以下是回答：\n{\"answer\": \"yes\", \"confidence\": \"medium\"}\n希望有帮助。"

	answer, err := parseAnswer(raw, nil, testChunks(), "m")

	require.NoError(t, err)
	assert.Equal(t, "yes", answer.Answer)
	assert.Equal(t, entity.ConfidenceMedium, answer.Metadata.Confidence)
	assert.NotEmpty(t, answer.Metadata.Diagnostics)
}

func TestParseAnswerUnanswerableCapsConfidence(t *testing.T) {
	raw := `{"answer": "论文未讨论该问题", "confidence": "high", "is_unanswerable": true}`

	answer, err := parseAnswer(raw, nil, testChunks(), "m")

	require.NoError(t, err)
	assert.True(t, answer.Metadata.IsUnanswerable)
	assert.Equal(t, entity.ConfidenceLow, answer.Metadata.Confidence)
}

func TestParseAnswerEmptyInputFails(t *testing.T) {
	_, err := parseAnswer("", nil, testChunks(), "m")

	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}
