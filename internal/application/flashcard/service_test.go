package flashcard

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-digest-api/internal/config"
	"arxiv-digest-api/internal/domain/entity"
	"arxiv-digest-api/internal/infrastructure/llm"
	"arxiv-digest-api/internal/workflow/prompt"
	apperrors "arxiv-digest-api/pkg/errors"
)

type fakePaperRepo struct {
	papers []*entity.Paper
}

func (f *fakePaperRepo) GetByArxivID(_ context.Context, arxivID string) (*entity.Paper, error) {
	for _, p := range f.papers {
		if p.ArxivID == arxivID {
			return p, nil
		}
	}
	return nil, apperrors.ErrPaperNotFound
}

func (f *fakePaperRepo) RecentByCategory(_ context.Context, _ string, max int) ([]*entity.Paper, error) {
	if max > len(f.papers) {
		max = len(f.papers)
	}
	return f.papers[:max], nil
}

type fakeCardRepo struct {
	mu       sync.Mutex
	fresh    []*entity.Flashcard
	upserted []*entity.Flashcard
}

func (f *fakeCardRepo) GetFresh(_ context.Context, _ string, limit int) ([]*entity.Flashcard, error) {
	if limit > len(f.fresh) {
		limit = len(f.fresh)
	}
	return f.fresh[:limit], nil
}

func (f *fakeCardRepo) UpsertBatch(_ context.Context, cards []*entity.Flashcard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, cards...)
	return nil
}

func (f *fakeCardRepo) DeleteExpired(_ context.Context, _ int) (int64, error) {
	return 0, nil
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeInference 按 arxiv_id 返回预置结果，记录调用次数
type fakeInference struct {
	mu      sync.Mutex
	calls   int
	results map[string]string // 提示词中命中的标题片段 -> 响应文本
	fail    map[string]bool
}

func (f *fakeInference) Generate(_ context.Context, req *llm.Request) (*llm.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	var userContent string
	for _, m := range req.Messages {
		userContent += m.Content + "\n"
	}
	for key, fail := range f.fail {
		if fail && strings.Contains(userContent, key) {
			return nil, apperrors.ErrLLMConnection
		}
	}
	for key, text := range f.results {
		if strings.Contains(userContent, key) {
			return &llm.Result{Text: text}, nil
		}
	}
	return nil, apperrors.ErrLLMProtocol
}

func testPapers(titles ...string) []*entity.Paper {
	papers := make([]*entity.Paper, len(titles))
	for i, title := range titles {
		papers[i] = &entity.Paper{
			ArxivID:      "2401.0000" + string(rune('1'+i)),
			Title:        title,
			Abstract:     "abstract of " + title,
			RawText:      "body of " + title,
			Categories:   []string{"cs.AI"},
			PublishedAt:  time.Now().Add(-time.Duration(i) * time.Hour),
			PDFProcessed: true,
		}
	}
	return papers
}

func newTestService(papers *fakePaperRepo, cards *fakeCardRepo, gw inference) *Service {
	return &Service{
		papers:   papers,
		cards:    cards,
		tx:       fakeTx{},
		gateway:  gw,
		registry: prompt.NewRegistry(),
		cfg: &config.FlashcardsConfig{
			TTL:                 24 * time.Hour,
			MaxConcurrency:      2,
			CandidateMultiplier: 2,
			SnippetMaxRunes:     1000,
		},
	}
}

func TestGetCardsZeroCandidatesNoInferenceCalls(t *testing.T) {
	gw := &fakeInference{}
	svc := newTestService(&fakePaperRepo{}, &fakeCardRepo{}, gw)

	cards, regenerated, err := svc.GetCards(context.Background(), "cs.AI", 5, true)

	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.True(t, regenerated)
	assert.Equal(t, 0, gw.calls)
}

func TestGetCardsPartialSuccessReturnsShortList(t *testing.T) {
	papers := testPapers("Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta")
	gw := &fakeInference{
		results: map[string]string{
			"Alpha": `{"headline":"h-alpha","insight":"i-alpha"}`,
			"Delta": `{"headline":"h-delta","insight":"i-delta"}`,
		},
	}
	cardRepo := &fakeCardRepo{}
	svc := newTestService(&fakePaperRepo{papers: papers}, cardRepo, gw)

	// targetCount=3，仅 2 个候选成功
	cards, regenerated, err := svc.GetCards(context.Background(), "cs.AI", 3, true)

	require.NoError(t, err)
	assert.True(t, regenerated)
	require.Len(t, cards, 2)
	// 结果按候选顺序排列（Alpha 比 Delta 更新）
	assert.Equal(t, "h-alpha", cards[0].Summary.Headline)
	assert.Equal(t, "h-delta", cards[1].Summary.Headline)
	// 整批候选全部尝试，无提前退出
	assert.Equal(t, 6, gw.calls)
	assert.Len(t, cardRepo.upserted, 2)
}

func TestGetCardsKeepsCandidateOrderAndLimit(t *testing.T) {
	papers := testPapers("Alpha", "Beta", "Gamma", "Delta")
	gw := &fakeInference{
		results: map[string]string{
			"Alpha": `{"headline":"h-alpha","insight":"i-alpha"}`,
			"Beta":  `{"headline":"h-beta","insight":"i-beta"}`,
			"Gamma": `{"headline":"h-gamma","insight":"i-gamma"}`,
			"Delta": `{"headline":"h-delta","insight":"i-delta"}`,
		},
	}
	svc := newTestService(&fakePaperRepo{papers: papers}, &fakeCardRepo{}, gw)

	cards, _, err := svc.GetCards(context.Background(), "cs.AI", 2, true)

	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "h-alpha", cards[0].Summary.Headline)
	assert.Equal(t, "h-beta", cards[1].Summary.Headline)
}

func TestGetCardsDegradedResultCountsAsSuccess(t *testing.T) {
	papers := testPapers("Alpha")
	gw := &fakeInference{
		results: map[string]string{
			"Alpha": "this model ignored the format and wrote prose",
		},
	}
	svc := newTestService(&fakePaperRepo{papers: papers}, &fakeCardRepo{}, gw)

	cards, _, err := svc.GetCards(context.Background(), "cs.AI", 1, true)

	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Alpha", cards[0].Summary.Headline)
	assert.Equal(t, entity.ConfidenceLow, cards[0].Summary.Confidence)
	assert.True(t, cards[0].Summary.IsPartial)
}

func TestGetCardsFreshCacheSkipsRegeneration(t *testing.T) {
	now := time.Now()
	fresh := []*entity.Flashcard{
		{Category: "cs.AI", ArxivID: "2401.00001", Summary: &entity.FlashcardPayload{Headline: "h", Insight: "i"}, ExpiresAt: now.Add(time.Hour)},
		{Category: "cs.AI", ArxivID: "2401.00002", Summary: &entity.FlashcardPayload{Headline: "h2", Insight: "i2"}, ExpiresAt: now.Add(time.Hour)},
	}
	gw := &fakeInference{}
	svc := newTestService(&fakePaperRepo{papers: testPapers("Alpha", "Beta")}, &fakeCardRepo{fresh: fresh}, gw)

	cards, regenerated, err := svc.GetCards(context.Background(), "cs.AI", 2, false)

	require.NoError(t, err)
	assert.False(t, regenerated)
	assert.Len(t, cards, 2)
	assert.Equal(t, 0, gw.calls)
}

func TestParseCardCleanAndRepair(t *testing.T) {
	payload, err := ParseCard(`{"headline":"h","insight":"i","confidence":"high"}`, nil, "fallback")
	require.NoError(t, err)
	assert.Equal(t, entity.ConfidenceHigh, payload.Confidence)
	assert.Empty(t, payload.Diagnostics)

	payload, err = ParseCard(`{"headline":"h","insight":"i","chain_of_thought":"..."}`, nil, "fallback")
	require.NoError(t, err)
	assert.Equal(t, entity.ConfidenceMedium, payload.Confidence)
	require.Len(t, payload.Diagnostics, 1)
	assert.Contains(t, payload.Diagnostics[0], "stripped_extra_fields: chain_of_thought")
}

func TestParseCardEmptyInputFails(t *testing.T) {
	_, err := ParseCard("   ", nil, "fallback")

	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}
