package mindmap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arxiv-digest-api/internal/domain/entity"
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
}

func (f *fakeChunkRepo) GetByPaper(_ context.Context, _ string) ([]*entity.PaperChunk, error) {
	return f.chunks, nil
}

func (f *fakeChunkRepo) SearchByVector(_ context.Context, _ string, _ []float32, _ int) ([]*entity.PaperChunk, error) {
	return f.chunks, nil
}

type fakeCache struct {
	entries map[string]*entity.MindMapCacheEntry
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*entity.MindMapCacheEntry)}
}

func (f *fakeCache) Get(_ context.Context, arxivID string) (*entity.MindMapCacheEntry, error) {
	entry, ok := f.entries[arxivID]
	if !ok {
		return nil, nil
	}
	entry.HitCount++
	return entry, nil
}

func (f *fakeCache) Set(_ context.Context, arxivID string, m *entity.MindMap) error {
	f.sets++
	f.entries[arxivID] = &entity.MindMapCacheEntry{
		MindMap:      m,
		CacheVersion: 1,
		CachedAt:     time.Now(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, arxivID string) (bool, error) {
	_, ok := f.entries[arxivID]
	delete(f.entries, arxivID)
	return ok, nil
}

func (f *fakeCache) Status(_ context.Context, arxivID string) (*entity.MindMapCacheStatus, error) {
	entry, ok := f.entries[arxivID]
	if !ok {
		return &entity.MindMapCacheStatus{Cached: false}, nil
	}
	return &entity.MindMapCacheStatus{Cached: true, HitCount: entry.HitCount}, nil
}

type fakeGenerator struct {
	calls  int
	result *entity.MindMap
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, _ *entity.Paper, _ []*entity.PaperChunk) (*entity.MindMap, error) {
	f.calls++
	return f.result, f.err
}

func testPaper() *entity.Paper {
	return &entity.Paper{ArxivID: "2401.00001", Title: "T", PDFProcessed: true}
}

func testChunks() []*entity.PaperChunk {
	return []*entity.PaperChunk{chunk("Introduction", "intro", 0)}
}

func TestGetOrGenerateMissGeneratesAndCaches(t *testing.T) {
	cache := newFakeCache()
	gen := &fakeGenerator{result: validTree()}
	svc := &Service{
		papers:    &fakePaperRepo{paper: testPaper()},
		chunks:    &fakeChunkRepo{chunks: testChunks()},
		cache:     cache,
		generator: gen,
	}

	m, cached, err := svc.GetOrGenerate(context.Background(), "2401.00001")

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "2401.00001", m.ArxivID)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, 1, cache.sets)
}

func TestGetOrGenerateHitSkipsGeneration(t *testing.T) {
	cache := newFakeCache()
	gen := &fakeGenerator{result: validTree()}
	svc := &Service{
		papers:    &fakePaperRepo{paper: testPaper()},
		chunks:    &fakeChunkRepo{chunks: testChunks()},
		cache:     cache,
		generator: gen,
	}

	_, _, err := svc.GetOrGenerate(context.Background(), "2401.00001")
	require.NoError(t, err)

	m, cached, err := svc.GetOrGenerate(context.Background(), "2401.00001")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.NotNil(t, m)
	assert.Equal(t, 1, gen.calls)
}

func TestGetOrGenerateFailureWritesNothing(t *testing.T) {
	cache := newFakeCache()
	gen := &fakeGenerator{err: apperrors.ErrGenerationFailed}
	svc := &Service{
		papers:    &fakePaperRepo{paper: testPaper()},
		chunks:    &fakeChunkRepo{chunks: testChunks()},
		cache:     cache,
		generator: gen,
	}

	_, _, err := svc.GetOrGenerate(context.Background(), "2401.00001")

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeGenerationFailed))
	assert.Equal(t, 0, cache.sets)
}

func TestGetOrGenerateUnknownPaper(t *testing.T) {
	svc := &Service{
		papers:    &fakePaperRepo{},
		chunks:    &fakeChunkRepo{},
		cache:     newFakeCache(),
		generator: &fakeGenerator{},
	}

	_, _, err := svc.GetOrGenerate(context.Background(), "2401.99999")

	assert.True(t, apperrors.IsCode(err, apperrors.CodePaperNotFound))
}

func TestInvalidateReportsExistence(t *testing.T) {
	cache := newFakeCache()
	svc := &Service{
		papers:    &fakePaperRepo{paper: testPaper()},
		chunks:    &fakeChunkRepo{chunks: testChunks()},
		cache:     cache,
		generator: &fakeGenerator{result: validTree()},
	}

	existed, err := svc.Invalidate(context.Background(), "2401.00001")
	require.NoError(t, err)
	assert.False(t, existed)

	_, _, err = svc.GetOrGenerate(context.Background(), "2401.00001")
	require.NoError(t, err)

	existed, err = svc.Invalidate(context.Background(), "2401.00001")
	require.NoError(t, err)
	assert.True(t, existed)
}
