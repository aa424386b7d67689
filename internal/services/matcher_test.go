package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/resume-matcher/internal/models"
)

type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) GenerateEmbeddingWithRetry(ctx context.Context, text string, maxRetries int, initialDelay time.Duration) ([]float32, error) {
	return f.GenerateEmbedding(ctx, text)
}

func (f *fakeEmbedder) Dimension() int {
	return len(f.vector)
}

type fakeJobIndex struct {
	mu        sync.Mutex
	hits      []JobHit
	err       error
	gotFilter JobFilter
	gotTopK   int
	queries   int
	upserts   [][]JobPoint
}

func (f *fakeJobIndex) InitCollection(ctx context.Context, recreate bool) error {
	return nil
}

func (f *fakeJobIndex) QueryJobs(ctx context.Context, vector []float32, filter JobFilter, topK int) ([]JobHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	f.gotFilter = filter
	f.gotTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

func (f *fakeJobIndex) UpsertJobs(ctx context.Context, points []JobPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	batch := append([]JobPoint(nil), points...)
	f.upserts = append(f.upserts, batch)
	return nil
}

func newTestMatcher(embedder EmbeddingService, index JobIndexService) MatcherService {
	return NewMatcherService(
		NewTextExtractorService(10*1024*1024, 10, 50000, 10),
		NewAttributeExtractorService(),
		embedder,
		index,
		0.75, 0.25,
		30, 10, 50,
	)
}

func testResumeRequest(text string) *models.MatchRequest {
	return &models.MatchRequest{
		Resume:    []byte(text),
		Filename:  "resume.txt",
		Extension: "txt",
	}
}

func hit(jobID string, similarity float32, meta models.JobMetadata) JobHit {
	return JobHit{JobID: jobID, Similarity: similarity, Metadata: meta}
}

func TestMatchOrdersByFinalScoreThenSimilarityThenJobID(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	index := &fakeJobIndex{hits: []JobHit{
		hit("job-c", 0.70, models.JobMetadata{Status: models.JobStatusActive}),
		hit("job-a", 0.70, models.JobMetadata{Status: models.JobStatusActive}),
		hit("job-b", 0.90, models.JobMetadata{Status: models.JobStatusActive}),
	}}
	matcher := newTestMatcher(embedder, index)

	resp, err := matcher.Match(context.Background(), testResumeRequest(
		"Software engineer with strong systems background and plenty to say about it."))
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "job-b", resp.Results[0].JobID)
	// Equal final scores and similarities fall back to job ID ascending.
	assert.Equal(t, "job-a", resp.Results[1].JobID)
	assert.Equal(t, "job-c", resp.Results[2].JobID)

	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].FinalScore, resp.Results[i].FinalScore)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.5, 0.5}}
	index := &fakeJobIndex{hits: []JobHit{
		hit("job-2", 0.80, models.JobMetadata{Category: "engineering", YoeMin: 3}),
		hit("job-1", 0.80, models.JobMetadata{Category: "engineering", YoeMin: 3}),
		hit("job-3", 0.65, models.JobMetadata{Category: "data", YoeMin: 8}),
	}}
	matcher := newTestMatcher(embedder, index)

	req := testResumeRequest("Backend software engineer, 5 years of experience building APIs in Go.")

	first, err := matcher.Match(context.Background(), req)
	require.NoError(t, err)
	second, err := matcher.Match(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.AppliedFilter, second.AppliedFilter)
}

func TestMatchBlendedScoreArithmetic(t *testing.T) {
	needs := true
	years := 5
	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeJobIndex{hits: []JobHit{
		hit("job-1", 0.80, models.JobMetadata{
			Category:       "engineering",
			H1BSponsorship: true,
			YoeMin:         3,
		}),
		hit("job-2", 0.80, models.JobMetadata{
			Category:       "design",
			H1BSponsorship: false,
			YoeMin:         10,
		}),
	}}
	matcher := newTestMatcher(embedder, index)

	req := testResumeRequest("A résumé long enough to clear the minimum text threshold for matching.")
	req.Constraints = models.MatchConstraints{
		Categories:        []string{"engineering"},
		NeedsSponsorship:  &needs,
		YearsOfExperience: &years,
	}

	resp, err := matcher.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	// All three checks pass: bonus = 1, final = 0.75*0.8 + 0.25*1.
	full := resp.Results[0]
	assert.Equal(t, "job-1", full.JobID)
	assert.InDelta(t, 1.0, full.Breakdown.AttributeBonus, 1e-9)
	assert.InDelta(t, 0.85, full.FinalScore, 1e-9)

	// No check passes: final = 0.75*0.8.
	none := resp.Results[1]
	assert.Equal(t, "job-2", none.JobID)
	assert.InDelta(t, 0.0, none.Breakdown.AttributeBonus, 1e-9)
	assert.InDelta(t, 0.60, none.FinalScore, 1e-9)
}

func TestMatchUnknownAttributeNeverOutranksSimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeJobIndex{hits: []JobHit{
		hit("job-strong", 0.90, models.JobMetadata{Category: "marketing", YoeMin: 20}),
		hit("job-weak", 0.50, models.JobMetadata{Category: "engineering", YoeMin: 0, H1BSponsorship: true}),
	}}
	matcher := newTestMatcher(embedder, index)

	req := testResumeRequest("Backend software engineer with 10 years of experience in distributed systems.")

	resp, err := matcher.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	// A full bonus adds at most 0.25: 0.50*0.75 + 0.25 < 0.90*0.75.
	assert.Equal(t, "job-strong", resp.Results[0].JobID)
}

func TestMatchZeroHitsIsValidEmptyResult(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeJobIndex{}
	matcher := newTestMatcher(embedder, index)

	resp, err := matcher.Match(context.Background(), testResumeRequest(
		"An unusual résumé that matches no posting in the entire catalog today."))
	require.NoError(t, err)

	assert.Empty(t, resp.Results)
	assert.NotEmpty(t, resp.AppliedFilter)
}

func TestMatchAbortsBeforeEmbeddingOnBadInput(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeJobIndex{}
	matcher := newTestMatcher(embedder, index)

	req := &models.MatchRequest{Resume: []byte("x"), Filename: "resume.docx", Extension: "docx"}

	_, err := matcher.Match(context.Background(), req)
	requirePipelineCode(t, err, CodeUnsupportedType)
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, index.queries)
}

func TestMatchAbortsBeforeQueryOnEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: newTransientError(CodeProviderUnavailable, nil, "embedding provider unavailable")}
	index := &fakeJobIndex{}
	matcher := newTestMatcher(embedder, index)

	_, err := matcher.Match(context.Background(), testResumeRequest(
		"A perfectly ordinary résumé whose embedding call is going to fail."))
	requirePipelineCode(t, err, CodeProviderUnavailable)
	assert.Equal(t, 0, index.queries)
}

func TestMatchCancelledContext(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeJobIndex{hits: []JobHit{hit("job-1", 0.9, models.JobMetadata{})}}
	matcher := newTestMatcher(embedder, index)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := matcher.Match(ctx, testResumeRequest(
		"A résumé submitted by a client that hung up before results came back."))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match cancelled")
}

func TestMatchTruncatesToRequestedLimit(t *testing.T) {
	hits := make([]JobHit, 0, 20)
	for i := 0; i < 20; i++ {
		hits = append(hits, hit(fmt.Sprintf("job-%02d", i), float32(20-i)/20, models.JobMetadata{}))
	}

	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeJobIndex{hits: hits}
	matcher := newTestMatcher(embedder, index)

	req := testResumeRequest("A résumé with broad enough experience to match many postings at once.")
	req.Limit = 5

	resp, err := matcher.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 5)

	// No limit falls back to the configured default.
	req.Limit = 0
	resp, err = matcher.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 10)

	// Oversized limits clamp to the maximum, not an error.
	req.Limit = 500
	resp, err = matcher.Match(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 20)
}

func TestBuildJobFilterAbsenceDoesNotExclude(t *testing.T) {
	filter := BuildJobFilter(models.MatchConstraints{})

	assert.Equal(t, []models.JobStatus{models.JobStatusActive}, filter.Statuses)
	assert.Empty(t, filter.Categories)
	assert.Empty(t, filter.Location)
	assert.False(t, filter.RequiresSponsorship)
	assert.Nil(t, filter.MaxYoeMin)
	assert.Equal(t, "status IN [active]", filter.Describe())
}

func TestBuildJobFilterSponsorshipOnlyNarrowsWhenNeeded(t *testing.T) {
	noNeed := false
	filter := BuildJobFilter(models.MatchConstraints{NeedsSponsorship: &noNeed})
	assert.False(t, filter.RequiresSponsorship, "a candidate who does not need sponsorship can match any job")

	needs := true
	filter = BuildJobFilter(models.MatchConstraints{NeedsSponsorship: &needs})
	assert.True(t, filter.RequiresSponsorship)
}

func TestBuildJobFilterFullConstraints(t *testing.T) {
	needs := true
	years := 7
	filter := BuildJobFilter(models.MatchConstraints{
		Categories:        []string{"engineering", "data"},
		Location:          "Berlin",
		NeedsSponsorship:  &needs,
		YearsOfExperience: &years,
	})

	assert.Equal(t, []string{"engineering", "data"}, filter.Categories)
	assert.Equal(t, "Berlin", filter.Location)
	assert.True(t, filter.RequiresSponsorship)
	require.NotNil(t, filter.MaxYoeMin)
	assert.Equal(t, 7, *filter.MaxYoeMin)

	described := filter.Describe()
	assert.True(t, strings.Contains(described, "status IN [active]"))
	assert.True(t, strings.Contains(described, "yoe_min <= 7"))
}

func TestMatchPassesFilterAndTopKToIndex(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1}}
	index := &fakeJobIndex{}
	matcher := newTestMatcher(embedder, index)

	req := testResumeRequest("A résumé constrained to engineering roles located in Berlin only.")
	req.Constraints = models.MatchConstraints{Categories: []string{"engineering"}, Location: "Berlin"}

	_, err := matcher.Match(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 30, index.gotTopK)
	assert.Equal(t, []string{"engineering"}, index.gotFilter.Categories)
	assert.Equal(t, "Berlin", index.gotFilter.Location)
	assert.Equal(t, []models.JobStatus{models.JobStatusActive}, index.gotFilter.Statuses)
}

func TestEmbedResumeReturnsProfileWithoutQuerying(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3, 0.4}}
	index := &fakeJobIndex{}
	matcher := newTestMatcher(embedder, index)

	profile, err := matcher.EmbedResume(context.Background(), testResumeRequest(
		"Backend engineer based in Berlin with 6 years of experience in Go services."))
	require.NoError(t, err)

	assert.Equal(t, "resume.txt", profile.Filename)
	assert.Equal(t, 4, profile.Dimension)
	assert.Greater(t, profile.TextLength, 0)
	require.NotNil(t, profile.Attributes.YearsOfExperience)
	assert.Equal(t, 6, *profile.Attributes.YearsOfExperience)
	assert.Equal(t, 0, index.queries)
}
