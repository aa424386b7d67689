package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"resumatch/resume-matcher/internal/models"
)

// MatcherService runs the résumé-to-job pipeline: extract text, derive
// attributes, embed, query the corpus under the caller's filters, then
// re-rank with a blended score.
type MatcherService interface {
	Match(ctx context.Context, req *models.MatchRequest) (*models.MatchResponse, error)
	EmbedResume(ctx context.Context, req *models.MatchRequest) (*models.ResumeProfile, error)
}

type matcherService struct {
	extractor  TextExtractorService
	attributes AttributeExtractorService
	embedder   EmbeddingService
	index      JobIndexService

	similarityWeight float64
	attributeWeight  float64
	topK             int
	defaultResults   int
	maxResults       int
}

func NewMatcherService(
	extractor TextExtractorService,
	attributes AttributeExtractorService,
	embedder EmbeddingService,
	index JobIndexService,
	similarityWeight, attributeWeight float64,
	topK, defaultResults, maxResults int,
) MatcherService {
	return &matcherService{
		extractor:        extractor,
		attributes:       attributes,
		embedder:         embedder,
		index:            index,
		similarityWeight: similarityWeight,
		attributeWeight:  attributeWeight,
		topK:             topK,
		defaultResults:   defaultResults,
		maxResults:       maxResults,
	}
}

// Match implements MatcherService. Extraction and embedding failures abort
// the whole match; matching on attributes alone is unsupported. A query that
// finds nothing is a valid empty result, not an error.
func (m *matcherService) Match(ctx context.Context, req *models.MatchRequest) (*models.MatchResponse, error) {
	// Step 1: extract and clean text
	extracted, err := m.extractor.ExtractText(req.Resume, req.Extension)
	if err != nil {
		return nil, err
	}

	// Step 2: best-effort attribute extraction, never blocks the pipeline
	attrs := m.attributes.Extract(extracted.Text)
	if attrs.Empty() {
		log.Println("ℹ️  No candidate attributes recognized, matching on similarity alone")
	}

	// Step 3: résumé embedding
	vector, err := m.embedder.GenerateEmbedding(ctx, extracted.Text)
	if err != nil {
		return nil, err
	}

	// Steps 4-5: filtered top-K query; only explicit constraints narrow it
	filter := BuildJobFilter(req.Constraints)
	hits, err := m.index.QueryJobs(ctx, vector, filter, m.topK)
	if err != nil {
		return nil, err
	}

	// An aborted request must not proceed to scoring
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("match cancelled: %w", err)
	}

	// Steps 6-7: blended re-rank, deterministic ordering, truncation
	results := m.rerank(hits, attrs, req.Constraints)
	limit := m.normalizeLimit(req.Limit)
	if len(results) > limit {
		results = results[:limit]
	}

	return &models.MatchResponse{
		Results:       results,
		AppliedFilter: filter.Describe(),
		Attributes:    attrs,
		TextLength:    extracted.TextLength,
		Truncated:     extracted.Truncated,
		PageCount:     extracted.PageCount,
	}, nil
}

// EmbedResume implements MatcherService: extraction, attributes and
// embedding without a corpus query.
func (m *matcherService) EmbedResume(ctx context.Context, req *models.MatchRequest) (*models.ResumeProfile, error) {
	extracted, err := m.extractor.ExtractText(req.Resume, req.Extension)
	if err != nil {
		return nil, err
	}

	attrs := m.attributes.Extract(extracted.Text)

	vector, err := m.embedder.GenerateEmbedding(ctx, extracted.Text)
	if err != nil {
		return nil, err
	}

	return &models.ResumeProfile{
		Filename:   req.Filename,
		FileSize:   len(req.Resume),
		Text:       extracted.Text,
		TextLength: extracted.TextLength,
		Truncated:  extracted.Truncated,
		PageCount:  extracted.PageCount,
		Dimension:  len(vector),
		Attributes: attrs,
	}, nil
}

// BuildJobFilter turns explicit request constraints into a filter. Absent
// fields add nothing: absence never excludes. Matching is always restricted
// to active postings.
func BuildJobFilter(c models.MatchConstraints) JobFilter {
	filter := JobFilter{
		Statuses: []models.JobStatus{models.JobStatusActive},
	}

	if len(c.Categories) > 0 {
		filter.Categories = c.Categories
	}
	if c.Location != "" {
		filter.Location = c.Location
	}
	if c.NeedsSponsorship != nil && *c.NeedsSponsorship {
		filter.RequiresSponsorship = true
	}
	if c.YearsOfExperience != nil {
		filter.MaxYoeMin = c.YearsOfExperience
	}

	return filter
}

// rerank blends raw similarity with attribute-match bonuses. Explicit
// constraints take precedence over extracted attributes; each bonus check
// is 0 or 1 and the bonus is their mean, so an unknown attribute can never
// outrank a stronger semantic hit.
func (m *matcherService) rerank(hits []JobHit, attrs models.CandidateAttributes, c models.MatchConstraints) []models.MatchResult {
	needsSponsorship := c.NeedsSponsorship
	if needsSponsorship == nil {
		needsSponsorship = attrs.NeedsSponsorship
	}

	years := c.YearsOfExperience
	if years == nil {
		years = attrs.YearsOfExperience
	}

	categories := c.Categories
	if len(categories) == 0 {
		categories = attrs.Categories
	}

	results := make([]models.MatchResult, 0, len(hits))
	for _, hit := range hits {
		breakdown := models.ScoreBreakdown{
			Similarity: float64(hit.Similarity),
		}

		if needsSponsorship != nil {
			if !*needsSponsorship || hit.Metadata.H1BSponsorship {
				breakdown.SponsorshipMatch = 1
			}
		}
		if years != nil && *years >= hit.Metadata.YoeMin {
			breakdown.ExperienceMatch = 1
		}
		if categoryOverlaps(categories, hit.Metadata.Category) {
			breakdown.CategoryMatch = 1
		}

		breakdown.AttributeBonus = (breakdown.SponsorshipMatch + breakdown.ExperienceMatch + breakdown.CategoryMatch) / 3

		results = append(results, models.MatchResult{
			JobID:       hit.JobID,
			Title:       hit.Metadata.Title,
			CompanyName: hit.Metadata.CompanyName,
			Similarity:  breakdown.Similarity,
			FinalScore:  m.similarityWeight*breakdown.Similarity + m.attributeWeight*breakdown.AttributeBonus,
			Breakdown:   breakdown,
			Metadata:    hit.Metadata,
		})
	}

	// Final score descending, ties by raw similarity descending, then by
	// job identifier ascending: identical inputs always rank identically.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore > results[j].FinalScore
		}
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].JobID < results[j].JobID
	})

	return results
}

func (m *matcherService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return m.defaultResults
	}
	if limit > m.maxResults {
		return m.maxResults
	}
	return limit
}

func categoryOverlaps(candidateCategories []string, jobCategory string) bool {
	if jobCategory == "" {
		return false
	}
	for _, category := range candidateCategories {
		if strings.EqualFold(category, jobCategory) {
			return true
		}
	}
	return false
}
