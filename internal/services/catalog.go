package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"resumatch/resume-matcher/internal/models"
)

// CatalogService loads the job catalog consumed by the ingestion command.
type CatalogService interface {
	LoadJobs(path string) ([]models.Job, error)
}

type catalogService struct{}

func NewCatalogService() CatalogService {
	return &catalogService{}
}

// LoadJobs implements CatalogService. The catalog is a JSON array of job
// postings; identifiers must be unique and numeric invariants must hold.
func (c *catalogService) LoadJobs(path string) ([]models.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var jobs []models.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	seen := make(map[string]bool, len(jobs))
	for i := range jobs {
		job := &jobs[i]

		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog entry %d: %w", i, err)
		}
		if seen[job.ID] {
			return nil, fmt.Errorf("duplicate job_id %q in catalog", job.ID)
		}
		seen[job.ID] = true

		if job.Status == "" {
			job.Status = models.JobStatusActive
		}
	}

	return jobs, nil
}

// BuildJobText assembles the text representation of a job for embedding:
// title, company, category, requirements, responsibilities and location,
// with markup fragments stripped.
func BuildJobText(job models.Job) string {
	parts := []string{
		job.Title,
		job.CompanyName,
		job.Category,
		job.Requirements,
		job.Responsibilities,
		job.Location,
	}

	text := strings.Join(parts, " ")
	text = markupTagPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
