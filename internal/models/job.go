package models

import "fmt"

type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusInactive JobStatus = "inactive"
)

// Job is one posting from the catalog. Field names follow the JSON catalog
// and the vector index payload, which must stay in sync with the ingestion
// script.
type Job struct {
	ID               string    `json:"job_id"`
	Title            string    `json:"title"`
	CompanyName      string    `json:"company_name"`
	Category         string    `json:"job_category"`
	EmploymentType   string    `json:"employment_type"`
	WorkLocationType string    `json:"work_location_type"`
	Requirements     string    `json:"requirements"`
	Responsibilities string    `json:"responsibilities"`
	Location         string    `json:"location"`
	IdealCompanies   []string  `json:"idealCompanies"`
	H1BSponsorship   bool      `json:"h1b_sponsorship"`
	YoeMin           int       `json:"yoe_min"`
	EquityMin        float64   `json:"equity_min"`
	EquityMax        float64   `json:"equity_max"`
	Status           JobStatus `json:"status"`
}

func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job_id is required")
	}
	if j.YoeMin < 0 {
		return fmt.Errorf("job %s: yoe_min must be >= 0, got %d", j.ID, j.YoeMin)
	}
	if j.EquityMin > j.EquityMax {
		return fmt.Errorf("job %s: equity_min %.4f exceeds equity_max %.4f", j.ID, j.EquityMin, j.EquityMax)
	}
	return nil
}

// JobMetadata is the slice of the Job schema stored as vector index payload.
// The free-text requirements/responsibilities only feed the embedding text
// and are not persisted as payload.
type JobMetadata struct {
	Title            string    `json:"title"`
	CompanyName      string    `json:"company_name"`
	Category         string    `json:"job_category"`
	EmploymentType   string    `json:"employment_type"`
	WorkLocationType string    `json:"work_location_type"`
	Location         string    `json:"location"`
	IdealCompanies   []string  `json:"ideal_companies"`
	H1BSponsorship   bool      `json:"h1b_sponsorship"`
	YoeMin           int       `json:"yoe_min"`
	EquityMin        float64   `json:"equity_min"`
	EquityMax        float64   `json:"equity_max"`
	Status           JobStatus `json:"status"`
}

func (j *Job) Metadata() JobMetadata {
	return JobMetadata{
		Title:            j.Title,
		CompanyName:      j.CompanyName,
		Category:         j.Category,
		EmploymentType:   j.EmploymentType,
		WorkLocationType: j.WorkLocationType,
		Location:         j.Location,
		IdealCompanies:   j.IdealCompanies,
		H1BSponsorship:   j.H1BSponsorship,
		YoeMin:           j.YoeMin,
		EquityMin:        j.EquityMin,
		EquityMax:        j.EquityMax,
		Status:           j.Status,
	}
}
