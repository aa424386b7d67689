package services

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/resume-matcher/internal/models"
)

func TestPointIDForJobIsDeterministic(t *testing.T) {
	first := pointIDForJob("job-1")
	second := pointIDForJob("job-1")
	other := pointIDForJob("job-2")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 36)
}

func TestBuildQdrantFilterEmptyIsNil(t *testing.T) {
	assert.Nil(t, buildQdrantFilter(JobFilter{}))
}

func TestBuildQdrantFilterFullConstraints(t *testing.T) {
	maxYoe := 5
	filter := buildQdrantFilter(JobFilter{
		Statuses:            []models.JobStatus{models.JobStatusActive},
		Categories:          []string{"engineering", "data"},
		Location:            "Berlin",
		RequiresSponsorship: true,
		MaxYoeMin:           &maxYoe,
	})

	require.NotNil(t, filter)
	assert.Len(t, filter.Must, 5)
	assert.Empty(t, filter.Should)
	assert.Empty(t, filter.MustNot)
}

func TestJobPayloadRoundTrip(t *testing.T) {
	job := models.Job{
		ID:               "job-42",
		Title:            "Backend Engineer",
		CompanyName:      "Acme",
		Category:         "engineering",
		EmploymentType:   "full-time",
		WorkLocationType: "remote",
		Location:         "Berlin",
		IdealCompanies:   []string{"Stripe", "Datadog"},
		H1BSponsorship:   true,
		YoeMin:           4,
		EquityMin:        0.001,
		EquityMax:        0.01,
		Status:           models.JobStatusActive,
	}

	payload := qdrant.NewValueMap(jobPayload(job))
	meta := decodeJobMetadata(payload)

	assert.Equal(t, job.Metadata(), meta)
	assert.Equal(t, job.ID, payloadString(payload, "job_id"))
}

func TestJobPayloadDefaultsStatusToActive(t *testing.T) {
	payload := qdrant.NewValueMap(jobPayload(models.Job{ID: "job-1"}))
	assert.Equal(t, string(models.JobStatusActive), payloadString(payload, "status"))
}

func TestDecodeJobMetadataMissingFields(t *testing.T) {
	meta := decodeJobMetadata(map[string]*qdrant.Value{})

	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.IdealCompanies)
	assert.False(t, meta.H1BSponsorship)
	assert.Zero(t, meta.YoeMin)
}

func TestJobFilterDescribe(t *testing.T) {
	maxYoe := 3
	filter := JobFilter{
		Statuses:            []models.JobStatus{models.JobStatusActive},
		Categories:          []string{"engineering", "data"},
		Location:            "Berlin",
		RequiresSponsorship: true,
		MaxYoeMin:           &maxYoe,
	}

	assert.Equal(t,
		"status IN [active] AND job_category IN [data, engineering] AND location = Berlin AND h1b_sponsorship = true AND yoe_min <= 3",
		filter.Describe())

	assert.Equal(t, "(none)", JobFilter{}.Describe())
}
