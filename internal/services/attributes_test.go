package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractYearsOfExperience(t *testing.T) {
	extractor := NewAttributeExtractorService()

	tests := []struct {
		name  string
		text  string
		years int
	}{
		{"plain", "I have 5 years of experience in backend development", 5},
		{"plus sign", "10+ years experience shipping production services", 10},
		{"yrs abbreviation", "7 yrs of professional experience", 7},
		{"takes the maximum", "2 years in sales, then 9 years of experience as an engineer", 9},
		{"in phrasing", "4 years in platform engineering", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := extractor.Extract(tt.text)
			require.NotNil(t, attrs.YearsOfExperience)
			assert.Equal(t, tt.years, *attrs.YearsOfExperience)
		})
	}
}

func TestExtractYearsIgnoresImplausibleValues(t *testing.T) {
	attrs := NewAttributeExtractorService().Extract("company founded 99 years ago, joined with 85 years of experience")
	assert.Nil(t, attrs.YearsOfExperience)
}

func TestExtractCategories(t *testing.T) {
	attrs := NewAttributeExtractorService().Extract(
		"Backend software engineer working on microservices and data pipelines with Kubernetes")

	assert.Equal(t, []string{"data", "devops", "engineering"}, attrs.Categories)
}

func TestExtractLocation(t *testing.T) {
	extractor := NewAttributeExtractorService()

	tests := []struct {
		name     string
		text     string
		location string
	}{
		{"labeled", "Jane Doe\nLocation: San Francisco, CA\nSummary: engineer", "San Francisco, CA"},
		{"based in", "Software engineer based in Berlin with strong Go skills", "Berlin"},
		{"located in", "Currently located in New York, NY and open to relocation", "New York, NY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := extractor.Extract(tt.text)
			require.NotNil(t, attrs.Location)
			assert.Equal(t, tt.location, *attrs.Location)
		})
	}
}

func TestExtractSponsorshipNeed(t *testing.T) {
	extractor := NewAttributeExtractorService()

	needs := extractor.Extract("I will require visa sponsorship to work in the US")
	require.NotNil(t, needs.NeedsSponsorship)
	assert.True(t, *needs.NeedsSponsorship)

	noNeed := extractor.Extract("Authorized to work in the United States without sponsorship")
	require.NotNil(t, noNeed.NeedsSponsorship)
	assert.False(t, *noNeed.NeedsSponsorship)

	unknown := extractor.Extract("Software engineer who likes compilers")
	assert.Nil(t, unknown.NeedsSponsorship)
}

func TestExtractNoRecognizablePatterns(t *testing.T) {
	attrs := NewAttributeExtractorService().Extract("Lorem ipsum dolor sit amet, consectetur adipiscing elit.")
	assert.True(t, attrs.Empty())
}

func TestExtractNeverFailsOnDegenerateInput(t *testing.T) {
	extractor := NewAttributeExtractorService()

	for _, text := range []string{"", "   ", "\n\n\n", "1234567890"} {
		attrs := extractor.Extract(text)
		assert.True(t, attrs.Empty())
	}
}
