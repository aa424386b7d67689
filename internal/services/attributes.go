package services

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"resumatch/resume-matcher/internal/models"
)

// AttributeExtractorService derives structured candidate facts from cleaned
// résumé text. It never fails: a résumé without recognizable patterns yields
// a record with every field absent.
type AttributeExtractorService interface {
	Extract(text string) models.CandidateAttributes
}

type attributeExtractorService struct{}

func NewAttributeExtractorService() AttributeExtractorService {
	return &attributeExtractorService{}
}

// Extract implements AttributeExtractorService. Each attribute is produced
// by an independent extractor; one extractor blowing up must not affect the
// others, and any internal panic degrades to "no attributes".
func (s *attributeExtractorService) Extract(text string) (attrs models.CandidateAttributes) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  Attribute extraction panicked, continuing without attributes: %v", r)
			attrs = models.CandidateAttributes{}
		}
	}()

	lower := strings.ToLower(text)

	attrs.YearsOfExperience = extractYearsOfExperience(lower)
	attrs.Categories = extractCategories(lower)
	attrs.Location = extractLocation(text)
	attrs.NeedsSponsorship = extractSponsorshipNeed(lower)

	return attrs
}

var yearsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|yrs?)(?:\s+of)?\s+(?:professional\s+|work\s+|industry\s+|relevant\s+)?experience`),
	regexp.MustCompile(`experience\s*(?:of|:)?\s*(\d{1,2})\s*\+?\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|yrs?)\s+(?:in|as|working)`),
}

func extractYearsOfExperience(lower string) *int {
	best := -1
	for _, pattern := range yearsPatterns {
		for _, match := range pattern.FindAllStringSubmatch(lower, -1) {
			years, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			if years > 60 {
				// Almost certainly a year number or noise, not a tenure
				continue
			}
			if years > best {
				best = years
			}
		}
	}

	if best < 0 {
		return nil
	}
	return &best
}

// categoryKeywords maps job categories (the catalog's job_category values)
// to phrases that signal them in résumé text.
var categoryKeywords = map[string][]string{
	"engineering": {
		"software engineer", "software developer", "backend", "back-end",
		"frontend", "front-end", "full stack", "fullstack", "golang",
		"distributed systems", "microservices", "rest api",
	},
	"data": {
		"data scientist", "data engineer", "data analyst", "machine learning",
		"deep learning", "data pipeline", "etl", "analytics",
	},
	"devops": {
		"devops", "site reliability", "sre", "kubernetes", "terraform",
		"ci/cd", "infrastructure as code",
	},
	"design": {
		"product designer", "ui/ux", "ux designer", "figma", "graphic design",
	},
	"product": {
		"product manager", "product owner", "roadmap", "product strategy",
	},
	"marketing": {
		"marketing", "seo", "content strategy", "growth hacking",
	},
}

func extractCategories(lower string) []string {
	var categories []string
	for category, keywords := range categoryKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				categories = append(categories, category)
				break
			}
		}
	}

	// Map iteration order is random; keep the output deterministic.
	sort.Strings(categories)
	return categories
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^\s*location\s*[:\-]\s*([A-Za-z][A-Za-z .,'\-]{1,60})`),
	regexp.MustCompile(`\b(?:[Bb]ased|[Ll]ocated)\s+in\s+([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+){0,2}(?:,\s*[A-Z]{2})?)`),
}

func extractLocation(text string) *string {
	for _, pattern := range locationPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		location := strings.TrimSpace(match[1])
		location = strings.TrimRight(location, ".,")
		if location == "" {
			continue
		}
		return &location
	}
	return nil
}

var (
	noSponsorshipPhrases = []string{
		"no sponsorship required",
		"does not require sponsorship",
		"do not require sponsorship",
		"without sponsorship",
		"authorized to work",
		"us citizen",
		"green card",
		"permanent resident",
	}
	sponsorshipPhrases = []string{
		"require sponsorship",
		"requires sponsorship",
		"requiring sponsorship",
		"need sponsorship",
		"needs sponsorship",
		"visa sponsorship",
		"h1b sponsorship",
		"h-1b sponsorship",
		"sponsorship required",
	}
)

func extractSponsorshipNeed(lower string) *bool {
	for _, phrase := range noSponsorshipPhrases {
		if strings.Contains(lower, phrase) {
			needs := false
			return &needs
		}
	}
	for _, phrase := range sponsorshipPhrases {
		if strings.Contains(lower, phrase) {
			needs := true
			return &needs
		}
	}
	return nil
}
