package models

// CandidateAttributes are best-effort facts extracted from résumé text.
// Every field is optional: a résumé without recognizable patterns yields
// the zero value and matching proceeds on similarity alone.
type CandidateAttributes struct {
	YearsOfExperience *int     `json:"years_of_experience,omitempty"`
	Categories        []string `json:"categories,omitempty"`
	Location          *string  `json:"location,omitempty"`
	NeedsSponsorship  *bool    `json:"needs_sponsorship,omitempty"`
}

func (a CandidateAttributes) Empty() bool {
	return a.YearsOfExperience == nil &&
		len(a.Categories) == 0 &&
		a.Location == nil &&
		a.NeedsSponsorship == nil
}

// MatchConstraints are the caller-provided filters. Only these narrow the
// vector query; extracted attributes never do.
type MatchConstraints struct {
	Categories        []string `json:"categories,omitempty"`
	Location          string   `json:"location,omitempty"`
	NeedsSponsorship  *bool    `json:"needs_sponsorship,omitempty"`
	YearsOfExperience *int     `json:"years_of_experience,omitempty"`
}

// MatchRequest carries one résumé through the pipeline. The raw bytes live
// only for the duration of the request.
type MatchRequest struct {
	Resume      []byte
	Filename    string
	Extension   string
	Constraints MatchConstraints
	Limit       int
}

// ScoreBreakdown explains how a final score was assembled. The three match
// components are 0 or 1 before weighting.
type ScoreBreakdown struct {
	Similarity       float64 `json:"similarity"`
	SponsorshipMatch float64 `json:"sponsorship_match"`
	ExperienceMatch  float64 `json:"experience_match"`
	CategoryMatch    float64 `json:"category_match"`
	AttributeBonus   float64 `json:"attribute_bonus"`
}

type MatchResult struct {
	JobID       string         `json:"job_id"`
	Title       string         `json:"title"`
	CompanyName string         `json:"company_name"`
	Similarity  float64        `json:"similarity"`
	FinalScore  float64        `json:"final_score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	Metadata    JobMetadata    `json:"metadata"`
}

type MatchResponse struct {
	Results       []MatchResult       `json:"results"`
	AppliedFilter string              `json:"applied_filter"`
	Attributes    CandidateAttributes `json:"resume_attributes"`
	TextLength    int                 `json:"text_length"`
	Truncated     bool                `json:"text_truncated"`
	PageCount     int                 `json:"page_count,omitempty"`
}

// ResumeProfile is the embed-only response: extraction plus embedding
// without a corpus query.
type ResumeProfile struct {
	Filename   string              `json:"filename"`
	FileSize   int                 `json:"file_size_bytes"`
	Text       string              `json:"resume_text"`
	TextLength int                 `json:"text_length"`
	Truncated  bool                `json:"text_truncated"`
	PageCount  int                 `json:"page_count,omitempty"`
	Dimension  int                 `json:"embedding_dimension"`
	Attributes CandidateAttributes `json:"resume_attributes"`
}
