package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"resumatch/resume-matcher/internal/services"
)

type ResumeHandler struct {
	matcher     services.MatcherService
	maxFileSize int64
}

func NewResumeHandler(matcher services.MatcherService, maxFileSize int64) *ResumeHandler {
	return &ResumeHandler{
		matcher:     matcher,
		maxFileSize: maxFileSize,
	}
}

// HandleEmbedResume handles POST /resume/embed: extraction, attribute
// derivation and embedding without querying the corpus. Useful for
// inspecting what the matcher would see.
func (h *ResumeHandler) HandleEmbedResume(c *fiber.Ctx) error {
	start := time.Now()

	req, errResp := parseMatchRequest(c, h.maxFileSize)
	if req == nil {
		return errResp
	}

	profile, err := h.matcher.EmbedResume(c.Context(), req)
	if err != nil {
		return writePipelineError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":              "success",
		"filename":            profile.Filename,
		"file_size_bytes":     profile.FileSize,
		"resume_text":         profile.Text,
		"text_length":         profile.TextLength,
		"text_truncated":      profile.Truncated,
		"page_count":          profile.PageCount,
		"embedding_dimension": profile.Dimension,
		"resume_attributes":   profile.Attributes,
		"processing_time_ms":  time.Since(start).Milliseconds(),
	})
}
