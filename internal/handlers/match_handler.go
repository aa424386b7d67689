package handlers

import (
	"encoding/json"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/resume-matcher/internal/models"
	"resumatch/resume-matcher/internal/repositories"
	"resumatch/resume-matcher/internal/services"
)

type MatchHandler struct {
	matcher     services.MatcherService
	recordRepo  repositories.MatchRecordRepository
	maxFileSize int64
}

func NewMatchHandler(
	matcher services.MatcherService,
	recordRepo repositories.MatchRecordRepository,
	maxFileSize int64,
) *MatchHandler {
	return &MatchHandler{
		matcher:     matcher,
		recordRepo:  recordRepo,
		maxFileSize: maxFileSize,
	}
}

// HandleMatch handles POST /match: multipart "resume" file plus optional
// constraint form fields. The match runs synchronously.
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	start := time.Now()

	// parseMatchRequest writes the 400 response itself when parsing fails
	req, errResp := parseMatchRequest(c, h.maxFileSize)
	if req == nil {
		return errResp
	}

	response, err := h.matcher.Match(c.Context(), req)
	if err != nil {
		return writePipelineError(c, err)
	}

	processingMs := time.Since(start).Milliseconds()

	recordID := h.persistRecord(req, response, processingMs)

	return c.JSON(fiber.Map{
		"match_id":           recordID,
		"results":            response.Results,
		"result_count":       len(response.Results),
		"applied_filter":     response.AppliedFilter,
		"resume_attributes":  response.Attributes,
		"text_length":        response.TextLength,
		"text_truncated":     response.Truncated,
		"page_count":         response.PageCount,
		"processing_time_ms": processingMs,
	})
}

// persistRecord stores a summary of the match for later lookup. A storage
// failure is logged but never fails the request the candidate already paid
// for.
func (h *MatchHandler) persistRecord(req *models.MatchRequest, response *models.MatchResponse, processingMs int64) string {
	attrsJSON, err := json.Marshal(response.Attributes)
	if err != nil {
		log.Printf("⚠️  Failed to encode attributes for history: %v\n", err)
		return ""
	}
	resultsJSON, err := json.Marshal(response.Results)
	if err != nil {
		log.Printf("⚠️  Failed to encode results for history: %v\n", err)
		return ""
	}

	record := &models.MatchRecord{
		ID:             uuid.New(),
		ResumeFilename: req.Filename,
		TextLength:     response.TextLength,
		Attributes:     string(attrsJSON),
		AppliedFilter:  response.AppliedFilter,
		Results:        string(resultsJSON),
		ResultCount:    len(response.Results),
		ProcessingMs:   processingMs,
		CreatedAt:      time.Now(),
	}

	if err := h.recordRepo.Create(record); err != nil {
		log.Printf("⚠️  Failed to persist match record: %v\n", err)
		return ""
	}

	return record.ID.String()
}

// parseMatchRequest reads the multipart résumé and the optional constraint
// fields shared by the match and embed endpoints.
func parseMatchRequest(c *fiber.Ctx, maxFileSize int64) (*models.MatchRequest, error) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file is required",
			"code":  "MISSING_FILE",
		})
	}

	if fileHeader.Size > maxFileSize {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume file too large",
			"code":  services.CodeFileTooLarge,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
			"code":  "UPLOAD_FAILED",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
			"code":  "UPLOAD_FAILED",
		})
	}

	constraints, ok := parseConstraints(c)
	if !ok {
		return nil, nil
	}

	limit := 0
	if raw := c.FormValue("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
				"code":  "INVALID_PARAMETER",
			})
		}
	}

	return &models.MatchRequest{
		Resume:      data,
		Filename:    fileHeader.Filename,
		Extension:   strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), "."),
		Constraints: constraints,
		Limit:       limit,
	}, nil
}

func parseConstraints(c *fiber.Ctx) (models.MatchConstraints, bool) {
	var constraints models.MatchConstraints

	if raw := c.FormValue("categories"); raw != "" {
		for _, category := range strings.Split(raw, ",") {
			if category = strings.TrimSpace(category); category != "" {
				constraints.Categories = append(constraints.Categories, category)
			}
		}
	}

	constraints.Location = strings.TrimSpace(c.FormValue("location"))

	if raw := c.FormValue("needs_sponsorship"); raw != "" {
		needs, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "needs_sponsorship must be a boolean",
				"code":  "INVALID_PARAMETER",
			})
			return constraints, false
		}
		constraints.NeedsSponsorship = &needs
	}

	if raw := c.FormValue("years_of_experience"); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil || years < 0 {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "years_of_experience must be a non-negative integer",
				"code":  "INVALID_PARAMETER",
			})
			return constraints, false
		}
		constraints.YearsOfExperience = &years
	}

	return constraints, true
}

// writePipelineError maps the error taxonomy onto HTTP statuses: client
// input → 400, transient provider failures → 503 (retryable), permanent
// provider failures → 500.
func writePipelineError(c *fiber.Ctx, err error) error {
	if pe, ok := services.AsPipelineError(err); ok {
		statusCode := fiber.StatusInternalServerError
		switch pe.Category {
		case services.CategoryClientInput:
			statusCode = fiber.StatusBadRequest
		case services.CategoryProviderTransient:
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"error": pe.Message,
			"code":  pe.Code,
		})
	}

	log.Printf("❌ Unclassified pipeline error: %v\n", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
		"code":  "INTERNAL",
	})
}
