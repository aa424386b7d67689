package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumatch/resume-matcher/internal/repositories"
)

type HistoryHandler struct {
	recordRepo repositories.MatchRecordRepository
}

func NewHistoryHandler(recordRepo repositories.MatchRecordRepository) *HistoryHandler {
	return &HistoryHandler{
		recordRepo: recordRepo,
	}
}

// HandleGetMatch handles GET /matches/:id.
func (h *HistoryHandler) HandleGetMatch(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid match ID format",
		})
	}

	record, err := h.recordRepo.FindByID(recordID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Match not found",
		})
	}

	return c.JSON(record)
}

// HandleListMatches handles GET /matches?limit=.
func (h *HistoryHandler) HandleListMatches(c *fiber.Ctx) error {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsed
	}
	if limit > 100 {
		limit = 100
	}

	records, err := h.recordRepo.FindRecent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list matches",
		})
	}

	return c.JSON(fiber.Map{
		"matches": records,
		"count":   len(records),
	})
}
