package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/emberfeed/emberfeed/internal/queue"
	"github.com/emberfeed/emberfeed/internal/repository"
)

type DispatchHandler struct {
	hr          repository.DispatchHistoryRepository
	AsynqClient *asynq.Client
}

func NewDispatchHandler(hr repository.DispatchHistoryRepository, asynqClient *asynq.Client) *DispatchHandler {
	return &DispatchHandler{hr: hr, AsynqClient: asynqClient}
}

func (h *DispatchHandler) TriggerRun(c *fiber.Ctx) error {
	err := queue.EnqueueDispatchRun(h.AsynqClient, queue.DispatchRunPayload{TriggeredBy: "api"})
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling dispatch run",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Dispatch run scheduled",
	})
}

func (h *DispatchHandler) History(c *fiber.Ctx) error {
	batchID := c.Query("batch")
	if batchID != "" {
		records, err := h.hr.ListByBatchID(c.Context(), batchID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to list dispatch history",
			})
		}
		return c.Status(fiber.StatusOK).JSON(records)
	}

	limit := c.QueryInt("limit", 50)
	records, err := h.hr.ListRecent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list dispatch history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(records)
}
