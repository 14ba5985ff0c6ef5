package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	config "github.com/emberfeed/emberfeed/configs"
	"github.com/emberfeed/emberfeed/internal/models"
	"github.com/emberfeed/emberfeed/internal/queue"
)

type ReportHandler struct {
	cfg         config.Config
	AsynqClient *asynq.Client
}

func NewReportHandler(cfg config.Config, asynqClient *asynq.Client) *ReportHandler {
	return &ReportHandler{cfg: cfg, AsynqClient: asynqClient}
}

// TriggerRefresh enqueues a data refresh for one country, or for every
// configured country when country=ALL (the default).
func (h *ReportHandler) TriggerRefresh(c *fiber.Ctx) error {
	country := strings.ToUpper(c.Query("country", "ALL"))

	codes := h.cfg.EmberCountries
	if country != "ALL" {
		if !models.ValidCountryCode(country) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid country code",
			})
		}
		codes = []string{country}
	}

	for _, code := range codes {
		err := queue.EnqueueEmberRefresh(h.AsynqClient, queue.EmberRefreshPayload{CountryCode: code})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error scheduling refresh",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Refresh scheduled",
		"countries": codes,
	})
}
