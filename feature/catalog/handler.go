package catalog

import (
	"strconv"

	"mulligan/core/logger"
	"mulligan/feature/catalog/models"
	"mulligan/feature/catalog/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	cards := app.Group("/cards")
	cards.Get("/:locale", h.HandleListCards)
	cards.Get("/:locale/:external_id", h.HandleGetCard)

	runs := app.Group("/sync")
	runs.Get("/status", h.HandleStatus)
	runs.Post("/:locale", h.HandleStartSync)
}

type listResponse struct {
	Items  []models.CardRecord `json:"items"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

// HandleListCards returns a page of records of one locale.
// @Summary List Cards
// @Description Returns stored card records of one locale, optionally filtered by set, ordered by external id.
// @Tags cards
// @Accept json
// @Produce json
// @Param locale path string true "Locale, e.g. enUS"
// @Param set query string false "Set code filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} listResponse "Card Page"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /cards/{locale} [get]
func (h *Handler) HandleListCards(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	q := store.ListQuery{
		Locale: c.Params("locale"),
		Set:    c.Query("set"),
		Limit:  c.QueryInt("limit", store.DefaultListLimit),
		Offset: c.QueryInt("offset", 0),
	}.Normalize()

	items, total, err := h.service.ListCards(c.Context(), q)
	if err != nil {
		l.Error("Card listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if items == nil {
		items = []models.CardRecord{}
	}
	return c.JSON(listResponse{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset})
}

// HandleGetCard returns one record by locale and external id.
// @Summary Get Card
// @Description Returns the stored record identified by locale and external id.
// @Tags cards
// @Accept json
// @Produce json
// @Param locale path string true "Locale, e.g. enUS"
// @Param external_id path int true "External card id"
// @Success 200 {object} models.CardRecord "Card Record"
// @Failure 400 {object} map[string]string "Invalid external id"
// @Failure 404 {object} map[string]string "Card not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /cards/{locale}/{external_id} [get]
func (h *Handler) HandleGetCard(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	ext, err := strconv.ParseInt(c.Params("external_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "external_id must be an integer",
		})
	}

	rec, err := h.service.GetCard(c.Context(), models.Key{ExternalID: ext, Locale: c.Params("locale")})
	if err != nil {
		l.Error("Card lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "card not found",
		})
	}
	return c.JSON(rec)
}

// HandleStatus returns the latest run state and progress.
// @Summary Sync Status
// @Description Returns whether a run is active, plus the state and progress of the latest run.
// @Tags sync
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Run Status"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleStartSync starts a background run.
// @Summary Start Sync
// @Description Starts a background sync of one locale. Only one run may be active at a time.
// @Tags sync
// @Accept json
// @Produce json
// @Param locale path string true "Locale, e.g. enUS"
// @Param format query string false "Snapshot format, defaults to the configured one"
// @Success 202 {object} map[string]string "Run Accepted"
// @Failure 409 {object} map[string]string "Run already in progress"
// @Router /sync/{locale} [post]
func (h *Handler) HandleStartSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	// The run outlives the request, and fiber reuses the buffers behind these values.
	locale := utils.CopyString(c.Params("locale"))
	format := utils.CopyString(c.Query("format"))

	runID, ok := h.service.StartSync(locale, format)
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a sync run is already in progress",
		})
	}
	l.Info("Sync started", zap.String("run_id", runID), zap.String("locale", locale))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"run_id": runID,
		"locale": locale,
	})
}
