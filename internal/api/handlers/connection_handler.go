package handlers

import (
	"errors"
	"time"

	"contaflow/internal/dto"
	"contaflow/internal/repository"
	"contaflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ConnectionHandler serves diagnostics around the extraction endpoint:
// connection status, per-user settings and the recent activity feed.
type ConnectionHandler struct {
	openaiService   *service.OpenAIService
	settingsService *service.SettingsService
	activityLog     *service.ActivityLog
	logger          *zap.Logger
}

func NewConnectionHandler(
	openaiService *service.OpenAIService,
	settingsService *service.SettingsService,
	activityLog *service.ActivityLog,
	logger *zap.Logger,
) *ConnectionHandler {
	return &ConnectionHandler{
		openaiService:   openaiService,
		settingsService: settingsService,
		activityLog:     activityLog,
		logger:          logger,
	}
}

// Status godoc
// @Summary Check extraction endpoint status
// @Description Lists available models and, when possible, the credit balance.
// @Tags connection
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.ConnectionStatusResponse
// @Router /api/v1/connection/status [get]
func (h *ConnectionHandler) Status(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	resp := dto.ConnectionStatusResponse{}

	models, err := h.openaiService.ListModels(c.Context())
	if err != nil {
		h.logger.Warn("Model listing failed", zap.Error(err))
		resp.Error = err.Error()
		return c.JSON(resp)
	}
	resp.OK = true
	resp.Models = models

	// Balance is best-effort: most deployments cannot serve it.
	balance, err := h.openaiService.GetCreditBalance(c.Context())
	if err != nil {
		var unavailable *service.BalanceUnavailableError
		if errors.As(err, &unavailable) {
			resp.BalanceUnavailable = unavailable.Reason
		} else {
			h.logger.Warn("Balance query failed", zap.Error(err))
			resp.BalanceUnavailable = service.BalanceReasonUnsupported
		}
	} else {
		resp.BalanceAvailable = balance.TotalAvailable
	}

	return c.JSON(resp)
}

// GetSetting godoc
// @Summary Get a user setting
// @Tags settings
// @Produce json
// @Param key path string true "Setting key"
// @Security Bearer
// @Success 200 {object} dto.SettingResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/settings/{key} [get]
func (h *ConnectionHandler) GetSetting(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	key := c.Params("key")
	value, err := h.settingsService.Get(c.Context(), userID, key)
	if err != nil {
		if err == repository.ErrSettingNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Setting not found",
			})
		}
		h.logger.Error("Failed to get setting", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get setting",
		})
	}

	return c.JSON(dto.SettingResponse{Key: key, Value: value})
}

// SetSetting godoc
// @Summary Set a user setting
// @Tags settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param request body dto.SettingRequest true "Setting value"
// @Security Bearer
// @Success 200 {object} dto.SettingResponse
// @Router /api/v1/settings/{key} [put]
func (h *ConnectionHandler) SetSetting(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.SettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	key := c.Params("key")
	if err := h.settingsService.Set(c.Context(), userID, key, req.Value); err != nil {
		h.logger.Error("Failed to set setting", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set setting",
		})
	}

	return c.JSON(dto.SettingResponse{Key: key, Value: req.Value})
}

// RemoveSetting godoc
// @Summary Remove a user setting
// @Tags settings
// @Produce json
// @Param key path string true "Setting key"
// @Security Bearer
// @Success 204
// @Router /api/v1/settings/{key} [delete]
func (h *ConnectionHandler) RemoveSetting(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	if err := h.settingsService.Remove(c.Context(), userID, c.Params("key")); err != nil {
		h.logger.Error("Failed to remove setting", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove setting",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListActivity godoc
// @Summary List recent activity
// @Tags activity
// @Produce json
// @Param limit query int false "Limit" default(50)
// @Security Bearer
// @Success 200 {array} dto.ActivityEntryResponse
// @Router /api/v1/activity [get]
func (h *ConnectionHandler) ListActivity(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	entries, err := h.activityLog.Recent(c.Context(), userID, c.QueryInt("limit", 50))
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list activity",
		})
	}

	responses := make([]dto.ActivityEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = dto.ActivityEntryResponse{
			Level:     entry.Level,
			Message:   entry.Message,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		}
	}
	return c.JSON(responses)
}
