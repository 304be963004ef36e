package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/compliance-service/internal/api/dto"
	"github.com/spec-kit/compliance-service/internal/auth"
	"github.com/spec-kit/compliance-service/internal/domain"
	"github.com/spec-kit/compliance-service/internal/repository"
	"github.com/spec-kit/compliance-service/internal/service"
	apperrors "github.com/spec-kit/compliance-service/pkg/util"
)

// ItemsHandler manages compliance item endpoints.
type ItemsHandler struct {
	items     *service.ItemService
	lifecycle *service.LifecycleService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(itemService *service.ItemService, lifecycleService *service.LifecycleService) *ItemsHandler {
	return &ItemsHandler{items: itemService, lifecycle: lifecycleService}
}

// CreateItem POST /items.
func (h *ItemsHandler) CreateItem(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Reviewer == nil {
		return apperrors.NewUnauthorized("reviewer required")
	}
	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || req.ModuleType == "" {
		return apperrors.NewValidationError("title and module_type required", nil)
	}

	input := service.ItemCreateInput{
		Title:       req.Title,
		Description: req.Description,
		ModuleType:  req.ModuleType,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	item, err := h.items.CreateItem(c.Context(), principal.Reviewer.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": itemResponse(item)})
}

// ListItems GET /items.
func (h *ItemsHandler) ListItems(c *fiber.Ctx) error {
	filter := parseItemQuery(c)
	items, err := h.items.ListItems(c.Context(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, itemResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetItem GET /items/:id.
func (h *ItemsHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.items.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": itemResponse(item)})
}

// GetHistory GET /items/:id/history.
func (h *ItemsHandler) GetHistory(c *fiber.Ctx) error {
	events, err := h.items.ListHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.HistoryEventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, historyEventResponse(&events[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// TransitionStatus POST /items/:id/status.
func (h *ItemsHandler) TransitionStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Reviewer == nil {
		return apperrors.NewUnauthorized("reviewer required")
	}
	var req dto.TransitionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	item, err := h.lifecycle.TransitionStatus(c.Context(), principal.Reviewer, c.Params("id"), req.Status, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": itemResponse(item)})
}

func parseItemQuery(c *fiber.Ctx) repository.ItemFilter {
	filter := repository.ItemFilter{}
	if moduleStr := c.Query("module_type"); moduleStr != "" {
		moduleType := domain.ModuleType(moduleStr)
		filter.ModuleType = &moduleType
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ItemStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.ItemPriority(strings.TrimSpace(part)))
		}
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filter.CreatedBy = &createdBy
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func itemResponse(item *domain.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		ModuleType:  item.ModuleType,
		Status:      item.Status,
		Priority:    item.Priority,
		CreatedBy:   item.CreatedBy,
		CreatedAt:   item.CreatedAt,
		DueDate:     item.DueDate,
		CompletedAt: item.CompletedAt,
	}
}

func historyEventResponse(event *domain.HistoryEvent) dto.HistoryEventResponse {
	return dto.HistoryEventResponse{
		ID:          event.ID,
		Action:      event.Action,
		Status:      event.Status,
		Timestamp:   event.Timestamp,
		PerformedBy: event.PerformedBy,
		Notes:       event.Notes,
	}
}
