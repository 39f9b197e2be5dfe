package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/models"
	"github.com/campushub/campus_hub/internal/mykafka"
	"github.com/campushub/campus_hub/internal/util"
)

type EventHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var event models.Event
	if err := h.DB.First(&event, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) GetEvents(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Event{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	var items []models.Event
	if err := h.DB.Order("starts_at ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

type eventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity"`
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Title == "" || req.StartsAt.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "title and starts_at are required")
	}
	if req.EndsAt != nil && req.EndsAt.Before(req.StartsAt) {
		return echo.NewHTTPError(http.StatusBadRequest, "ends_at must be after starts_at")
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		CreatedBy:   &userID,
	}
	if err := h.DB.Create(&event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicEventEvents, map[string]any{
		"type":    "event_created",
		"userID":  userID,
		"eventID": event.ID,
		"title":   event.Title,
	})

	return c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) PatchEvent(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var event models.Event
	if err := h.DB.First(&event, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if !req.StartsAt.IsZero() {
		event.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}
	if req.Capacity != nil {
		event.Capacity = req.Capacity
	}

	if err := h.DB.Save(&event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicEventEvents, map[string]any{
		"type":    "event_updated",
		"userID":  userID,
		"eventID": event.ID,
	})

	return c.JSON(http.StatusOK, event)
}

// DeleteEvent removes the event row; the schema cascades registrations,
// favorites and reviews, and nulls the merch link.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.DB.Delete(&models.Event{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicEventEvents, map[string]any{
		"type":    "event_deleted",
		"userID":  userID,
		"eventID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
