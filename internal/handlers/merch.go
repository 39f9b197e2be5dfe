package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/es"
	"github.com/campushub/campus_hub/internal/models"
	"github.com/campushub/campus_hub/internal/mykafka"
	"github.com/campushub/campus_hub/internal/service/search"
	"github.com/campushub/campus_hub/internal/util"
)

type MerchHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	ES        *elasticsearch.Client
	JWTSecret []byte
}

func (h *MerchHandler) index(c echo.Context, m *models.Merch) {
	if h.ES == nil {
		return
	}
	if err := search.IndexMerch(c.Request().Context(), h.ES, es.MerchIndex, m); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *MerchHandler) GetMerch(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var item models.Merch
	if err := h.DB.First(&item, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "merch not found")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *MerchHandler) GetMerchList(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Merch{})
	if c.QueryParam("active") == "true" {
		q = q.Where("is_active = ?", true)
	}
	if eventID := c.QueryParam("event_id"); eventID != "" {
		q = q.Where("event_id = ?", eventID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	var items []models.Merch
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
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

type merchRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  *int64 `json:"price_cents"`
	StockQty    *int   `json:"stock_qty"`
	EventID     *uint  `json:"event_id"`
}

func (h *MerchHandler) CreateMerch(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req merchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Name == "" || req.PriceCents == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name and price_cents are required")
	}
	if *req.PriceCents < 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "price_cents must be non-negative")
	}

	item := models.Merch{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  *req.PriceCents,
		IsActive:    true,
		EventID:     req.EventID,
	}
	if req.StockQty != nil {
		item.StockQty = *req.StockQty
	}

	if err := h.DB.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return echo.NewHTTPError(http.StatusConflict, "linked event does not exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	h.index(c, &item)
	publish(c, h.Producer, mykafka.TopicMerchEvents, map[string]any{
		"type":    "merch_created",
		"userID":  userID,
		"merchID": item.ID,
		"name":    item.Name,
	})

	return c.JSON(http.StatusCreated, item)
}

func (h *MerchHandler) PatchMerch(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req merchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	var item models.Merch
	if err := h.DB.First(&item, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "merch not found")
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "price_cents must be non-negative")
		}
		item.PriceCents = *req.PriceCents
	}
	if req.StockQty != nil {
		item.StockQty = *req.StockQty
	}
	if req.EventID != nil {
		item.EventID = req.EventID
	}

	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	h.index(c, &item)
	publish(c, h.Producer, mykafka.TopicMerchEvents, map[string]any{
		"type":    "merch_updated",
		"userID":  userID,
		"merchID": item.ID,
	})

	return c.JSON(http.StatusOK, item)
}

// DeleteMerch is refused by the database once the item appears in any order
// (restrict FK); callers get told to deactivate instead.
func (h *MerchHandler) DeleteMerch(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var ordered int64
	if err := h.DB.Model(&models.OrderItem{}).Where("merch_id = ?", id).Count(&ordered).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	if ordered > 0 {
		return echo.NewHTTPError(http.StatusConflict, "merch has order history, deactivate it instead")
	}

	// restrict FK is the backstop for races with a concurrent order
	if err := h.DB.Delete(&models.Merch{}, id).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return echo.NewHTTPError(http.StatusConflict, "merch has order history, deactivate it instead")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if h.ES != nil {
		if err := search.DeleteMerch(c.Request().Context(), h.ES, es.MerchIndex, uint(id)); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	publish(c, h.Producer, mykafka.TopicMerchEvents, map[string]any{
		"type":    "merch_deleted",
		"userID":  userID,
		"merchID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

// DeactivateMerch is the soft-disable path for items the restrict FK protects.
func (h *MerchHandler) DeactivateMerch(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var item models.Merch
	if err := h.DB.First(&item, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "merch not found")
	}

	item.IsActive = false
	if err := h.DB.Save(&item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	h.index(c, &item)
	publish(c, h.Producer, mykafka.TopicMerchEvents, map[string]any{
		"type":    "merch_deactivated",
		"userID":  userID,
		"merchID": item.ID,
	})

	return c.JSON(http.StatusOK, item)
}
