package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/handlers"
	"github.com/campushub/campus_hub/internal/models"
	"github.com/campushub/campus_hub/internal/mykafka"
)

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// recomputeTotal rewrites Order.TotalCents from the live line items; callers
// run it inside the mutating transaction so the cached value never diverges.
func recomputeTotal(tx *gorm.DB, orderID uint) error {
	var total int64
	err := tx.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(quantity * unit_price_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Order{}).Where("id = ?", orderID).
		UpdateColumn("total_cents", total).Error
}

// UpdateItemQuantity changes the quantity of the (order, merch) line. A line
// is never duplicated: quantity moves up or down on the existing row, and
// zero removes it. Stock follows the delta, conditionally when it shrinks.
func (h *OrderHandler) UpdateItemQuantity(c echo.Context) error {
	userID, err := handlers.GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	merchID, err := strconv.Atoi(c.Param("merch_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid merch id")
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be zero or positive")
	}

	var order models.Order
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "order not found")
			}
			return err
		}
		if order.Status != models.OrderPending {
			return echo.NewHTTPError(http.StatusConflict, "only pending orders can be edited")
		}

		var item models.OrderItem
		if err := tx.Where("order_id = ? AND merch_id = ?", orderID, merchID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "order item not found")
			}
			return err
		}

		delta := *req.Quantity - item.Quantity
		switch {
		case delta > 0:
			res := tx.Model(&models.Merch{}).
				Where("id = ? AND stock_qty >= ?", merchID, delta).
				UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", delta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
			}
		case delta < 0:
			res := tx.Model(&models.Merch{}).
				Where("id = ?", merchID).
				UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", -delta))
			if res.Error != nil {
				return res.Error
			}
		}

		if *req.Quantity == 0 {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
		} else {
			item.Quantity = *req.Quantity
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}

		if err := recomputeTotal(tx, order.ID); err != nil {
			return err
		}
		return tx.First(&order, order.ID).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":     "order_item_updated",
		"userID":   userID,
		"orderID":  order.ID,
		"merchID":  merchID,
		"quantity": *req.Quantity,
	})

	return c.JSON(http.StatusOK, order)
}
