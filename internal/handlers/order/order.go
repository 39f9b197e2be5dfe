package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/handlers"
	"github.com/campushub/campus_hub/internal/models"
	"github.com/campushub/campus_hub/internal/mykafka"
)

type OrderHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

type orderLine struct {
	MerchID  uint `json:"merch_id"`
	Quantity int  `json:"quantity"`
}

type OrderResponse struct {
	OrderID    uint               `json:"order_id"`
	TotalCents int64              `json:"total_cents"`
	Status     models.OrderStatus `json:"status"`
	Items      []models.OrderItem `json:"items"`
}

// MakeOrder inserts the header and its lines and decrements stock in one
// transaction. Stock is taken with a conditional update so two concurrent
// orders can never oversell: the second one sees zero rows affected and the
// whole transaction rolls back.
func (h *OrderHandler) MakeOrder(c echo.Context) error {
	userID, err := handlers.GetID(c, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req struct {
		Items []orderLine `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in order")
	}
	seen := make(map[uint]bool, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
		}
		if seen[line.MerchID] {
			return echo.NewHTTPError(http.StatusBadRequest, "duplicate merch in order, adjust quantity instead")
		}
		seen[line.MerchID] = true
	}

	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		order = models.Order{
			UserID: userID,
			Status: models.OrderPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total int64
		orderItems = make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			var m models.Merch
			if err := tx.First(&m, line.MerchID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "merch not found")
				}
				return err
			}
			if !m.IsActive {
				return echo.NewHTTPError(http.StatusConflict, "merch is not for sale")
			}

			res := tx.Model(&models.Merch{}).
				Where("id = ? AND stock_qty >= ?", m.ID, line.Quantity).
				UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
			}

			oi := models.OrderItem{
				OrderID:        order.ID,
				MerchID:        m.ID,
				Quantity:       line.Quantity,
				UnitPriceCents: m.PriceCents,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}
			orderItems = append(orderItems, oi)
			total += int64(line.Quantity) * m.PriceCents
		}

		order.TotalCents = total
		return tx.Save(&order).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":        "order_created",
		"userID":      userID,
		"orderID":     order.ID,
		"total_cents": order.TotalCents,
	})

	return c.JSON(http.StatusCreated, OrderResponse{
		OrderID:    order.ID,
		TotalCents: order.TotalCents,
		Status:     order.Status,
		Items:      orderItems,
	})
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	userID, err := handlers.GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.Preload("Items").Where("user_id = ?", userID).Order("id ASC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := handlers.GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Preload("Items").Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, order)
}

// CancelOrder flips a pending order to cancelled and returns its stock.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, err := handlers.GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "order not found")
			}
			return err
		}
		if order.Status != models.OrderPending {
			return echo.NewHTTPError(http.StatusConflict, "only pending orders can be cancelled")
		}

		for _, it := range order.Items {
			res := tx.Model(&models.Merch{}).
				Where("id = ?", it.MerchID).
				UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
		}

		order.Status = models.OrderCancelled
		return tx.Save(&order).Error
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_cancelled",
		"userID":  userID,
		"orderID": order.ID,
	})

	return c.JSON(http.StatusOK, order)
}
