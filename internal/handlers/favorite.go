package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/models"
	"github.com/campushub/campus_hub/internal/mykafka"
)

type FavoriteHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var event models.Event
	if err := h.DB.First(&event, eventID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	var existing models.Favorite
	if err := h.DB.Where("user_id = ? AND event_id = ?", userID, event.ID).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusConflict, "already favorited")
	}

	fav := models.Favorite{
		UserID:  userID,
		EventID: event.ID,
	}
	if err := h.DB.Create(&fav).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "already favorited")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicEventEvents, map[string]any{
		"type":    "event_favorited",
		"userID":  userID,
		"eventID": event.ID,
	})

	return c.JSON(http.StatusCreated, fav)
}

func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	result := h.DB.Where("user_id = ? AND event_id = ?", userID, eventID).Delete(&models.Favorite{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error)
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "favorite not found")
	}

	publish(c, h.Producer, mykafka.TopicEventEvents, map[string]any{
		"type":    "event_unfavorited",
		"userID":  userID,
		"eventID": eventID,
	})

	return c.NoContent(http.StatusNoContent)
}

func (h *FavoriteHandler) GetMyFavorites(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var favs []models.Favorite
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&favs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, favs)
}
