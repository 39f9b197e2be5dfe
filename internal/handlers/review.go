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

type ReviewHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

// CreateReview validates the target pair before the insert; the rating
// bounds and the no-target case are re-checked by the table constraints.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var req struct {
		EventID *uint  `json:"event_id"`
		MerchID *uint  `json:"merch_id"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	target := models.ReviewTarget{EventID: req.EventID, MerchID: req.MerchID}
	if err := target.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "rating must be between 1 and 5")
	}

	if req.EventID != nil {
		var event models.Event
		if err := h.DB.First(&event, *req.EventID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "event not found")
		}
	}
	if req.MerchID != nil {
		var item models.Merch
		if err := h.DB.First(&item, *req.MerchID).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "merch not found")
		}
	}

	review := models.Review{
		UserID:  userID,
		EventID: req.EventID,
		MerchID: req.MerchID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicReviewEvents, map[string]any{
		"type":     "review_created",
		"userID":   userID,
		"reviewID": review.ID,
		"rating":   review.Rating,
	})

	return c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetEventReviews(c echo.Context) error {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var reviews []models.Review
	if err := h.DB.Where("event_id = ?", eventID).Order("id DESC").Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) GetMerchReviews(c echo.Context) error {
	merchID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var reviews []models.Review
	if err := h.DB.Where("merch_id = ?", merchID).Order("id DESC").Find(&reviews).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var review models.Review
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "review not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if err := h.DB.Delete(&review).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicReviewEvents, map[string]any{
		"type":     "review_deleted",
		"userID":   userID,
		"reviewID": review.ID,
	})

	return c.NoContent(http.StatusNoContent)
}
