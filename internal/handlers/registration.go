package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/models"
	"github.com/campushub/campus_hub/internal/mykafka"
)

type RegistrationHandler struct {
	DB        *gorm.DB
	Producer  *mykafka.Producer
	JWTSecret []byte
}

var errEventFull = errors.New("event is full")

// RegisterForEvent inserts the (user, event) row or, when a cancelled row
// already exists, flips it back to registered. A live duplicate is a
// conflict — the unique index backs this up at the database level.
func (h *RegistrationHandler) RegisterForEvent(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var reg models.Registration
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "event not found")
			}
			return err
		}

		var existing models.Registration
		findErr := tx.Where("user_id = ? AND event_id = ?", userID, event.ID).First(&existing).Error
		if findErr == nil {
			if existing.Status != models.RegistrationCancelled {
				return echo.NewHTTPError(http.StatusConflict, "already registered")
			}
			if err := h.checkCapacity(tx, &event); err != nil {
				return echo.NewHTTPError(http.StatusConflict, err.Error())
			}
			existing.Status = models.RegistrationRegistered
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			reg = existing
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		if err := h.checkCapacity(tx, &event); err != nil {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}

		reg = models.Registration{
			UserID:  userID,
			EventID: event.ID,
			Status:  models.RegistrationRegistered,
		}
		if err := tx.Create(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return echo.NewHTTPError(http.StatusConflict, "already registered")
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	publish(c, h.Producer, mykafka.TopicRegistrationEvents, map[string]any{
		"type":    "event_registration",
		"userID":  userID,
		"eventID": eventID,
	})

	return c.JSON(http.StatusCreated, reg)
}

func (h *RegistrationHandler) checkCapacity(tx *gorm.DB, event *models.Event) error {
	if event.Capacity == nil {
		return nil
	}

	// write-lock the event row so concurrent registrations serialize on the
	// capacity count instead of both passing it
	res := tx.Model(&models.Event{}).Where("id = ?", event.ID).
		UpdateColumn("updated_at", time.Now().UTC())
	if res.Error != nil {
		return res.Error
	}

	var taken int64
	err := tx.Model(&models.Registration{}).
		Where("event_id = ? AND status IN ?", event.ID,
			[]models.RegistrationStatus{models.RegistrationRegistered, models.RegistrationAttended}).
		Count(&taken).Error
	if err != nil {
		return err
	}
	if taken >= int64(*event.Capacity) {
		return errEventFull
	}
	return nil
}

// CancelRegistration keeps the row and sets the cancelled label; the pair
// stays unique so a later re-register updates this same row.
func (h *RegistrationHandler) CancelRegistration(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var reg models.Registration
	if err := h.DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "registration not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	reg.Status = models.RegistrationCancelled
	if err := h.DB.Save(&reg).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicRegistrationEvents, map[string]any{
		"type":    "registration_cancelled",
		"userID":  userID,
		"eventID": eventID,
	})

	return c.JSON(http.StatusOK, reg)
}

func (h *RegistrationHandler) GetMyRegistrations(c echo.Context) error {
	userID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	var regs []models.Registration
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&regs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, regs)
}

// SetRegistrationStatus is the admin path for attended/no_show marks. The
// status is a plain label, no transition graph is enforced.
func (h *RegistrationHandler) SetRegistrationStatus(c echo.Context) error {
	adminID, err := GetID(c, h.JWTSecret)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Status models.RegistrationStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	switch req.Status {
	case models.RegistrationRegistered, models.RegistrationCancelled,
		models.RegistrationAttended, models.RegistrationNoShow:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	var reg models.Registration
	if err := h.DB.First(&reg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "registration not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	reg.Status = req.Status
	if err := h.DB.Save(&reg).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	publish(c, h.Producer, mykafka.TopicRegistrationEvents, map[string]any{
		"type":           "registration_status_set",
		"userID":         adminID,
		"registrationID": reg.ID,
		"status":         reg.Status,
	})

	return c.JSON(http.StatusOK, reg)
}
