package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/hash"
	"github.com/campushub/campus_hub/internal/models"
	"github.com/campushub/campus_hub/internal/service"
)

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()
	passwordHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	user := models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func accessCookie(t *testing.T, userID uint, role string, secret []byte) *http.Cookie {
	t.Helper()
	token, err := service.SignAccessToken(userID, role, secret)
	require.NoError(t, err)
	return &http.Cookie{Name: "accessToken", Value: token}
}

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, c
}

func createEvent(t *testing.T, db *gorm.DB, title string, capacity *int, createdBy *uint) *models.Event {
	t.Helper()
	event := models.Event{
		Title:     title,
		StartsAt:  time.Now().Add(24 * time.Hour),
		Capacity:  capacity,
		CreatedBy: createdBy,
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func createMerch(t *testing.T, db *gorm.DB, name string, priceCents int64, stock int) *models.Merch {
	t.Helper()
	item := models.Merch{
		Name:       name,
		PriceCents: priceCents,
		StockQty:   stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

var testJWTSecret = []byte("test_jwt_secret")
