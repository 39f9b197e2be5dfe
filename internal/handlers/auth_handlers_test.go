package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campus_hub/internal/models"
)

func TestRegister(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()

	h := AuthHandler{
		DB:            db,
		JWTSecret:     testJWTSecret,
		RefreshSecret: []byte("test_refresh_secret"),
	}

	payload := map[string]string{
		"email":    "sasha@campus.edu",
		"password": "password",
	}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "sasha@campus.edu", user.Email)
	require.Equal(t, models.RoleStudent, user.Role)
	require.NotEmpty(t, user.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.NotEqual(t, "password", stored.PasswordHash)

	// duplicate email is a conflict
	_, cDup := doJSONRequest(t, e, http.MethodPost, "/register", payload)
	err := h.Register(cDup)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestLoginAndLogout(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()

	h := AuthHandler{
		DB:            db,
		JWTSecret:     testJWTSecret,
		RefreshSecret: []byte("test_refresh_secret"),
	}

	createUser(t, db, "sasha@campus.edu", models.RoleStudent)

	load := map[string]string{"email": "sasha@campus.edu", "password": "password"}
	rec, c := doJSONRequest(t, e, http.MethodPost, "/login", load)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	require.NotEmpty(t, resp["refresh_token"])
	require.Equal(t, false, resp["is_admin"])

	badLoad := map[string]string{"email": "sasha@campus.edu", "password": "wrong"}
	_, cBad := doJSONRequest(t, e, http.MethodPost, "/login", badLoad)
	err := h.Login(cBad)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)

	refreshCookie := &http.Cookie{Name: "refreshToken", Value: resp["refresh_token"].(string)}
	recOut, cOut := doJSONRequest(t, e, http.MethodPost, "/logout", nil, refreshCookie)
	require.NoError(t, h.LogOut(cOut))
	require.Equal(t, http.StatusOK, recOut.Code)

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", resp["refresh_token"]).First(&stored).Error)
	require.True(t, stored.Revoked)
}

func TestUpdateProfile(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()

	h := AuthHandler{
		DB:            db,
		JWTSecret:     testJWTSecret,
		RefreshSecret: []byte("test_refresh_secret"),
	}

	user := createUser(t, db, "old@campus.edu", models.RoleStudent)
	ck := accessCookie(t, user.ID, string(user.Role), testJWTSecret)

	rec, c := doJSONRequest(t, e, http.MethodPatch, "/me/profile", map[string]string{"email": "new@campus.edu"}, ck)
	require.NoError(t, h.UpdateProfile(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	require.Equal(t, "new@campus.edu", stored.Email)
}
