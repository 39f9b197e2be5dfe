package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campus_hub/internal/models"
)

func TestAddAndRemoveFavorite(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &FavoriteHandler{DB: db, JWTSecret: testJWTSecret}

	user := createUser(t, db, "sasha@campus.edu", models.RoleStudent)
	event := createEvent(t, db, "Autumn Welcome Fair", nil, nil)
	ck := accessCookie(t, user.ID, "student", testJWTSecret)
	eventParam := strconv.FormatUint(uint64(event.ID), 10)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/me/favorites/:id", nil, ck)
	c.SetParamNames("id")
	c.SetParamValues(eventParam)
	require.NoError(t, h.AddFavorite(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// same pair again is a conflict
	_, cDup := doJSONRequest(t, e, http.MethodPost, "/me/favorites/:id", nil, ck)
	cDup.SetParamNames("id")
	cDup.SetParamValues(eventParam)
	err := h.AddFavorite(cDup)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)

	recDel, cDel := doJSONRequest(t, e, http.MethodDelete, "/me/favorites/:id", nil, ck)
	cDel.SetParamNames("id")
	cDel.SetParamValues(eventParam)
	require.NoError(t, h.RemoveFavorite(cDel))
	require.Equal(t, http.StatusNoContent, recDel.Code)

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	require.EqualValues(t, 0, count)

	// removing again is a 404
	_, cGone := doJSONRequest(t, e, http.MethodDelete, "/me/favorites/:id", nil, ck)
	cGone.SetParamNames("id")
	cGone.SetParamValues(eventParam)
	err = h.RemoveFavorite(cGone)
	he, ok = err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestAddFavoriteUnknownEvent(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &FavoriteHandler{DB: db, JWTSecret: testJWTSecret}

	user := createUser(t, db, "sasha@campus.edu", models.RoleStudent)
	ck := accessCookie(t, user.ID, "student", testJWTSecret)

	_, c := doJSONRequest(t, e, http.MethodPost, "/me/favorites/:id", nil, ck)
	c.SetParamNames("id")
	c.SetParamValues("999")
	err := h.AddFavorite(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetMyFavorites(t *testing.T) {
	db := InitTestDB(t)
	e := echo.New()
	h := &FavoriteHandler{DB: db, JWTSecret: testJWTSecret}

	user := createUser(t, db, "sasha@campus.edu", models.RoleStudent)
	other := createUser(t, db, "other@campus.edu", models.RoleStudent)
	first := createEvent(t, db, "Autumn Welcome Fair", nil, nil)
	second := createEvent(t, db, "Spring Concert", nil, nil)

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, EventID: first.ID}).Error)
	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, EventID: second.ID}).Error)
	require.NoError(t, db.Create(&models.Favorite{UserID: other.ID, EventID: first.ID}).Error)

	ck := accessCookie(t, user.ID, "student", testJWTSecret)
	rec, c := doJSONRequest(t, e, http.MethodGet, "/me/favorites", nil, ck)
	require.NoError(t, h.GetMyFavorites(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var favs []models.Favorite
	decodeBody(t, rec, &favs)
	require.Len(t, favs, 2)
	for _, f := range favs {
		require.Equal(t, user.ID, f.UserID)
	}
}
