package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/campushub/campus_hub/internal/handlers"
	"github.com/campushub/campus_hub/internal/handlers/order"
	"github.com/campushub/campus_hub/internal/service"
)

type Deps struct {
	DB                  *gorm.DB
	AuthHandler         *handlers.AuthHandler
	EventHandler        *handlers.EventHandler
	MerchHandler        *handlers.MerchHandler
	RegistrationHandler *handlers.RegistrationHandler
	FavoriteHandler     *handlers.FavoriteHandler
	ReviewHandler       *handlers.ReviewHandler
	OrderHandler        *order.OrderHandler
	SearchHandler       *handlers.SearchHandler
	TokenService        *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)

	if d.SearchHandler != nil && d.SearchHandler.ES != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}

	events := v1.Group("/events")
	events.GET("", d.EventHandler.GetEvents)
	events.GET("/:id", d.EventHandler.GetEvent)
	events.GET("/:id/reviews", d.ReviewHandler.GetEventReviews)

	merch := v1.Group("/merch")
	merch.GET("", d.MerchHandler.GetMerchList)
	merch.GET("/:id", d.MerchHandler.GetMerch)
	merch.GET("/:id/reviews", d.ReviewHandler.GetMerchReviews)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)

	admin.POST("/events", d.EventHandler.CreateEvent)
	admin.PATCH("/events/:id", d.EventHandler.PatchEvent)
	admin.DELETE("/events/:id", d.EventHandler.DeleteEvent)

	admin.POST("/merch", d.MerchHandler.CreateMerch)
	admin.PATCH("/merch/:id", d.MerchHandler.PatchMerch)
	admin.DELETE("/merch/:id", d.MerchHandler.DeleteMerch)
	admin.POST("/merch/:id/deactivate", d.MerchHandler.DeactivateMerch)

	admin.PATCH("/registrations/:id", d.RegistrationHandler.SetRegistrationStatus)

	me := v1.Group("/me", d.TokenService.AutoRefreshMiddleware)

	me.PATCH("/profile", d.AuthHandler.UpdateProfile)

	me.POST("/events/:id/register", d.RegistrationHandler.RegisterForEvent)
	me.POST("/events/:id/cancel", d.RegistrationHandler.CancelRegistration)
	me.GET("/registrations", d.RegistrationHandler.GetMyRegistrations)

	me.POST("/events/:id/favorite", d.FavoriteHandler.AddFavorite)
	me.DELETE("/events/:id/favorite", d.FavoriteHandler.RemoveFavorite)
	me.GET("/favorites", d.FavoriteHandler.GetMyFavorites)

	me.POST("/orders", d.OrderHandler.MakeOrder)
	me.GET("/orders", d.OrderHandler.GetMyOrders)
	me.GET("/orders/:id", d.OrderHandler.GetOrder)
	me.POST("/orders/:id/cancel", d.OrderHandler.CancelOrder)
	me.PATCH("/orders/:id/items/:merch_id", d.OrderHandler.UpdateItemQuantity)

	me.POST("/reviews", d.ReviewHandler.CreateReview)
	me.DELETE("/reviews/:id", d.ReviewHandler.DeleteReview)
}
