package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/campushub/campus_hub/internal/config"
	"github.com/campushub/campus_hub/internal/es"
	"github.com/campushub/campus_hub/internal/handlers"
	"github.com/campushub/campus_hub/internal/handlers/order"
	"github.com/campushub/campus_hub/internal/logging"
	"github.com/campushub/campus_hub/internal/middleware/csrf"
	loggingmw "github.com/campushub/campus_hub/internal/middleware/logging"
	"github.com/campushub/campus_hub/internal/mykafka"
	"github.com/campushub/campus_hub/internal/seed"
	"github.com/campushub/campus_hub/internal/service"
	httpserver "github.com/campushub/campus_hub/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	if err := seed.Load(db); err != nil {
		log.Fatalf("seed error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var prod *mykafka.Producer
	if len(configuration.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(configuration.KafkaBrokers)
		if err != nil {
			log.Fatal(err)
		}
	}

	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: es.MerchIndex}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(csrf.Middleware(csrf.Config{
		SkipPaths: []string{"/api/v1/register", "/api/v1/login", "/health/live", "/health/ready"},
	}))

	deps := httpserver.Deps{
		DB:                  db,
		AuthHandler:         &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		EventHandler:        &handlers.EventHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		MerchHandler:        &handlers.MerchHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		RegistrationHandler: &handlers.RegistrationHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		FavoriteHandler:     &handlers.FavoriteHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		ReviewHandler:       &handlers.ReviewHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		OrderHandler:        &order.OrderHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		SearchHandler:       searchHandler,
		TokenService:        &service.TokenService{DB: db, RefreshSecret: refreshSecret, JWTSecret: jwtSecret},
	}
	if searchHandler != nil {
		deps.MerchHandler.ES = searchHandler.ES
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db() error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
