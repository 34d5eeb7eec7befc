package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/social_feed/internal/config"
	"github.com/Skotchmaster/social_feed/internal/es"
	"github.com/Skotchmaster/social_feed/internal/handlers"
	"github.com/Skotchmaster/social_feed/internal/logging"
	authmw "github.com/Skotchmaster/social_feed/internal/middleware/auth"
	logmw "github.com/Skotchmaster/social_feed/internal/middleware/logging"
	"github.com/Skotchmaster/social_feed/internal/mykafka"
	"github.com/Skotchmaster/social_feed/internal/service/token"
	httpserver "github.com/Skotchmaster/social_feed/internal/transport/http"
)

func main() {
	configuration, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LogLevel)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	tokens := token.New(configuration.JWTSecret)

	var prod *mykafka.Producer
	if configuration.KafkaAddress != "" {
		prod, err = mykafka.NewProducer(
			[]string{configuration.KafkaAddress},
			[]string{"user_events", "post_events"},
		)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
	} else {
		logger.Info("kafka disabled: KAFKA_ADDRESS is empty")
	}

	var searchHandler *handlers.SearchHandler
	if configuration.ESUrl != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchHandler = handlers.NewSearchHandler(esClient, "posts")
	} else {
		logger.Info("search disabled: ES_URL is empty")
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logmw.RequestLogger(logger))
	if len(configuration.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     configuration.CORSOrigins,
			AllowCredentials: true,
		}))
	} else {
		// no wildcard fallback: credentialed CORS needs a pinned origin
		logger.Info("cors disabled: CORS_ORIGIN is empty")
	}

	deps := httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{DB: db, Tokens: tokens, Producer: prod},
		PostHandler:    &handlers.PostHandler{DB: db},
		LikeHandler:    &handlers.LikeHandler{DB: db, Producer: prod},
		CommentHandler: &handlers.CommentHandler{DB: db, Producer: prod},
		SearchHandler:  searchHandler,
		Auth:           authmw.New(tokens),
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
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
