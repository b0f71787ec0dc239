package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/brettboylen/originality-tracker/db"
	"github.com/brettboylen/originality-tracker/engine"
	"github.com/brettboylen/originality-tracker/models"
	"github.com/brettboylen/originality-tracker/search"
	"github.com/brettboylen/originality-tracker/stats"
	"github.com/brettboylen/originality-tracker/utils"
)

func main() {
	envPath := flag.String("env", ".env", "Path to .env file")
	logLevel := flag.String("log-level", "debug", "Logging level (debug, info, warn, error)")
	flag.Parse()

	log := setupLogger(*logLevel)
	log.Info("Starting Originality Tracker")

	config, err := utils.LoadConfig(*envPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"server_port":    config.Server.Port,
		"retention_days": config.Engine.RetentionDays,
		"search_enabled": config.Search.Enabled,
	}).Info("Configuration loaded")

	store, err := db.NewStore(config.Database.Path, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer store.Close()

	var searchSource engine.SearchSource
	if config.Search.Enabled {
		searchSource = search.NewClient(
			config.Search.Endpoint,
			config.Search.UserAgent,
			config.Search.MaxRequestsPerMinute,
			log,
		)
	}

	engineCfg := engine.Config{
		CacheTTL:        time.Duration(config.Engine.CacheTTLHours) * time.Hour,
		AnalysisTimeout: time.Duration(config.Engine.AnalysisTimeoutSeconds) * time.Second,
		RateLimitWindow: time.Duration(config.Engine.RateLimitWindowSeconds) * time.Second,
		MaxRequests:     config.Engine.MaxRequests,
		MaxResults:      config.Engine.MaxResults,
		MinSimilarity:   config.Engine.MinSimilarity,
		RetentionDays:   config.Engine.RetentionDays,
		CorpusLimit:     config.Engine.CorpusLimit,
		SearchPhrases:   3,
	}

	analysisEngine := engine.New(engineCfg, store, searchSource, store, log)
	analysisEngine.OnProgress(func(stage string, progress int) {
		log.WithFields(logrus.Fields{
			"stage":    stage,
			"progress": progress,
		}).Debug("Analysis progress")
	})

	tracker := stats.NewTracker(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startEchoServer(ctx, config, analysisEngine, store, tracker, log)

	waitForShutdown(cancel, log)
}

// setupLogger sets up the logger with the specified log level
func setupLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// analyzeRequest is the inbound payload for POST /api/analyze
type analyzeRequest struct {
	Text   string    `json:"text"`
	Author string    `json:"author"`
	URL    string    `json:"url"`
	Date   time.Time `json:"date"`
}

// analyzeResponse always carries a well-formed result body, even on failure
type analyzeResponse struct {
	models.AnalysisResult
	Error   bool   `json:"error"`
	Message string `json:"message,omitempty"`
}

// startEchoServer starts the Echo HTTP API server
func startEchoServer(ctx context.Context, config *utils.Config, analysisEngine *engine.Engine, store *db.Store, tracker *stats.Tracker, log *logrus.Logger) {
	e := echo.New()

	// middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	requestsPerSecond := float64(config.Engine.MaxRequests) / float64(config.Engine.RateLimitWindowSeconds)

	rateLimit := rate.Limit(requestsPerSecond * 0.95) // use 95% of the rate limit to be safe

	rateLimiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rateLimit,
				Burst:     1, // no burst capability
				ExpiresIn: 3 * time.Minute,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
	}
	e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig))

	e.POST("/api/analyze", func(c echo.Context) error {
		var req analyzeRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, analyzeResponse{
				Error:   true,
				Message: "invalid request body",
			})
		}

		result, err := analysisEngine.Analyze(c.Request().Context(), req.Text, models.PostMeta{
			Author: req.Author,
			URL:    req.URL,
			Date:   req.Date,
		})
		if err != nil {
			return c.JSON(statusForError(err), analyzeResponse{
				AnalysisResult: models.AnalysisResult{
					Analysis: err.Error(),
					Matches:  []models.Match{},
				},
				Error:   true,
				Message: err.Error(),
			})
		}

		tracker.Record(result.OriginalityScore)

		return c.JSON(http.StatusOK, analyzeResponse{AnalysisResult: result})
	})

	e.GET("/api/stats", func(c echo.Context) error {
		statistics := tracker.GetStatistics()

		if total, err := store.TotalPosts(); err != nil {
			log.WithError(err).Error("Failed to get total posts")
		} else {
			statistics.TotalPosts = total
		}

		return c.JSON(http.StatusOK, statistics)
	})

	// health check endpoint; useful for k8s liveliness probes but not strictly required in this case
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// start the server!
	go func() {
		serverAddr := fmt.Sprintf(":%d", config.Server.Port)
		log.WithField("port", config.Server.Port).Info("Starting API server")
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("API server failed")
		}
	}()

	// wait for context cancellation to shut down server
	<-ctx.Done()
	log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API server shutdown failed")
	}
}

// statusForError maps engine error kinds to HTTP status codes
func statusForError(err error) int {
	var engineErr *engine.Error
	if !errors.As(err, &engineErr) {
		return http.StatusInternalServerError
	}

	switch engineErr.Kind {
	case engine.KindInvalidInput:
		return http.StatusBadRequest
	case engine.KindRateLimited:
		return http.StatusTooManyRequests
	case engine.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// waitForShutdown waits for a shutdown signal
func waitForShutdown(cancel context.CancelFunc, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()

	time.Sleep(1 * time.Second)
	log.Info("Originality Tracker stopped")
}
