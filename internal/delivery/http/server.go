package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/tilescout/tilescout/internal/config"
	"github.com/tilescout/tilescout/internal/delivery/http/handler"
	"github.com/tilescout/tilescout/internal/delivery/http/middleware"
)

// Server is the Fiber HTTP server hosting the API, the downloads and the
// server-rendered pages.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	activityHandler *handler.ActivityHandler
	explorerHandler *handler.ExplorerHandler
	exportHandler   *handler.ExportHandler
	heatmapHandler  *handler.HeatmapHandler
	statsHandler    *handler.StatsHandler
	uploadHandler   *handler.UploadHandler
	pagesHandler    *handler.PagesHandler
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	activityHandler *handler.ActivityHandler,
	explorerHandler *handler.ExplorerHandler,
	exportHandler *handler.ExportHandler,
	heatmapHandler *handler.HeatmapHandler,
	statsHandler *handler.StatsHandler,
	uploadHandler *handler.UploadHandler,
	pagesHandler *handler.PagesHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "tilescout",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    32 * 1024 * 1024,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		activityHandler: activityHandler,
		explorerHandler: explorerHandler,
		exportHandler:   exportHandler,
		heatmapHandler:  heatmapHandler,
		statsHandler:    statsHandler,
		uploadHandler:   uploadHandler,
		pagesHandler:    pagesHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Server-rendered pages
	s.app.Get("/", s.pagesHandler.Index)
	s.app.Get("/activity/:id", s.pagesHandler.Activity)
	s.app.Get("/explorer", s.pagesHandler.Explorer)
	s.app.Get("/heatmap", s.pagesHandler.Heatmap)

	// Downloads
	s.app.Get("/download/explored.geojson", s.exportHandler.DownloadExploredGeoJSON)
	s.app.Get("/download/explored.gpx", s.exportHandler.DownloadExploredGPX)
	s.app.Get("/download/missing_tiles.geojson", s.exportHandler.DownloadMissingGeoJSON)
	s.app.Get("/download/missing_tiles.gpx", s.exportHandler.DownloadMissingGPX)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Activity routes
	api.Get("/activities", s.activityHandler.List)
	api.Get("/activities/:id", s.activityHandler.Get)
	api.Get("/activities/:id/track.geojson", s.activityHandler.GetTrack)
	api.Get("/activities/:id/hr-zones", s.activityHandler.GetHeartRateZones)

	// Explorer routes
	api.Get("/explorer/summary", s.explorerHandler.GetSummary)
	api.Get("/explorer/explored.geojson", s.explorerHandler.GetExplored)
	api.Get("/explorer/missing.geojson", s.explorerHandler.GetMissing)

	// Heatmap tiles
	api.Get("/tiles/heatmap/:z/:x/:y.png", s.heatmapHandler.GetTile)

	// Import routes
	api.Post("/upload", s.uploadHandler.Upload)
	api.Post("/sync/strava", s.uploadHandler.SyncStrava)

	// Stats
	api.Get("/stats", s.statsHandler.GetStatistics)
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
