package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darthvader58/tansen/internal/api/handlers"
	apimiddleware "github.com/darthvader58/tansen/internal/api/middleware"
	"github.com/darthvader58/tansen/internal/config"
	"github.com/darthvader58/tansen/internal/metrics"
	"github.com/darthvader58/tansen/internal/middleware"
	"github.com/darthvader58/tansen/internal/services"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, cloudwatch *metrics.Client) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	router.GET("/health", handlers.HealthCheck(db))

	// Shared services
	library := services.NewSongLibraryService(db)
	transcriptions := services.NewTranscriptionService(db)
	transposition := services.NewTranspositionService()
	notation := services.NewNotationService()
	exporter := services.NewMIDIExporter()
	recommendations := services.NewRecommendationService(db)
	spotify := services.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	musicbrainz := services.NewMusicBrainzClient(cfg.MusicBrainzUserAgent)
	transcriber := services.NewHTTPTranscriber(cfg.TranscriberURL)
	limiter := middleware.NewRateLimiter(cfg.RateLimitTranscriptionsPerDay, cfg.RateLimitMaxConcurrentJobs)

	// Auth routes (public)
	auth := router.Group("/api/auth")
	{
		authHandler := handlers.NewAuthHandler(db, cfg)
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	songsHandler := handlers.NewSongsHandler(library, spotify, musicbrainz, cloudwatch)
	transcriptionsHandler := handlers.NewTranscriptionsHandler(
		cfg, library, transcriptions, transposition, notation, exporter, transcriber, limiter, cloudwatch,
	)
	usersHandler := handlers.NewUsersHandler(db, library)
	downloadsHandler := handlers.NewDownloadsHandler(db, library)
	recommendationsHandler := handlers.NewRecommendationsHandler(recommendations)

	// Public catalog browsing; auth is optional so private uploads stay hidden
	v1 := router.Group("/api/v1")
	{
		v1.GET("/songs", middleware.OptionalJWTAuth(db, cfg), songsHandler.ListSongs)
		v1.GET("/songs/search", middleware.OptionalJWTAuth(db, cfg), songsHandler.SearchSongs)
		v1.GET("/songs/:songId", middleware.OptionalJWTAuth(db, cfg), songsHandler.GetSong)
	}

	// Protected API routes v1 (require JWT)
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuth(db, cfg))
	{
		// Transcriptions - upload, job status, notation retrieval, MIDI export
		protected.GET("/transcriptions", transcriptionsHandler.ListJobs)
		protected.POST("/transcriptions/upload", transcriptionsHandler.Upload)
		protected.GET("/transcriptions/:id/status", transcriptionsHandler.GetStatus)
		protected.GET("/transcriptions/:id", transcriptionsHandler.GetTranscription)
		protected.GET("/transcriptions/:id/midi", transcriptionsHandler.GetMIDI)

		// Profile and favorites
		protected.GET("/users/me", usersHandler.GetProfile)
		protected.PATCH("/users/me", usersHandler.UpdateProfile)
		protected.GET("/users/me/favorites", usersHandler.ListFavorites)
		protected.POST("/users/me/favorites/:songId", usersHandler.AddFavorite)
		protected.DELETE("/users/me/favorites/:songId", usersHandler.RemoveFavorite)
		protected.GET("/users/me/history", usersHandler.GetPracticeHistory)
		protected.POST("/users/me/history", usersHandler.RecordPractice)

		// Offline downloads
		protected.GET("/downloads", downloadsHandler.ListDownloads)
		protected.POST("/downloads/:songId", downloadsHandler.CreateDownload)
		protected.DELETE("/downloads/:songId", downloadsHandler.DeleteDownload)

		// Recommendations
		protected.GET("/recommendations", recommendationsHandler.GetRecommendations)
	}

	// Admin catalog management
	admin := router.Group("/api/v1")
	admin.Use(middleware.JWTAuth(db, cfg), middleware.AdminRequired())
	{
		admin.POST("/songs", songsHandler.CreateSong)
		admin.PATCH("/songs/:songId", songsHandler.UpdateSong)
		admin.DELETE("/songs/:songId", songsHandler.DeleteSong)
	}

	return router
}
