package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vidtube/backend/internal/api"
	"vidtube/backend/internal/config"
	"vidtube/backend/internal/repository/mongo"
	"vidtube/backend/internal/service"
	"vidtube/backend/internal/storage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.Info("Starting VidTube server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("Could not load config")
	}
	log.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to MongoDB")
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("Failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureVideoIndexes(ctx, appDB.Collection("videos"))
		mongo.EnsureTweetIndexes(ctx, appDB.Collection("tweets"))
		mongo.EnsureCommentIndexes(ctx, appDB.Collection("comments"))
		mongo.EnsureLikeIndexes(ctx, appDB.Collection("likes"))
		mongo.EnsureSubscriptionIndexes(ctx, appDB.Collection("subscriptions"))
		mongo.EnsurePlaylistIndexes(ctx, appDB.Collection("playlists"))
		log.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	videoRepo := mongo.NewMongoVideoRepository(appDB)
	tweetRepo := mongo.NewMongoTweetRepository(appDB)
	commentRepo := mongo.NewMongoCommentRepository(appDB)
	likeRepo := mongo.NewMongoLikeRepository(appDB)
	subscriptionRepo := mongo.NewMongoSubscriptionRepository(appDB)
	playlistRepo := mongo.NewMongoPlaylistRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, fileStorage, cfg.JWT, log)
	userService := service.NewUserService(userRepo, fileStorage, log)
	videoService := service.NewVideoService(videoRepo, userRepo, likeRepo, commentRepo, fileStorage, log)
	tweetService := service.NewTweetService(tweetRepo, userRepo)
	commentService := service.NewCommentService(commentRepo, videoRepo)
	likeService := service.NewLikeService(likeRepo, videoRepo, commentRepo, tweetRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo)
	playlistService := service.NewPlaylistService(playlistRepo, videoRepo, userRepo)
	dashboardService := service.NewDashboardService(videoRepo, subscriptionRepo, likeRepo, userRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	api.SetupRoutes(
		router,
		log,
		cfg.JWT,
		authService,
		userService,
		videoService,
		tweetService,
		commentService,
		likeService,
		subscriptionService,
		playlistService,
		dashboardService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("ListenAndServe error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exiting.")
}
