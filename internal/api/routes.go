package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vidtube/backend/internal/config"
	"vidtube/backend/internal/service"
)

// SetupRoutes wires every handler into the gin engine.
func SetupRoutes(
	router *gin.Engine,
	log *logrus.Logger,
	jwtCfg config.JWTConfig,
	authService service.AuthService,
	userService service.UserService,
	videoService service.VideoService,
	tweetService service.TweetService,
	commentService service.CommentService,
	likeService service.LikeService,
	subscriptionService service.SubscriptionService,
	playlistService service.PlaylistService,
	dashboardService service.DashboardService,
) {
	errorLog = log

	userHandler := NewUserHandler(authService, userService, jwtCfg)
	videoHandler := NewVideoHandler(videoService)
	tweetHandler := NewTweetHandler(tweetService)
	commentHandler := NewCommentHandler(commentService)
	likeHandler := NewLikeHandler(likeService)
	subscriptionHandler := NewSubscriptionHandler(subscriptionService)
	playlistHandler := NewPlaylistHandler(playlistService)
	dashboardHandler := NewDashboardHandler(dashboardService)

	authMiddleware := AuthMiddleware(authService)

	router.GET("/healthcheck", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{"status": "ok"}, "Service is healthy")
	})

	apiV1 := router.Group("/api/v1")

	users := apiV1.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/refresh-token", userHandler.Refresh)

		users.POST("/logout", authMiddleware, userHandler.Logout)
		users.POST("/change-password", authMiddleware, userHandler.ChangePassword)
		users.GET("/current", authMiddleware, userHandler.GetCurrent)
		users.PATCH("/update-account", authMiddleware, userHandler.UpdateAccount)
		users.PATCH("/update-avatar", authMiddleware, userHandler.UpdateAvatar)
		users.PATCH("/update-cover-image", authMiddleware, userHandler.UpdateCoverImage)
		users.GET("/channel/:username", authMiddleware, userHandler.GetChannelProfile)
		users.GET("/history", authMiddleware, userHandler.GetWatchHistory)
	}

	videos := apiV1.Group("/videos")
	videos.Use(authMiddleware)
	{
		videos.GET("", videoHandler.List)
		videos.POST("", videoHandler.Publish)
		videos.GET("/:videoId", videoHandler.Get)
		videos.PATCH("/:videoId", videoHandler.Update)
		videos.DELETE("/:videoId", videoHandler.Delete)
		videos.PATCH("/:videoId/toggle-publish", videoHandler.TogglePublish)
	}

	tweets := apiV1.Group("/tweets")
	tweets.Use(authMiddleware)
	{
		tweets.POST("", tweetHandler.Create)
		tweets.GET("", tweetHandler.ListOwn)
		tweets.GET("/user/:userId", tweetHandler.ListByUser)
		tweets.PATCH("/:tweetId", tweetHandler.Update)
		tweets.DELETE("/:tweetId", tweetHandler.Delete)
	}

	comments := apiV1.Group("/comments")
	comments.Use(authMiddleware)
	{
		comments.GET("/:videoId", commentHandler.ListForVideo)
		comments.POST("/:videoId", commentHandler.Add)
		comments.PATCH("/c/:commentId", commentHandler.Update)
		comments.DELETE("/c/:commentId", commentHandler.Delete)
	}

	likes := apiV1.Group("/likes")
	likes.Use(authMiddleware)
	{
		likes.POST("/video/:videoId", likeHandler.ToggleVideo)
		likes.POST("/comment/:commentId", likeHandler.ToggleComment)
		likes.POST("/tweet/:tweetId", likeHandler.ToggleTweet)
		likes.GET("/videos", likeHandler.GetLikedVideos)
	}

	subscriptions := apiV1.Group("/subscriptions")
	subscriptions.Use(authMiddleware)
	{
		// The path segment is a user id, read as channel or subscriber
		// depending on the sub-route. Gin requires one wildcard name per
		// position, so both use :userId.
		subscriptions.POST("/:userId", subscriptionHandler.Toggle)
		subscriptions.GET("/:userId/subscribers", subscriptionHandler.GetSubscribers)
		subscriptions.GET("/:userId/subscribed", subscriptionHandler.GetSubscribedChannels)
	}

	playlists := apiV1.Group("/playlists")
	playlists.Use(authMiddleware)
	{
		playlists.POST("", playlistHandler.Create)
		playlists.GET("", playlistHandler.ListOwn)
		playlists.GET("/user/:userId", playlistHandler.ListByUser)
		playlists.GET("/:playlistId", playlistHandler.Get)
		playlists.PATCH("/:playlistId", playlistHandler.Update)
		playlists.DELETE("/:playlistId", playlistHandler.Delete)
		playlists.PATCH("/:playlistId/add/:videoId", playlistHandler.AddVideo)
		playlists.PATCH("/:playlistId/remove/:videoId", playlistHandler.RemoveVideo)
	}

	dashboard := apiV1.Group("/dashboard")
	dashboard.Use(authMiddleware)
	{
		dashboard.GET("/:channelId/stats", dashboardHandler.GetStats)
		dashboard.GET("/:channelId/videos", dashboardHandler.GetVideos)
	}
}
