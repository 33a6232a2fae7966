package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/alumnihub/internal/config"
	"anoa.com/alumnihub/internal/jobs"
	"anoa.com/alumnihub/internal/middleware"
	"anoa.com/alumnihub/pkg/database"
	"anoa.com/alumnihub/pkg/hasher"
	"anoa.com/alumnihub/pkg/logger"
	"anoa.com/alumnihub/pkg/ratelimiter"
	"anoa.com/alumnihub/pkg/storage"

	chatHttp "anoa.com/alumnihub/internal/modules/chat/delivery/http"
	chatRepo "anoa.com/alumnihub/internal/modules/chat/repository"
	chatService "anoa.com/alumnihub/internal/modules/chat/service"

	friendshipHttp "anoa.com/alumnihub/internal/modules/friendship/delivery/http"
	friendshipRepo "anoa.com/alumnihub/internal/modules/friendship/repository"
	friendshipService "anoa.com/alumnihub/internal/modules/friendship/service"

	notifHttp "anoa.com/alumnihub/internal/modules/notification/delivery/http"
	notifService "anoa.com/alumnihub/internal/modules/notification/service"

	profileHttp "anoa.com/alumnihub/internal/modules/profile/delivery/http"
	profileRepo "anoa.com/alumnihub/internal/modules/profile/repository"
	profileService "anoa.com/alumnihub/internal/modules/profile/service"

	referenceHttp "anoa.com/alumnihub/internal/modules/reference/delivery/http"
	referenceRepo "anoa.com/alumnihub/internal/modules/reference/repository"
	referenceService "anoa.com/alumnihub/internal/modules/reference/service"

	searchService "anoa.com/alumnihub/internal/modules/search/service"

	taskHttp "anoa.com/alumnihub/internal/modules/task/delivery/http"
	taskRepo "anoa.com/alumnihub/internal/modules/task/repository"
	taskService "anoa.com/alumnihub/internal/modules/task/service"

	userHttp "anoa.com/alumnihub/internal/modules/user/delivery/http"
	userRepo "anoa.com/alumnihub/internal/modules/user/repository"
	userService "anoa.com/alumnihub/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

// Deps holds the stores and external adapters the routes are built on.
// Index, Storage and Redis are optional.
type Deps struct {
	Users       userRepo.UserRepository
	Tasks       taskRepo.TaskRepository
	Friendships friendshipRepo.FriendshipRepository
	Chat        chatRepo.ChatRepository
	Profiles    profileRepo.ProfileRepository
	References  referenceRepo.ReferenceRepository

	Hasher  hasher.Hasher
	Index   searchService.UserIndex
	Storage storage.ImageStorage
	Redis   *redis.Client

	// Ping reports store health for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

type Server struct {
	engine     *gin.Engine
	dispatcher *notifService.Dispatcher
	scheduler  *jobs.Scheduler
}

// NewServer wires the postgres-backed repositories and the optional
// search, photo storage and redis adapters named in cfg.
func NewServer(cfg *config.Config, h database.Handle, redisClient *redis.Client) *Server {
	imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName)
	if err != nil {
		logger.WithError(err).Warn("cloudinary unavailable, photo upload disabled")
		imageStorage = nil
	}

	return New(cfg, Deps{
		Users:       userRepo.NewUserRepository(h),
		Tasks:       taskRepo.NewTaskRepository(h),
		Friendships: friendshipRepo.NewFriendshipRepository(h),
		Chat:        chatRepo.NewChatRepository(h),
		Profiles:    profileRepo.NewProfileRepository(h),
		References:  referenceRepo.NewReferenceRepository(h),
		Hasher:      hasher.NewBcryptHasher(cfg.BcryptCost),
		Index:       searchService.NewMeiliSearchService(cfg.MeiliSearchHost, cfg.MeiliMasterKey),
		Storage:     imageStorage,
		Redis:       redisClient,
		Ping: func(ctx context.Context) error {
			sqlDB, err := h.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
}

// New builds the services and the router over deps.
func New(cfg *config.Config, deps Deps) *Server {
	// keep the interfaces nil rather than holding a nil *redis.Client
	var (
		publisher notifService.Publisher
		window    ratelimiter.Store
	)
	if deps.Redis != nil {
		publisher = deps.Redis
		window = deps.Redis
	}

	dispatcher := notifService.NewDispatcher(notifService.NewRedisNotifier(publisher), cfg.NotifyTimeout)
	messageLimiter := ratelimiter.New(window, cfg.RateLimitMessage)

	authSvc := userService.NewAuthService(deps.Users, deps.Hasher, deps.Index)
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(deps.Users, deps.Index)
	userHandler := userHttp.NewUserHandler(userSvc)

	taskSvc := taskService.NewTaskService(deps.Tasks)
	taskHandler := taskHttp.NewTaskHandler(taskSvc)

	friendshipSvc := friendshipService.NewFriendshipService(deps.Friendships, deps.Users, dispatcher, cfg.PushTitle)
	friendshipHandler := friendshipHttp.NewFriendshipHandler(friendshipSvc)

	chatSvc := chatService.NewChatService(deps.Chat, deps.Users, dispatcher, messageLimiter, cfg.PushTitle)
	chatHandler := chatHttp.NewChatHandler(chatSvc)

	profileSvc := profileService.NewProfileService(deps.Profiles, deps.Users, deps.Storage, deps.Index, cfg.CloudinaryUploadFolder)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	referenceSvc := referenceService.NewReferenceService(deps.References)
	referenceHandler := referenceHttp.NewReferenceHandler(referenceSvc)

	origins := splitOrigins(cfg.AllowedOrigins)
	tickets := notifService.NewTicketService(cfg.TicketSecret, cfg.TicketTTL)
	notificationHandler := notifHttp.NewNotificationHandler(tickets, notifService.NewRedisSubscriber(deps.Redis), deps.Users, origins)

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst)
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	router := gin.New()

	setupCORS(router, origins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))

	// Public routes (no auth required)
	router.GET("/health", healthHandler(deps.Ping))
	router.GET("/departments", referenceHandler.GetDepartments)
	router.GET("/dormitories", referenceHandler.GetDormitories)
	// browsers cannot set headers on a websocket upgrade, the ticket authenticates it
	router.GET("/notifications/ws", notificationHandler.Stream)

	auth := router.Group("")
	auth.Use(authLimiter.Handler())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := router.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Account
		protected.PUT("/me/device", authHandler.UpdateDeviceToken)
		protected.POST("/me/api-key", authHandler.RotateAPIKey)
		protected.GET("/notifications/ticket", notificationHandler.Ticket)

		// Directory
		protected.GET("/listUsers", userHandler.ListUsers)
		protected.GET("/userid/:email", userHandler.GetIDByEmail)
		protected.GET("/users/search", userHandler.Search)

		// Task routes
		protected.POST("/tasks", taskHandler.CreateTask)
		protected.GET("/tasks", taskHandler.GetTasks)
		protected.GET("/tasks/:id", taskHandler.GetTask)
		protected.PUT("/tasks/:id", taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", taskHandler.DeleteTask)

		// Messaging routes
		protected.GET("/chat_rooms", chatHandler.ListRooms)
		protected.GET("/chat_rooms/:id", chatHandler.GetRoom)
		protected.POST("/chat_rooms/:id/message", chatHandler.PostRoomMessage)
		protected.POST("/users/message", chatHandler.Broadcast)
		protected.POST("/users/send_to_all", chatHandler.SendToAll)
		protected.POST("/users/:id/message", chatHandler.PostDirectMessage)
		protected.GET("/users/:id/messages", chatHandler.GetConversation)

		// Friend routes
		protected.GET("/friends", friendshipHandler.ListFriends)
		protected.GET("/friends/requests", friendshipHandler.ListRequests)
		protected.GET("/friends/sent", friendshipHandler.ListSent)
		protected.GET("/friends/suggestions", friendshipHandler.Suggestions)
		protected.POST("/friends/:id", friendshipHandler.Request)
		protected.PUT("/friends/:id/accept", friendshipHandler.Accept)
		protected.GET("/friends/:id/status", friendshipHandler.Status)

		// Profile routes
		protected.POST("/registerInfo", profileHandler.RegisterInfo)
		protected.GET("/myInfo", profileHandler.GetMyInfo)
		protected.GET("/user/:id", profileHandler.GetShareInfo)
		protected.PUT("/me/profile", profileHandler.UpdateProfile)
		protected.PUT("/me/email", profileHandler.UpdateEmail)
		protected.PUT("/me/photo", profileHandler.UploadPhoto)
	}

	return &Server{
		engine:     router,
		dispatcher: dispatcher,
		scheduler:  newScheduler(cfg, deps, authLimiter),
	}
}

func newScheduler(cfg *config.Config, deps Deps, authLimiter *middleware.RateLimiter) *jobs.Scheduler {
	scheduler := jobs.NewScheduler(cfg.JobTimeout)

	background := []jobs.Job{jobs.NewPruneJob("auth-limiter-prune", "@every 10m", authLimiter)}
	if deps.Index != nil && cfg.ReindexSchedule != "" {
		background = append(background, jobs.NewReindexJob(cfg.ReindexSchedule, deps.Users, deps.Index))
	}
	for _, job := range background {
		if err := scheduler.Register(job); err != nil {
			logger.WithField("job", job.Name()).WithError(err).Error("failed to schedule job")
		}
	}
	return scheduler
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// and pending notifications.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.scheduler.Start()
	defer s.scheduler.Stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.dispatcher.Wait()
	return nil
}

func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.WithError(err).Warn("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": true, "status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"error": false, "status": "ok"})
	}
}

func splitOrigins(allowedOrigins string) []string {
	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func setupCORS(router *gin.Engine, origins []string) {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = origins
	}
	router.Use(cors.New(corsConfig))
}
