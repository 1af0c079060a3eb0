package main

import (
	"log"
	"os"
	"time"

	"hackmate/apperr"
	"hackmate/database"
	"hackmate/handlers"
	"hackmate/metrics"
	"hackmate/middleware"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	database.InitDB()
	if getEnv("SEED_DATA", "false") == "true" {
		database.Seed(database.GetDB())
	}

	metrics.Register()

	app := fiber.New(fiber.Config{
		ErrorHandler: apperr.ErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	corsOrigins := getEnv("CORS_ORIGINS", "http://localhost:5173")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)
	authGroup.Get("/me", middleware.AuthMiddleware, handlers.Me)

	// Profile routes
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/", handlers.ListUsers)
	userGroup.Get("/search", handlers.SearchUsers)
	userGroup.Get("/me", handlers.Me)
	userGroup.Put("/me", handlers.UpdateProfile)
	userGroup.Get("/:id", handlers.GetUser)

	// Hackathon routes
	hackathonGroup := api.Group("/hackathons")
	hackathonGroup.Get("/", handlers.ListHackathons)
	hackathonGroup.Get("/search", handlers.SearchHackathons)
	hackathonGroup.Get("/my-registrations", middleware.AuthMiddleware, handlers.MyHackathons)
	hackathonGroup.Post("/", middleware.AuthMiddleware, handlers.CreateHackathon)
	hackathonGroup.Get("/:id", handlers.GetHackathon)
	hackathonGroup.Post("/:id/register", middleware.AuthMiddleware, handlers.RegisterForHackathon)
	hackathonGroup.Delete("/:id/unregister", middleware.AuthMiddleware, handlers.UnregisterFromHackathon)

	// Team routes. Fixed paths are registered before :id parameters.
	teamGroup := api.Group("/teams")
	teamGroup.Use(middleware.AuthMiddleware)
	teamGroup.Post("/", handlers.CreateTeam)
	teamGroup.Get("/", handlers.ListTeams)
	teamGroup.Get("/search", handlers.SearchTeams)
	teamGroup.Get("/my-teams", handlers.MyTeams)
	teamGroup.Get("/invites", handlers.MyInvites)
	teamGroup.Post("/invites/mark-viewed", handlers.MarkInvitesViewed)
	teamGroup.Get("/join-requests", handlers.MyJoinRequests)
	teamGroup.Post("/apply", handlers.ApplyToTeam)
	teamGroup.Post("/invite", handlers.InviteToTeam)
	teamGroup.Post("/accept-invite/:id", handlers.AcceptInvite)
	teamGroup.Post("/reject-invite/:id", handlers.RejectInvite)
	teamGroup.Get("/:id", handlers.GetTeam)
	teamGroup.Put("/:id", handlers.UpdateTeam)
	teamGroup.Delete("/:id", handlers.DeleteTeam)
	teamGroup.Get("/:id/requests", handlers.PendingJoinRequests)
	teamGroup.Post("/:id/accept/:userID", handlers.AcceptJoinRequest)
	teamGroup.Post("/:id/reject/:userID", handlers.RejectJoinRequest)

	// Task board routes
	teamGroup.Get("/:id/tasks", handlers.ListTasks)
	teamGroup.Post("/:id/tasks", handlers.CreateTask)
	teamGroup.Put("/:id/tasks/:taskID", handlers.UpdateTask)
	teamGroup.Delete("/:id/tasks/:taskID", handlers.DeleteTask)

	// Messaging routes
	messageGroup := api.Group("/messages")
	messageGroup.Use(middleware.AuthMiddleware)
	messageGroup.Post("/send", handlers.SendDirectMessage)
	messageGroup.Get("/conversations", handlers.ListConversations)
	messageGroup.Get("/conversations/:id", handlers.GetConversation)
	messageGroup.Post("/conversations/:id/send", handlers.SendToConversation)
	messageGroup.Get("/unread-count", handlers.UnreadCount)
	messageGroup.Get("/team/:teamID/conversation", handlers.TeamConversation)

	// Realtime notifications
	app.Get("/ws", handlers.WebSocketUpgrade, handlers.WebSocketHandler)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	port := getEnv("PORT", "3000")
	log.Printf("HTTP server starting on port %s", port)
	log.Printf("Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if os.Getenv("APP_ENV") == "production" {
		if jwtSecret == "" {
			log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
		}
		if len(jwtSecret) < 32 {
			log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
		}
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" {
			log.Println("WARNING: CORS_ORIGINS not configured for production")
		}
	} else if jwtSecret == "" {
		log.Println("WARNING: JWT_SECRET not set, using development default")
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
