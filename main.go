package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"social-events-system/handlers"
	"social-events-system/middleware"
	"social-events-system/models"
	"social-events-system/services"
	"social-events-system/utils"
	"social-events-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB, pictures only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	// TranslateError lets services detect duplicate keys portably.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.PhoneAuth{},
		&models.Event{},
		&models.Address{},
		&models.Location{},
		&models.UserEventLink{},
		&models.Friendship{},
		&models.Message{},
		&models.RankingParameters{},
		&models.RankingInfo{},
		&models.Score{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	verifyClient := services.NewVerifyClientFromEnv()
	if verifyClient == nil {
		log.Println("⚠️  Twilio Verify not configured, using local verification codes")
	}
	geocoder := services.NewGeocoderFromEnv()
	if geocoder == nil {
		log.Println("⚠️  GOOGLE_MAPS_API_KEY not set, locations require explicit coordinates")
	}

	authService := services.NewAuthService(db, verifyClient, []byte(jwtSecret), 24*time.Hour)
	userService := services.NewUserService(db)
	eventService := services.NewEventService(db)
	messageService := services.NewMessageService(db)
	linkService := services.NewLinkService(db, messageService)
	friendshipService := services.NewFriendshipService(db, linkService)
	locationService := services.NewLocationService(db, geocoder, linkService)
	rankingService := services.NewRankingService(db, linkService)
	standingService := services.NewStandingService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rankingWorker := workers.NewRankingWorker(db, rankingService)
	go workers.PollFinishedEvents(ctx, rankingWorker, 1*time.Minute)

	rankingService.StartPercentileScheduler()
	authService.StartCodeCleanupScheduler()

	authRequired := middleware.UserAuthMiddleware([]byte(jwtSecret))

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupUserRoutes(app, userService, authRequired)
	handlers.SetupEventRoutes(app, eventService, linkService, messageService, locationService, authRequired)
	handlers.SetupFriendshipRoutes(app, friendshipService, authRequired)
	handlers.SetupRankingRoutes(app, rankingService, standingService, authRequired)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Ranking worker running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
