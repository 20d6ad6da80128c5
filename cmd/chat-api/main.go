package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"

	"github.com/wetechforu/marketingby-chat-be/internal/core/kb"
	"github.com/wetechforu/marketingby-chat-be/internal/core/llm"
	"github.com/wetechforu/marketingby-chat-be/internal/core/schedule"
	"github.com/wetechforu/marketingby-chat-be/internal/core/whatsapp"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/handlers"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/repositories"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/services"
	"github.com/wetechforu/marketingby-chat-be/internal/shared/config"
	"github.com/wetechforu/marketingby-chat-be/internal/shared/database"
	"github.com/wetechforu/marketingby-chat-be/internal/shared/utils"

	_ "github.com/wetechforu/marketingby-chat-be/cmd/chat-api/docs"
)

// @title MarketingBy Chat API
// @version 1.0
// @description Chat widget conversation and handover orchestration API
// @contact.name API Support
// @contact.email support@wetechforu.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	utils.InitLogger()

	// Load config
	cfg := config.LoadConfig()
	utils.LogInfo("starting chat-api", map[string]interface{}{
		"port":           cfg.Port,
		"sweep_interval": cfg.SweepInterval.String(),
	})

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	convRepo := repositories.NewConversationRepo(db.GORM)
	msgRepo := repositories.NewMessageRepo(db.GORM)
	widgetRepo := repositories.NewWidgetRepo(db.GORM)
	handoverRepo := repositories.NewHandoverRepo(db.GORM)
	kbRetriever := kb.NewRetriever(db.GORM)

	// Init LLM service (multi-provider support)
	llmService := llm.NewService()

	// Init WhatsApp service
	waService := whatsapp.NewService()
	if err := waService.Connect(); err != nil {
		log.Printf("⚠️ WhatsApp connect failed, handover sends will error until it recovers: %v", err)
	}
	defer waService.Disconnect()

	log.Printf("📱 Using WhatsApp provider: %s", waService.GetProviderName())
	log.Printf("🤖 Using LLM provider: %s", llmService.GetProviderName())

	// Init services; the engine and the sweeper share one lock set
	locks := services.NewConversationLocks()
	router := services.NewRouterService(kbRetriever, cfg.RateLimitMessages, int(cfg.RateLimitWindow.Seconds()))
	handover := services.NewHandoverService(handoverRepo, waService)
	engine := services.NewEngine(convRepo, msgRepo, widgetRepo, router, handover, llmService, kbRetriever, waService, locks, cfg.ExtensionDuration)
	inactivity := services.NewInactivityService(convRepo, msgRepo, widgetRepo, waService, locks,
		cfg.WarnThreshold, cfg.GraceThreshold, cfg.CloseThreshold, cfg.MaxExtensionReminders)

	// Init handlers
	conversationHandler := handlers.NewConversationHandler(engine, msgRepo)
	webhookHandler := handlers.NewWebhookHandler(engine)
	widgetHandler := handlers.NewWidgetHandler(widgetRepo)
	sweepHandler := handlers.NewSweepHandler(inactivity)
	healthHandler := handlers.NewHealthHandler(db)

	// Inactivity sweep on a fixed interval
	scheduler := schedule.NewScheduler()
	sweepSpec := cronEvery(cfg.SweepInterval)
	if err := scheduler.AddJob("inactivity-sweep", sweepSpec, func() {
		if _, err := inactivity.RunSweep(context.Background()); err != nil {
			log.Printf("❌ Scheduled sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("❌ Failed to schedule inactivity sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "MarketingBy Chat API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	app.Get("/health", healthHandler.Health)

	// Public widget routes
	app.Post("/api/public/widget/:widgetKey/message", conversationHandler.PostVisitorMessage)
	app.Get("/api/public/widget/:widgetKey/handover/qr", widgetHandler.HandoverQR)

	// Agent portal routes
	app.Post("/api/conversations/:id/agent-message", conversationHandler.PostAgentMessage)
	app.Get("/api/conversations/:id/messages", conversationHandler.GetMessages)

	// Webhook route
	app.Post("/api/webhook/whatsapp", webhookHandler.ReceiveWhatsApp)

	// Internal routes
	app.Post("/api/internal/sweep", sweepHandler.RunSweep)
	app.Post("/api/widgets/:id/cache/invalidate", widgetHandler.InvalidateCache)

	// Start server
	log.Printf("✅ chat-api running at :%s", cfg.Port)
	log.Printf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

func cronEvery(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}
