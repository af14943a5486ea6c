package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/kampusgig/backend/internal/config"
	"github.com/kampusgig/backend/internal/db"
	"github.com/kampusgig/backend/internal/handlers"
	"github.com/kampusgig/backend/internal/middleware"
	"github.com/kampusgig/backend/internal/models"
	"github.com/kampusgig/backend/internal/notify"
	"github.com/kampusgig/backend/internal/realtime"
	"github.com/kampusgig/backend/internal/services/dispute"
	"github.com/kampusgig/backend/internal/services/engagement"
	"github.com/kampusgig/backend/internal/services/offers"
	"github.com/kampusgig/backend/internal/services/wallet"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis not reachable:", err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Gig{},
		&models.Offer{},
		&models.Engagement{},
		&models.Dispute{},
		&models.Wallet{},
		&models.LedgerTransaction{},
		&models.Notification{},
	); err != nil {
		log.Fatal(err)
	}

	notifier := notify.NewRedisNotifier(gdb, rdb)
	walletSvc := wallet.NewService(gdb)
	disputeSvc := dispute.NewService(gdb)
	offerSvc := offers.NewService(gdb, walletSvc, notifier)
	engagementSvc := engagement.NewService(gdb, walletSvc, disputeSvc, notifier)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	gigH := handlers.NewGigHandler(gdb)
	offerH := handlers.NewOfferHandler(offerSvc, hub)
	engagementH := handlers.NewEngagementHandler(engagementSvc, hub)
	walletH := handlers.NewWalletHandler(walletSvc)
	disputeH := handlers.NewDisputeHandler(disputeSvc)
	notificationH := handlers.NewNotificationHandler(gdb)
	wsH := handlers.NewWSHandler(hub, cfg.JWTSecret)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/gigs", gigH.ListPublic)
	api.Get("/gigs/:id", gigH.GetDetail)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", authH.Me)

	// gigs (owner side)
	protected.Post("/gigs",
		middleware.RequireRoles("client"),
		gigH.Create,
	)
	protected.Get("/my/gigs",
		middleware.RequireRoles("client"),
		gigH.ListMine,
	)
	protected.Patch("/gigs/:id/close",
		middleware.RequireRoles("client"),
		gigH.Close,
	)

	// offers
	protected.Post("/gigs/:id/applications",
		middleware.RequireRoles("student"),
		offerH.Apply,
	)
	protected.Post("/gigs/:id/proposals",
		middleware.RequireRoles("student"),
		offerH.Propose,
	)
	protected.Get("/gigs/:id/offers", offerH.ListByGig)
	protected.Post("/offers/:id/accept", offerH.Accept)
	protected.Post("/offers/:id/reject", offerH.Reject)
	protected.Post("/offers/:id/withdraw", offerH.Withdraw)

	// engagements
	protected.Get("/engagements", engagementH.ListMine)
	protected.Get("/engagements/:id", engagementH.Get)
	protected.Post("/engagements/:id/deposit", engagementH.Deposit)
	protected.Post("/engagements/:id/submit", engagementH.SubmitWork)
	protected.Post("/engagements/:id/approve", engagementH.ApproveWork)
	protected.Post("/engagements/:id/cancel", engagementH.Cancel)
	protected.Post("/engagements/:id/dispute", engagementH.RaiseDispute)

	// wallet
	protected.Get("/wallet/summary", walletH.Summary)
	protected.Get("/wallet/transactions", walletH.Transactions)

	// notifications
	protected.Get("/notifications", notificationH.ListMine)
	protected.Patch("/notifications/read", notificationH.MarkRead)

	// admin review
	protected.Get("/admin/disputes",
		middleware.RequireRoles("admin"),
		disputeH.List,
	)
	protected.Patch("/admin/disputes/:id",
		middleware.RequireRoles("admin"),
		disputeH.UpdateStatus,
	)

	// websocket (token via query param, no cookie middleware)
	app.Get("/ws/updates", websocket.New(wsH.Updates))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
