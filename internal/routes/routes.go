package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/config"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/handlers"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/middleware"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/payment"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/services"
	chatws "github.com/Not-Another-Coach/CoachLinkBack/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, logger *zap.Logger) {
	userRepo := repository.NewUserRepository(db)
	clientProfileRepo := repository.NewClientProfileRepository(db)
	trainerProfileRepo := repository.NewTrainerProfileRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	styleRepo := repository.NewStyleRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	discoveryCallRepo := repository.NewDiscoveryCallRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	var checkout services.CheckoutProvider
	var stripeClient *payment.StripeClient
	if cfg.StripeSecretKey != "" {
		stripeClient = payment.NewStripeClient(payment.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.CheckoutSuccessURL,
			CancelURL:     cfg.CheckoutCancelURL,
			Currency:      cfg.CheckoutCurrency,
		})
		checkout = stripeClient
	}

	chatHub := chatws.NewHub(logger)
	go chatHub.Run()
	notifier := chatws.NewNotificationBridge(chatHub, logger)

	engagementService := services.NewEngagementService(engagementRepo, notifier)
	discoveryService := services.NewDiscoveryService(trainerProfileRepo, engagementService)
	matchService := services.NewMatchService(trainerProfileRepo, styleRepo)
	styleAdminService := services.NewStyleAdminService(styleRepo)
	profileService := services.NewProfileService(clientProfileRepo, trainerProfileRepo, storageService)
	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo, engagementService)
	selectionService := services.NewSelectionService(db, selectionRepo, paymentRepo, engagementService, checkout, notifier)
	assignmentService := services.NewAssignmentService(db, assignmentRepo, engagementRepo, notifier)
	discoveryCallService := services.NewDiscoveryCallService(db, discoveryCallRepo, engagementRepo, engagementService, userRepo, notifier)

	authHandler := handlers.NewAuthHandler(db, userRepo, clientProfileRepo, trainerProfileRepo, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileService)
	trainerDiscoveryHandler := handlers.NewTrainerDiscoveryHandler(discoveryService, clientProfileRepo, matchService)
	engagementHandler := handlers.NewEngagementHandler(engagementService)
	selectionHandler := handlers.NewSelectionHandler(selectionService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	styleAdminHandler := handlers.NewStyleAdminHandler(styleAdminService)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)
	discoveryCallHandler := handlers.NewDiscoveryCallHandler(discoveryCallService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	if stripeClient != nil {
		webhookHandler := handlers.NewPaymentWebhookHandler(stripeClient, selectionService, logger)
		api.Post("/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	}

	v1 := api.Group("/v1")
	authRequired := middleware.AuthRequired(cfg.JWTSecret)

	// Trainer browse and detail are open to guests; a token upgrades the
	// view to the caller's disclosure stage. The rest of the trainer
	// subtree requires a session.
	trainers := v1.Group("/trainers", middleware.AuthOptional(cfg.JWTSecret))
	trainers.Get("", trainerDiscoveryHandler.ListTrainers)
	trainers.Post("/onboarding", authRequired, profileHandler.CompleteTrainerOnboarding)
	trainers.Post("/gallery", authRequired, profileHandler.UploadGalleryImage)
	trainers.Get("/recommended/list", authRequired, trainerDiscoveryHandler.GetRecommendedTrainers)
	trainers.Get("/:id", trainerDiscoveryHandler.GetTrainerDetail)
	trainers.Get("/:id/availability", authRequired, discoveryCallHandler.CheckAvailability)

	profile := v1.Group("/profile", authRequired)
	profile.Get("", profileHandler.GetMyProfile)
	profile.Post("/avatar", profileHandler.UploadAvatar)

	clients := v1.Group("/clients", authRequired)
	clients.Post("/onboarding", profileHandler.CompleteClientOnboarding)

	engagements := v1.Group("/engagements", authRequired)
	engagements.Get("", engagementHandler.List)
	engagements.Get("/:id", engagementHandler.View)
	engagements.Post("/:id/like", engagementHandler.Like)
	engagements.Post("/:id/decline", engagementHandler.Decline)
	engagements.Post("/:id/unmatch", engagementHandler.Unmatch)
	engagements.Patch("/:id/notes", engagementHandler.UpdateNotes)

	selections := v1.Group("/selection-requests", authRequired)
	selections.Post("", selectionHandler.CreateRequest)
	selections.Get("", selectionHandler.ListRequests)
	selections.Get("/:id", selectionHandler.GetRequest)
	selections.Post("/:id/accept", selectionHandler.Accept)
	selections.Post("/:id/decline", selectionHandler.Decline)
	selections.Post("/:id/suggest-alternative", selectionHandler.SuggestAlternative)
	selections.Post("/:id/accept-alternative", selectionHandler.AcceptAlternative)
	selections.Post("/:id/pay", selectionHandler.InitiatePayment)

	calls := v1.Group("/discovery-calls", authRequired)
	calls.Post("", discoveryCallHandler.BookCall)
	calls.Get("", discoveryCallHandler.ListCalls)
	calls.Put("/:id/status", discoveryCallHandler.UpdateStatus)

	assignments := v1.Group("/assignments", authRequired)
	assignments.Post("", assignmentHandler.Assign)
	assignments.Post("/expire", assignmentHandler.Expire)
	assignments.Get("/active", assignmentHandler.Active)
	assignments.Get("/history", assignmentHandler.History)
	assignments.Get("/history/:clientId", assignmentHandler.History)

	conversations := v1.Group("/conversations", authRequired)
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)
	conversations.Post("/:id/messages", chatHandler.SendMessage)
	conversations.Get("/:id/can-send", chatHandler.CanSend)

	admin := v1.Group("/admin", authRequired, middleware.RequireRole(models.RoleAdmin))
	admin.Post("/styles/client", styleAdminHandler.CreateClientStyle)
	admin.Post("/styles/trainer", styleAdminHandler.CreateTrainerStyle)
	admin.Delete("/styles/:catalog/:id", styleAdminHandler.DeactivateStyle)
	admin.Post("/style-mappings", styleAdminHandler.CreateMapping)
	admin.Put("/style-mappings/:id", styleAdminHandler.UpdateMappingWeight)
	admin.Delete("/style-mappings/:id", styleAdminHandler.DeleteMapping)
	admin.Get("/style-report", styleAdminHandler.CatalogReport)
	admin.Get("/trainers/:id/preview", trainerDiscoveryHandler.PreviewTrainer)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
