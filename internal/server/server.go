package server

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/config"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/models"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/contracting"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/dashboard"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/escrow"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/messaging"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/profile"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/project"
	"github.com/Windi-Fikriyansyah/freelancehub_be/internal/services/review"
)

type Deps struct {
	Config   config.Config
	DB       *gorm.DB
	Hub      *realtime.Hub
	Notifier realtime.Notifier
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// New builds the fiber app with every route mounted.
func New(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Hub == nil {
		d.Hub = realtime.NewHub()
	}
	if d.Notifier == nil {
		d.Notifier = realtime.LocalNotifier{Hub: d.Hub}
	}
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      "freelancehub",
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: errorHandler(d.Logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	if cfg.UploadDir != "" {
		_ = os.MkdirAll(cfg.UploadDir, 0o755)
		app.Static("/uploads", cfg.UploadDir)
	}

	// services
	escrowSvc := escrow.NewEscrowService(d.DB, d.Notifier, d.Metrics)
	contractingSvc := contracting.NewContractingService(d.DB, escrowSvc, d.Notifier, d.Metrics)
	projectSvc := project.NewProjectService(d.DB)
	reviewSvc := review.NewReviewService(d.DB, d.Notifier)
	profileSvc := profile.NewProfileService(d.DB, reviewSvc)
	messagingSvc := messaging.NewMessagingService(d.DB, d.Notifier)
	dashboardSvc := dashboard.NewDashboardService(d.DB)

	// handlers
	authH := handlers.NewAuthHandler(profileSvc, cfg.JWTSecret, cfg.JWTExpiresMin, cfg.CookieSecure)
	googleH := &handlers.GoogleOAuthHandler{
		Auth:            authH,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	profileH := handlers.NewProfileHandler(profileSvc, cfg.UploadDir, cfg.PublicURL)
	projectH := handlers.NewProjectHandler(projectSvc)
	proposalH := handlers.NewProposalHandler(contractingSvc)
	contractH := handlers.NewContractHandler(contractingSvc)
	paymentH := handlers.NewPaymentHandler(escrowSvc)
	messageH := handlers.NewMessageHandler(messagingSvc, d.Hub)
	reviewH := handlers.NewReviewHandler(reviewSvc)
	dashboardH := handlers.NewDashboardHandler(dashboardSvc)

	app.Get("/healthz", healthz(d.DB))
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	if cfg.GoogleEnabled() {
		api.Get("/auth/google/start", googleH.GoogleStart)
		api.Get("/auth/google/callback", googleH.GoogleCallback)
	}
	api.Get("/projects/browse", projectH.Browse)
	api.Get("/skills", projectH.Skills)
	api.Get("/profiles/:id", profileH.Public)

	auth := []fiber.Handler{middleware.JWTFromCookie(cfg.JWTSecret), middleware.AttachJWTLocals()}
	client := middleware.RequireRoles(string(models.RoleClient))
	freelancer := middleware.RequireRoles(string(models.RoleFreelancer))

	// /projects/mine must be registered before the public /projects/:id
	api.Get("/projects/mine", append(auth, client, projectH.Mine)...)
	api.Get("/projects/:id", middleware.OptionalJWT(cfg.JWTSecret), projectH.Get)

	protected := api.Group("", auth...)

	protected.Get("/me", authH.Me)
	protected.Patch("/profile", profileH.Update)
	protected.Post("/profile/avatar", profileH.UploadAvatar)
	protected.Get("/dashboard", dashboardH.Get)

	protected.Post("/projects", client, projectH.Create)
	protected.Put("/projects/:id", client, projectH.Update)
	protected.Post("/projects/:id/publish", client, projectH.Publish)
	protected.Post("/projects/:id/cancel", client, projectH.Cancel)
	protected.Get("/projects/:id/proposals", client, proposalH.ListForProject)
	protected.Post("/projects/:id/proposals", freelancer, proposalH.Submit)

	protected.Get("/proposals/mine", freelancer, proposalH.Mine)
	protected.Post("/proposals/:id/accept", client, proposalH.Accept)
	protected.Post("/proposals/:id/reject", client, proposalH.Reject)

	protected.Get("/contracts", contractH.List)
	protected.Get("/contracts/:id", contractH.Get)
	protected.Post("/contracts/:id/complete", client, contractH.Complete)
	protected.Get("/contracts/:id/messages", messageH.List)
	protected.Post("/contracts/:id/messages", messageH.Send)
	protected.Post("/contracts/:id/reviews", reviewH.Create)

	protected.Get("/payments", paymentH.List)
	protected.Get("/payments/:id", paymentH.Get)
	protected.Post("/payments/:id/escrow", paymentH.Transition(escrow.ActionEscrow))
	protected.Post("/payments/:id/release", paymentH.Transition(escrow.ActionRelease))
	protected.Post("/payments/:id/refund", paymentH.Transition(escrow.ActionRefund))

	protected.Get("/admin/profiles", middleware.RequireRoles(string(models.RoleAdmin)), profileH.AdminList)

	app.Get("/ws", append(auth, messageH.Upgrade, websocket.New(messageH.WebSocketHandler))...)

	return app
}

func healthz(gdb *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := gdb.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "database unavailable"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	}
}

// errorHandler renders errors that escape handlers, mostly middleware
// rejections, in the common envelope.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
	}
}
