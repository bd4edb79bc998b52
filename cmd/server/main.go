package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/config"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/database"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/repository"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/routes"
	"github.com/Not-Another-Coach/CoachLinkBack/pkg/logger"
	"github.com/Not-Another-Coach/CoachLinkBack/pkg/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var zl *zap.Logger
	if cfg.IsDevelopment() {
		zl = logger.NewDevelopment()
	} else {
		zl = logger.New()
	}
	defer zl.Sync()

	if cfg.DBUrl == "" {
		zl.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB()

	if cfg.DefaultAdminEmail != "" && cfg.DefaultAdminPassword != "" {
		if err := seedAdmin(cfg, zl); err != nil {
			zl.Fatal("Failed to seed admin user", zap.Error(err))
		}
	}

	app := fiber.New()

	app.Use(cors.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, database.DB, zl)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		zl.Info("Shutting down server")
		if err := app.Shutdown(); err != nil {
			zl.Error("Shutdown error", zap.Error(err))
		}
	}()

	zl.Info("Server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Fatal("Server failed to start", zap.Error(err))
	}
}

// seedAdmin creates the admin account on first boot. Registration only
// issues client and trainer roles, so the catalog endpoints need this.
func seedAdmin(cfg *config.Config, zl *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userRepo := repository.NewUserRepository(database.DB)
	if _, err := userRepo.GetByEmail(ctx, cfg.DefaultAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := utils.HashPassword(cfg.DefaultAdminPassword)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        cfg.DefaultAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, admin); err != nil {
		return err
	}
	zl.Info("Seeded admin user", zap.String("email", admin.Email))
	return nil
}
