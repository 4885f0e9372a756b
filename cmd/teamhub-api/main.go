package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/teamhub/teamhub-api/internal/config"
	"github.com/teamhub/teamhub-api/internal/database"
	"github.com/teamhub/teamhub-api/internal/handlers"
	authmw "github.com/teamhub/teamhub-api/internal/middleware"
	"github.com/teamhub/teamhub-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db)
	activityService := services.NewActivityService(db)
	teamService := services.NewTeamService(db, notificationService, activityService)
	inviteService := services.NewInviteService(db, teamService, userService, activityService)
	reminderService := services.NewReminderService(db, teamService, notificationService)
	emailService := services.NewEmailService(cfg.SMTP)

	authHandler := handlers.NewAuthHandler(userService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, inviteService, userService, emailService, activityService, cfg.BaseURL)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, reminderService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/teams", teamHandler.List)
	protected.Post("/teams", teamHandler.Create)
	protected.Get("/teams/:id", teamHandler.Get)
	protected.Patch("/teams/:id", teamHandler.Update)
	protected.Patch("/teams/:id/settings", teamHandler.UpdateSettings)
	protected.Delete("/teams/:id", teamHandler.Delete)
	protected.Get("/teams/:id/members", teamHandler.GetMembers)
	protected.Post("/teams/:id/members", teamHandler.InviteMember)
	protected.Delete("/teams/:id/members/:memberId", teamHandler.RemoveMember)
	protected.Patch("/teams/:id/members/:memberId/role", teamHandler.ChangeRole)
	protected.Post("/teams/:id/leave", teamHandler.LeaveTeam)
	protected.Get("/teams/:id/invites", teamHandler.GetTeamInvites)
	protected.Delete("/teams/:id/invites/:inviteId", teamHandler.CancelInvite)
	protected.Get("/teams/:id/activities", teamHandler.GetActivities)

	protected.Get("/invites", inviteHandler.GetMyInvites)
	protected.Post("/invites/:id/respond", inviteHandler.Respond)
	protected.Post("/approvals/:id/respond", inviteHandler.RespondApproval)

	protected.Get("/notifications", notificationHandler.List)
	protected.Patch("/notifications/:id/read", notificationHandler.MarkRead)
	protected.Patch("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.Post("/reminders", notificationHandler.SendReminder)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
