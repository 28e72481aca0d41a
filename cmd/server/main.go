package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/financas-app/financas-backend/internal/cleanup"
	"github.com/financas-app/financas-backend/internal/config"
	"github.com/financas-app/financas-backend/internal/database"
	"github.com/financas-app/financas-backend/internal/handler"
	"github.com/financas-app/financas-backend/internal/mailer"
	"github.com/financas-app/financas-backend/internal/queue"
	"github.com/financas-app/financas-backend/internal/repository"
	"github.com/financas-app/financas-backend/internal/router"
	"github.com/financas-app/financas-backend/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}

	userRepo := repository.NewUserRepo(db)
	authRepo := repository.NewAuthRepo(db)
	codeRepo := repository.NewCodeRepo(db)
	planilhaRepo := repository.NewPlanilhaRepo(db)
	notificacaoRepo := repository.NewNotificacaoRepo(db)

	mail := mailer.NewSMTPMailer(cfg.SMTP)
	codes := service.NewCodeService(codeRepo, mail, cfg.CodeTTL, cfg.CodeCooldown)

	authHandler := handler.NewAuthHandler(cfg, userRepo, authRepo, codes)
	userHandler := handler.NewUserHandler(cfg, userRepo, authRepo, codes)
	planilhaHandler := handler.NewPlanilhaHandler(planilhaRepo, userRepo)
	notificacaoHandler := handler.NewNotificacaoHandler(notificacaoRepo, userRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cleanup.Start(ctx, userRepo, codeRepo, 24*time.Hour)
	go queue.StartNotificacaoConsumer()

	e := echo.New()
	router.Register(e, rdb, authHandler, userHandler, planilhaHandler, notificacaoHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
