// Package router wires the HTTP routes. Route shapes are kept
// compatible with the legacy API consumed by the mobile client, which
// is why several mutations use POST and carry ids in the path.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/financas-app/financas-backend/internal/config"
	"github.com/financas-app/financas-backend/internal/handler"
	"github.com/financas-app/financas-backend/internal/middleware"
)

// Register mounts every route group on the Echo instance. rdb may be
// nil; rate limiting and caching then turn into pass-throughs.
func Register(
	e *echo.Echo,
	rdb *redis.Client,
	auth *handler.AuthHandler,
	users *handler.UserHandler,
	planilhas *handler.PlanilhaHandler,
	notificacoes *handler.NotificacaoHandler,
) {
	e.GET("/healthz", handler.Health)
	e.Static("/public", "public")

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Credential and session endpoints. The limiter shields the code
	// mailer and the bcrypt comparisons from brute force.
	a := e.Group("/auth", limiter)
	a.POST("/login", auth.Login)
	a.POST("/logout", auth.Logout)
	a.POST("/verify/:id", auth.VerifyCode)
	a.POST("/check-token", auth.CheckToken)
	a.POST("/send-email", auth.SendEmail)

	u := e.Group("/users")
	u.POST("/register", users.Register)
	u.GET("", users.List)
	u.GET("/:id", users.GetByID)
	u.PUT("/edit/:id", users.Edit)
	u.PUT("/update-data/:id", users.UpdateData)
	u.DELETE("/delete/:id", users.Delete)
	u.POST("/resend-password", users.ResendPassword, limiter)
	u.PUT("/update-password/:id", users.UpdatePassword)

	p := e.Group("/planilha")
	p.POST("/register", planilhas.Create)
	p.POST("/:planilhaId/linhas", planilhas.AddLinha)
	p.GET("/detalhes/:id", planilhas.Detalhes, cache)
	p.GET("/:userId", planilhas.ListByUser, cache)
	p.PUT("/edit/:id", planilhas.Update)
	p.DELETE("/delete/:id", planilhas.Delete)
	p.PUT("/linhas/:id", planilhas.UpdateLinha)
	p.DELETE("/linhas/:id", planilhas.DeleteLinha)

	n := e.Group("/notificacao")
	n.POST("/criar", notificacoes.Criar)
	n.GET("", notificacoes.ListAll, cache)
	n.POST("/visualizar/:userId/:notificacaoId", notificacoes.Visualizar)
	n.POST("/numero-notificacao/:userId", notificacoes.NumeroNaoVisualizadas)
}
