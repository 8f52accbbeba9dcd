package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"linguaflow/internal/config"
	"linguaflow/internal/db"
	"linguaflow/internal/http/handlers"
	appmw "linguaflow/internal/http/middleware"
	"linguaflow/internal/translate"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := db.EnsureSeedUser(sqlDB, cfg); err != nil {
		log.Fatalf("failed to ensure seed user: %v", err)
	}

	handlers.InitPrometheusMetrics()

	engine := translate.NewMock(cfg.MockLatency)

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	sessionAuth := appmw.SessionAuth(sqlDB, cfg)
	optionalAuth := appmw.OptionalSessionAuth(sqlDB, cfg)
	apiKeyAuth := appmw.APIKeyAuth(sqlDB)

	r.POST("/auth/register", handlers.Register(sqlDB, cfg))
	r.POST("/auth/login", handlers.Login(sqlDB, cfg))
	r.POST("/auth/logout", handlers.Logout())

	r.GET("/user/me", sessionAuth(handlers.Me()))

	r.POST("/credits/topup", sessionAuth(handlers.TopUp(sqlDB, cfg)))
	r.GET("/credits/transactions", sessionAuth(handlers.Transactions(sqlDB)))

	// B2B surface, authenticated by static API key.
	r.POST("/v1/translate/text", apiKeyAuth(handlers.TranslateText(sqlDB, cfg, engine)))

	// Upload routes allow guests; guests are never metered.
	r.POST("/translate/docx", optionalAuth(handlers.TranslateDocx(sqlDB, cfg, engine)))
	r.POST("/translate/asr", optionalAuth(handlers.TranslateASR(sqlDB, cfg, engine)))

	r.GET("/v1/metrics", handlers.MetricsHandler(sqlDB))

	handler := handlers.RequestLogger(r.Handler)

	server := &fasthttp.Server{
		Handler: handler,
		// Uploads are capped at cfg.MaxUploadBytes; leave headroom for
		// multipart framing so the handler-level check decides.
		MaxRequestBodySize: int(cfg.MaxUploadBytes) + 1<<20,
	}

	log.Printf("linguaflow listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
