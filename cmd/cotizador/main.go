package main

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"cotizador/internal/cache"
	"cotizador/internal/config"
	"cotizador/internal/http/handlers"
	applog "cotizador/internal/log"
	"cotizador/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	deps, err := handlers.NewDeps(db, cfg, openCache(cfg))
	if err != nil {
		log.Fatal(err)
	}

	engine := handlers.NewViews(cfg.TemplatesDir)
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodGet
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.write.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	deps.Register(app)

	log.Fatal(app.Listen(":" + cfg.Port))
}

// openCache prefers Redis when configured and reachable.
func openCache(cfg config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache("cotizador")
	}
	c := cache.NewRedisCache(cfg.RedisAddr, "cotizador")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.Ping(ctx, c); err != nil {
		log.Printf("[warn] redis at %s unreachable (%v), using in-process cache", cfg.RedisAddr, err)
		return cache.NewMemoryCache("cotizador")
	}
	log.Printf("[cache] redis at %s", cfg.RedisAddr)
	return c
}
