package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oscarrryeezus/PAWS-backend/internal/db"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/config"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/geo"
	phttp "github.com/oscarrryeezus/PAWS-backend/internal/platform/http"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/logger"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/notify"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"

	authhttp "github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/http"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/infra"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/infra/pg"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)

	pool, err := db.Open(cfg.PGDSN)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	defer pool.Close()

	users := pg.NewUserRepo(pool)
	cache := infra.NewCache(cfg.CacheTTL, time.Now)

	passwords := security.NewPasswords(cfg.AppSecret)
	pinCipher := security.NewPinCipher(cfg.AppSecret, cfg.PinHashCost, cfg.PinValidityDays, time.Now)
	totp := security.NewTOTP("PAWS")
	jwtm := security.NewJWTManager(cfg.AppSecret, cfg.AccessTTL)

	mailer := notify.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	geoClient := geo.NewClient(cfg.GoogleAPIKey)

	registration := service.NewRegistration(users, cache, mailer, totp, passwords, log, time.Now)
	pins := service.NewPins(users, pinCipher, totp, jwtm, log, time.Now)
	auth := service.NewAuth(users, cache, mailer, totp, passwords, geoClient, jwtm,
		cfg.SessionTTL, log, time.Now)
	sweeper := service.NewSweeper(users, cache, cfg.SweepInterval, cfg.SessionInterval, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	sweeper.Start(ctx)

	authModule := authhttp.NewModule(users, registration, pins, auth, sweeper, cfg.AppSecret)
	app := phttp.NewServer(phttp.Options{AppName: "paws-backend"}, authModule)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	log.Info("listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
