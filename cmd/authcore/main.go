package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authcore "github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/httpapi"
	"github.com/MrEthical07/authcore/internal/audit"
	"github.com/MrEthical07/authcore/notify"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type envConfig struct {
	Addr       string        `env:"ADDR" envDefault:":3000"`
	Production bool          `env:"PRODUCTION" envDefault:"false"`
	BaseURL    string        `env:"BASE_URL" envDefault:"http://localhost:3000"`
	AppName    string        `env:"APP_NAME" envDefault:"authcore"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	EmailSecret   string        `env:"EMAIL_TOKEN_SECRET,required"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	EmailTTL      time.Duration `env:"EMAIL_TOKEN_TTL" envDefault:"1h"`

	MaxSessions int           `env:"MAX_SESSIONS" envDefault:"5"`
	ResetTTL    time.Duration `env:"RESET_TTL" envDefault:"10m"`
	ResetOTP    bool          `env:"RESET_USE_OTP" envDefault:"false"`
	OTPDigits   int           `env:"RESET_OTP_DIGITS" envDefault:"6"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	AuditLog string `env:"AUDIT_LOG"`
}

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		logger.Error("config parse failed", "error", err)
		os.Exit(1)
	}

	if err := run(logger, cfg); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg envConfig) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	engineCfg := authcore.Config{
		Token: authcore.TokenConfig{
			AccessSecret:  []byte(cfg.AccessSecret),
			RefreshSecret: []byte(cfg.RefreshSecret),
			EmailSecret:   []byte(cfg.EmailSecret),
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
			EmailTTL:      cfg.EmailTTL,
			Issuer:        cfg.AppName,
		},
		Password: authcore.PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Session: authcore.SessionConfig{
			MaxPerAccount: cfg.MaxSessions,
			RedisPrefix:   "ac",
		},
		Reset: authcore.ResetConfig{
			Strategy:  authcore.ResetToken,
			TTL:       cfg.ResetTTL,
			OTPDigits: cfg.OTPDigits,
		},
		App: authcore.AppConfig{
			Name:       cfg.AppName,
			BaseURL:    cfg.BaseURL,
			Production: cfg.Production,
		},
		Audit: authcore.AuditConfig{
			Enabled:    cfg.AuditLog != "",
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: authcore.MetricsConfig{Enabled: true},
	}
	if cfg.ResetOTP {
		engineCfg.Reset.Strategy = authcore.ResetOTP
	}

	builder := authcore.New().
		WithConfig(engineCfg).
		WithRedis(redisClient).
		WithNotifier(notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}))

	var auditFile *os.File
	if cfg.AuditLog != "" {
		f, err := os.OpenFile(cfg.AuditLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		auditFile = f
		defer auditFile.Close()
		builder = builder.WithAuditSink(audit.NewJSONWriterSink(f))
	}

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	api := httpapi.New(engine, httpapi.Config{
		RefreshTTL: cfg.RefreshTTL,
		Production: cfg.Production,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("shutdown complete")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
