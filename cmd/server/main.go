package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/subscription-gateway/internal/analytics"
	"github.com/ignite/subscription-gateway/internal/api"
	"github.com/ignite/subscription-gateway/internal/config"
	"github.com/ignite/subscription-gateway/internal/ratelimit"
	"github.com/ignite/subscription-gateway/internal/subscription"
	"github.com/ignite/subscription-gateway/internal/transport"
)

// checkPortAvailable verifies that the target port is not already in
// use, so a stale process never silently shadows the gateway.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func buildTransport(ctx context.Context, cfg *config.Config) (subscription.Transport, error) {
	switch cfg.Transport.Mode {
	case "stub":
		log.Println("[transport] stub mode: submissions are simulated, nothing is delivered")
		return transport.NewStub(cfg.Transport.StubDelay()), nil
	case "http":
		log.Printf("[transport] http mode: delivering to %s", cfg.Transport.BaseURL)
		return transport.NewHTTPTransport(cfg.Transport), nil
	case "ses":
		log.Printf("[transport] ses mode: contact list %q in %s", cfg.Transport.SES.ContactList, cfg.Transport.SES.Region)
		return transport.NewSESTransport(ctx, cfg.Transport.SES)
	default:
		return nil, fmt.Errorf("unknown transport mode %q", cfg.Transport.Mode)
	}
}

func main() {
	log.Println("Starting subscription gateway...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr, err := buildTransport(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize transport: %v", err)
	}

	var sink analytics.Sink = analytics.NopSink{}
	if cfg.Analytics.Enabled {
		sink = analytics.NewLoggerSink()
		log.Println("[analytics] logger sink enabled")
	}

	// Redis is optional; without it the edge limiter runs in-memory
	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("[redis] ping failed, falling back to in-memory edge limiting: %v", err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("[redis] connected to %s", cfg.Redis.Addr)
		}
		pingCancel()
	}
	edge := ratelimit.New(redisClient, cfg.RateLimit.PerClientPerMinute, time.Minute)

	// One subscriber per configured form: independent validators and
	// independent submission windows
	forms := make(map[string]*subscription.Subscriber, len(cfg.Forms))
	for _, form := range cfg.Forms {
		forms[form.ID] = subscription.NewSubscriberWithOptions(
			subscription.NewValidator(form.Source, form.ConsentRequired),
			subscription.NewWindowLimiter(cfg.RateLimit.Window(), cfg.RateLimit.MaxPerWindow),
			tr,
			sink,
			subscription.SubscriberOptions{Timeout: cfg.Transport.Timeout()},
		)
		log.Printf("[forms] registered %q (source=%s consent_required=%v)", form.ID, form.Source, form.ConsentRequired)
	}

	server := api.NewServer(cfg.Server, forms, edge)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down...", sig)
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("Shutdown complete")
}
