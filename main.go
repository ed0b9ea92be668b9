package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"smartmeeting/apperrors"
	"smartmeeting/auth"
	"smartmeeting/config"
	"smartmeeting/generator"
	"smartmeeting/invitation"
	"smartmeeting/observability"
	"smartmeeting/publisher"
	"smartmeeting/server"
	"smartmeeting/store"
)

var verbose bool

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config file (.json or .yaml)")
	addr := flag.String("addr", "", "http listen address (overrides config server_addr)")
	meetingPath := flag.String("meeting", "", "render one invitation from a meeting JSON file and exit")
	outPath := flag.String("out", "", "where -meeting writes the HTML (stdout when empty)")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := buildLLM(cfg.LLM)
	if err != nil {
		logger.Fatal("llm setup failed", zap.Error(err))
	}
	renderer := invitation.NewRenderer()
	gwOpts := []generator.GatewayOption{generator.WithLogger(logger)}
	if cfg.LLM != nil {
		gwOpts = append(gwOpts, generator.WithTimeout(cfg.LLM.Timeout()))
	}
	gateway, err := generator.NewGateway(llm, renderer, gwOpts...)
	if err != nil {
		logger.Fatal("gateway setup failed", zap.Error(err))
	}

	if *meetingPath != "" {
		if err := renderOnce(ctx, gateway, *meetingPath, *outPath); err != nil {
			logger.Fatal("render failed", zap.Error(err))
		}
		return
	}

	if err := run(ctx, cfg, logger, gateway, renderer); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// buildLLM returns nil when no provider is configured; the gateway then
// renders every invitation with the standard layout.
func buildLLM(cfg *config.LLMConfig) (generator.LLMClient, error) {
	if cfg == nil || cfg.Provider == "" {
		return nil, nil
	}
	settings := &generator.LLMSettings{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	switch cfg.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek exposes an OpenAI-compatible API; base_url is mandatory.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}

// renderOnce generates a single invitation from a MeetingRequest JSON file.
func renderOnce(ctx context.Context, gateway *generator.Gateway, meetingPath, outPath string) error {
	data, err := os.ReadFile(meetingPath)
	if err != nil {
		return err
	}
	var req invitation.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse %s: %w", meetingPath, err)
	}
	meeting, err := req.Normalize()
	if err != nil {
		return err
	}

	result := gateway.Generate(ctx, meeting)
	if outPath == "" {
		_, err = fmt.Fprint(os.Stdout, result.HTML)
		return err
	}
	return os.WriteFile(outPath, []byte(result.HTML), 0o644)
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, gateway *generator.Gateway, renderer *invitation.Renderer) error {
	var metrics *observability.Collector
	if cfg.Metrics.Enabled {
		metrics = observability.NewCollector("smartmeeting")
	}

	tp, err := observability.InitTracing(ctx, cfg.Tracing.ServiceName, cfg.Environment, cfg.Tracing.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	st = observability.InstrumentStore(st, metrics)
	defer st.Close()

	if cfg.Auth.SeedDemoUser {
		created, err := auth.EnsureOwner(ctx, st, auth.DemoUsername, auth.DemoEmail, auth.DemoPassword)
		if err != nil {
			return fmt.Errorf("seed demo user: %w", err)
		}
		if created {
			logger.Info("demo user created", zap.String("email", auth.DemoEmail))
		}
	}

	mailer, err := buildMailer(ctx, cfg.Mail)
	if err != nil {
		return err
	}
	if mailer == nil {
		logger.Warn("no mail transport configured, email and calendar dispatch run in demo mode")
	}
	pub := publisher.New(logger,
		publisher.NewEmailChannel(mailer, cfg.Mail.From),
		publisher.NewMessagingChannel(cfg.Messaging.WebhookURL, cfg.Messaging.APIKey, cfg.Messaging.Sender, nil),
		publisher.NewCalendarChannel(mailer, cfg.Mail.From),
	)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("auth.jwt_secret not set, using a random secret; sessions end on restart")
	}
	sessions, err := auth.NewSessions(auth.SessionConfig{
		Secret:     secret,
		Issuer:     cfg.Auth.Issuer,
		TTL:        cfg.SessionTTL(),
		CookieName: cfg.Auth.CookieName,
		Secure:     cfg.Auth.CookieSecure,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Deps{
		Store:          st,
		Gateway:        gateway,
		Renderer:       renderer,
		Publisher:      pub,
		Sessions:       sessions,
		Metrics:        metrics,
		Logger:         logger,
		Errors:         apperrors.NewHandler(logger, !cfg.IsProduction()),
		MailFrom:       cfg.Mail.From,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	if err != nil {
		return err
	}
	router := srv.Routes()

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := chiadapter.NewV2(router)
		logger.Info("starting lambda handler")
		lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return adapter.ProxyWithContextV2(ctx, req)
		})
		return nil
	}

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting web server", zap.String("addr", cfg.ServerAddr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.Database.URL == "" {
		logger.Info("DATABASE_URL not set, using in-memory store")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pg, nil
}

// buildMailer returns nil for demo mode.
func buildMailer(ctx context.Context, cfg config.MailConfig) (publisher.Mailer, error) {
	switch cfg.Transport {
	case "smtp":
		return publisher.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	case "ses":
		return publisher.NewSESMailer(ctx, cfg.SESRegion)
	default:
		return nil, nil
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
