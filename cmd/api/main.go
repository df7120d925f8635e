package main

import (
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/ipaynotify/ipaynotify/internal/config"
	gateway "github.com/ipaynotify/ipaynotify/internal/gateways"
	"github.com/ipaynotify/ipaynotify/internal/handlers"
	"github.com/ipaynotify/ipaynotify/internal/notify"
	"github.com/ipaynotify/ipaynotify/internal/repository"
	"github.com/ipaynotify/ipaynotify/internal/services"
	"github.com/ipaynotify/ipaynotify/internal/sms"
	xhttp "github.com/ipaynotify/ipaynotify/pkg/http"
	"github.com/ipaynotify/ipaynotify/pkg/logger"
	"github.com/ipaynotify/ipaynotify/pkg/pg"
	"github.com/ipaynotify/ipaynotify/pkg/prom"
	"github.com/ipaynotify/ipaynotify/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	gatewayCfg := &gateway.Config{
		Providers: []gateway.ProviderConfig{
			{Name: "primary", URL: config.Get().SmsProviderPrimaryUrl, Weight: 100},
			{Name: "secondary", URL: config.Get().SmsProviderSecondaryUrl, Weight: 80},
			{Name: "backup", URL: config.Get().SmsProviderBackupUrl, Weight: 60},
		},
		Timeout:                 time.Second * 5,
		MaxRetries:              3,
		RetryDelay:              time.Millisecond * 100,
		MaxConns:                1000,
		ReadBufferSize:          1024 * 4,
		WriteBufferSize:         1024 * 4,
		HealthCheckInterval:     30 * time.Second,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   60 * time.Second,
	}
	gatewayClient, err := gateway.NewClient(gatewayCfg)
	if err != nil {
		logger.Error("failed to create sms gateway", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	// repositories
	customerRepo := repository.NewCustomerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	vendorRepo := repository.NewVendorRepository(db)

	// notification pipeline
	renderer := sms.NewRenderer(config.Get().DefaultBusinessName, config.Get().DefaultBusinessPhone, config.Get().CurrencyCode)
	normalizer := sms.NewNormalizer(config.Get().SmsCountryCode, config.Get().SmsTrunkPrefix)
	dedupe := notify.NewDedupe(redisAdap, config.Get().ReminderDedupeWindow)
	dispatcher := notify.NewDispatcher(gatewayClient, renderer, normalizer, dedupe, customerRepo, notify.DispatcherConfig{
		SenderID:   config.Get().SmsSenderID,
		MaxBodyLen: config.Get().SmsMaxBodyLen,
	})

	// services
	customerService := services.NewCustomerService(customerRepo, vendorRepo, dispatcher, normalizer)
	paymentService := services.NewPaymentService(paymentRepo, customerRepo, vendorRepo, dispatcher)
	reminderService := services.NewReminderService(customerRepo, vendorRepo, dispatcher)
	vendorService := services.NewVendorService(vendorRepo)
	healthService := services.NewHealthService(db, redisAdap)

	// v1 handlers
	customerHandler := handlers.NewCustomerHandler(customerService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	notificationHandler := handlers.NewNotificationHandler(reminderService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	gatewayHandler := handlers.NewGatewayHandler(gatewayClient)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterCustomerRoutes(g, customerHandler)
	handlers.RegisterPaymentRoutes(g, paymentHandler)
	handlers.RegisterNotificationRoutes(g, notificationHandler)
	handlers.RegisterVendorRoutes(g, vendorHandler)
	handlers.RegisterGatewayRoutes(g, gatewayHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Kill)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		gatewayClient.Close()
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
