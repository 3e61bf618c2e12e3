package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/avbykov/printbridge/config"
	"github.com/avbykov/printbridge/internal/adapters/cache"
	"github.com/avbykov/printbridge/internal/adapters/logger"
	"github.com/avbykov/printbridge/internal/adapters/messaging"
	"github.com/avbykov/printbridge/internal/adapters/printqueue"
	"github.com/avbykov/printbridge/internal/adapters/storage"
	"github.com/avbykov/printbridge/internal/api"
	"github.com/avbykov/printbridge/internal/domain/services"
	"github.com/avbykov/printbridge/internal/interfaces"
	"github.com/avbykov/printbridge/internal/security"
	"github.com/avbykov/printbridge/internal/utils"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	postgresCon, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.Postgres.PoolSize,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		fmt.Printf("Ошибка инициализации строки подключения базы: %v\n", err)
		os.Exit(1)
	}

	db, err := storage.NewPostgresStorage(ctx, postgresCon)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer db.Close()
	log.Info("Хранилище инициализировано")

	cacheClient, err := cache.NewRedisCache(
		ctx,
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer cacheClient.Close()
	log.Info("Кэш инициализирован")

	var messagingClient interfaces.MessagingPort
	if cfg.Kafka.Enabled {
		messagingClient, err = messaging.NewKafkaMessaging(strings.Join(cfg.Kafka.Brokers, ","))
		if err != nil {
			log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("Система обмена сообщениями инициализирована")
	} else {
		messagingClient = messaging.NewNopMessaging()
		log.Info("Обмен сообщениями отключен конфигурацией")
	}
	defer messagingClient.Close()

	queueClient, err := printqueue.NewClient(cfg.PrintQueue.BaseURL, cfg.PrintQueue.APIKey, cfg.PrintQueue.CallTimeout)
	if err != nil {
		log.Fatal("Ошибка инициализации клиента очереди печати", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Клиент очереди печати инициализирован",
		interfaces.LogField{Key: "base_url", Value: cfg.PrintQueue.BaseURL})

	groupCache := printqueue.NewGroupCache(
		queueClient,
		db,
		log,
		printqueue.SystemClock(),
		cfg.PrintQueue.GroupTTL,
		cfg.PrintQueue.GroupName,
	)

	jwtManager, err := security.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.JWTExpiration, cfg.AppName)
	if err != nil {
		log.Fatal("Ошибка инициализации менеджера токенов", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	authService := security.NewStaticAuthService(cfg.Security.OperatorUser, cfg.Security.OperatorPassword)

	mappingResolver := services.NewMappingResolver(db, cacheClient, log, cfg.Redis.DefaultExpiration)
	fileResolver := services.NewFileResolver(queueClient, log)
	mappingService := services.NewMappingService(db, cacheClient, log)
	pipelineService := services.NewPipelineService(mappingResolver, fileResolver, queueClient, groupCache, db, messagingClient, log)
	suggestService := services.NewSuggestService(queueClient, fileResolver, log, cfg.Suggest.FanOut, cfg.Suggest.MaxResults)
	unmatchedService := services.NewUnmatchedService(db, fileResolver, queueClient, groupCache, mappingService, log)
	settingsService := services.NewSettingsService(db, groupCache, log)
	log.Info("Сервисы инициализированы")

	router := api.SetupRouter(api.RouterDeps{
		Pipeline:           pipelineService,
		Suggest:            suggestService,
		Mappings:           mappingService,
		Unmatched:          unmatchedService,
		Settings:           settingsService,
		Auth:               authService,
		JWTManager:         jwtManager,
		Logger:             log,
		CORSAllowedOrigins: cfg.Security.CORSAllowOrigins,
	})
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatal("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		log.Info("HTTP сервер остановлен")

		log.Info("Закрытие соединений с зависимостями...")

		if err := messagingClient.Close(); err != nil {
			log.Error("Ошибка при закрытии Kafka",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if err := cacheClient.Close(); err != nil {
			log.Error("Ошибка при закрытии Redis",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if err := db.Close(); err != nil {
			log.Error("Ошибка при закрытии БД",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		close(done)
	}()

	<-done
	log.Info("Сервер корректно завершил работу")
}
