package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/NEXESMISSION/mizeni/config"
	"github.com/NEXESMISSION/mizeni/internal/clients"
	"github.com/NEXESMISSION/mizeni/internal/delivery"
	"github.com/NEXESMISSION/mizeni/internal/domain"
	"github.com/NEXESMISSION/mizeni/internal/middleware"
	"github.com/NEXESMISSION/mizeni/internal/repository"
	"github.com/NEXESMISSION/mizeni/internal/usecase"
	"github.com/NEXESMISSION/mizeni/pkg/db"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting POS Service...")

	// --- Store selection ---
	// A configured Postgres connection takes the transactional checkout
	// path; otherwise products and sales go through the REST backend.
	var productStore domain.ProductStore
	var saleStore domain.SaleStore

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("FATAL: Failed to connect to database: %v", err)
		}
		defer database.Close()
		logger.Info("Database connection established.")

		productStore = repository.NewPostgresProductRepository(database, logger)
		saleStore = repository.NewPostgresSaleRepository(database, logger)
		logger.Info("Postgres repositories initialized.")
	} else {
		backend := clients.NewBackendRESTClient(cfg.BackendURL, cfg.BackendAPIKey, 10*time.Second, logger)
		productStore = backend
		saleStore = backend
		logger.Infof("REST backend client initialized for target: %s", cfg.BackendURL)
	}

	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = cfg.BackendURL
	}
	if authURL == "" {
		logger.Fatal("FATAL: Auth provider URL is not configured. Set AUTH_URL or BACKEND_URL.")
	}
	authClient := clients.NewAuthHTTPClient(authURL, cfg.BackendAPIKey, 5*time.Second, logger)

	storageURL := cfg.StorageURL
	if storageURL == "" {
		storageURL = cfg.BackendURL
	}
	storageClient := clients.NewStorageHTTPClient(storageURL, cfg.BackendAPIKey, cfg.StorageBucket, 15*time.Second, logger)
	logger.Info("Auth and storage clients initialized.")

	// --- Dependency Injection ---
	productUseCase := usecase.NewProductUseCase(productStore, storageClient, logger)
	checkoutUseCase := usecase.NewCheckoutUseCase(saleStore, productStore, logger)
	reportUseCase := usecase.NewReportUseCase(saleStore, productStore, logger)
	logger.Info("Use cases initialized.")

	productHandler := delivery.NewProductHandler(productUseCase, logger)
	checkoutHandler := delivery.NewCheckoutHandler(checkoutUseCase, productUseCase, logger)
	reportHandler := delivery.NewReportHandler(reportUseCase, logger)
	logger.Info("Handlers initialized.")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	api := router.Group("/")
	api.Use(middleware.AuthMiddleware(authClient, logger))

	productHandler.RegisterRoutes(api)
	checkoutHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	logger.Info("Routes registered.")

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Errorf("Failed to start server on port %s: %v", cfg.Port, err)
		os.Exit(1)
	}
}
