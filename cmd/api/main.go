package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/tabledine/tabledine/internal/aws"
	"github.com/tabledine/tabledine/internal/cache"
	"github.com/tabledine/tabledine/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterCatalogRoutes(r, cfg)
	handlers.RegisterTableRoutes(r, cfg)
	handlers.RegisterBasketRoutes(r, cfg)
	handlers.RegisterOrderRoutes(r, cfg)
	handlers.RegisterHelpRoutes(r, cfg)

	return r
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:  clients.DynamoDB,
		SQSClient:       clients.SQS,
		OrdersTable:     os.Getenv("ORDERS_TABLE"),
		CatalogTable:    os.Getenv("CATALOG_TABLE"),
		TablesTable:     os.Getenv("TABLES_TABLE"),
		HelpTable:       os.Getenv("HELP_TABLE"),
		BasketTable:     os.Getenv("BASKET_TABLE"),
		QueueURL:        os.Getenv("ORDERS_QUEUE_URL"),
		MenuCacheTTL:    5 * time.Minute,
		FrontendBaseURL: os.Getenv("FRONTEND_BASE_URL"),
		Logger:          logger,
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Cache = cache.NewRedisCache(addr, "tabledine")
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
