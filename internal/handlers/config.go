package handlers

import (
	"log/slog"
	"time"

	"github.com/tabledine/tabledine/internal/aws"
	"github.com/tabledine/tabledine/internal/cache"
)

// HandlerConfig groups dependencies for the HTTP handlers.
type HandlerConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	SQSClient      aws.SQSAPI

	OrdersTable  string
	CatalogTable string
	TablesTable  string
	HelpTable    string
	BasketTable  string

	QueueURL string

	Cache        cache.Cache
	MenuCacheTTL time.Duration

	// FrontendBaseURL is what table QR codes point at.
	FrontendBaseURL string

	Logger *slog.Logger
}

func (cfg HandlerConfig) log() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}
