package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kalijeogo/orderfunnel/internal/awsx"
	"github.com/kalijeogo/orderfunnel/internal/config"
	"github.com/kalijeogo/orderfunnel/internal/dedup"
	"github.com/kalijeogo/orderfunnel/internal/ingest"
	"github.com/kalijeogo/orderfunnel/internal/notify"
	"github.com/kalijeogo/orderfunnel/internal/sheet"
)

func setupRouter(svc *ingest.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ingest.RegisterRoutes(r, svc)

	return r
}

func buildChannels(cfg config.Config) []notify.Notifier {
	var channels []notify.Notifier
	if cfg.EmailEnabled {
		channels = append(channels, notify.NewEmailSender(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.NotifyEmail))
	}
	if cfg.TelegramEnabled {
		channels = append(channels, notify.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	return channels
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := config.NewLogger(cfg)

	if err := cfg.ValidateNotifications(); err != nil {
		log.Fatalf("invalid notification config: %v", err)
	}

	clients, err := awsx.NewClients(ctx)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	rows := sheet.NewStore(clients.DynamoDB, cfg.OrdersTable)
	tokens, err := dedup.NewMap(ctx, dedup.NewDynamoBacking(clients.DynamoDB, cfg.DedupTable))
	if err != nil {
		log.Fatalf("failed to load dedup map: %v", err)
	}

	svc := ingest.NewService(rows, tokens, buildChannels(cfg), cfg.SheetURL, log)
	r := setupRouter(svc)

	// RUN_LOCAL=true runs a plain HTTP server for development.
	if cfg.RunLocal {
		log.Infof("running local ingest server on %s", cfg.IngestAddr)
		if err := r.Run(cfg.IngestAddr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
