package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kalijeogo/orderfunnel/internal/analytics"
	"github.com/kalijeogo/orderfunnel/internal/config"
	"github.com/kalijeogo/orderfunnel/internal/proxy"
)

func setupRouter(f *proxy.Forwarder, tracker *analytics.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(proxy.CORSMiddleware())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	proxy.RegisterRoutes(r, f, tracker)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	log := config.NewLogger(cfg)

	policy := proxy.Policy{
		OptimisticAcknowledgment: true,
		Timeout:                  cfg.ForwardTimeout,
		RetryPause:               cfg.RetryPause,
	}

	f := proxy.NewForwarder(cfg.IngestURL, policy, log)
	tracker := analytics.New(cfg.AnalyticsURL, log)
	r := setupRouter(f, tracker)

	// RUN_LOCAL=true runs a plain HTTP server for development.
	if cfg.RunLocal {
		log.Infof("running local proxy server on %s", cfg.ProxyAddr)
		if err := r.Run(cfg.ProxyAddr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
