package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"clubhub-backend/infrastructure/config"
	"clubhub-backend/infrastructure/di"
	"clubhub-backend/pkg/observability"
)

var (
	chiLambda     *chiadapter.ChiLambdaV2
	container     *di.Container
	coldStart     = true
	coldStartTime time.Time
)

// init runs once per execution environment
func init() {
	coldStartTime = time.Now()
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if _, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Observability.EnableTracing,
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		SampleRate:  cfg.Observability.TraceSampleRate,
	}); err != nil {
		container.Logger.Error("Tracing disabled", zap.Error(err))
	}

	// The environment is frozen between invocations, so this only runs while thawed.
	go container.Authorization.Start(ctx)

	chiLambda = chiadapter.NewV2(container.Router.Setup())

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)))
}

// Handler is the Lambda function handler. The API Gateway JWT authorizer
// has verified the caller; its claims travel in the request context.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	container.Logger.Debug("Lambda response",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("requestID", req.RequestContext.RequestID),
		zap.Int("status", resp.StatusCode),
		zap.Bool("coldStart", coldStart))
	coldStart = false

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
