// Package main implements the account-vend Lambda handler.
// This Lambda vends a fresh "account name + email address" pair for a new
// AWS account being provisioned, records it in the account directory, and
// requests verification of the owner's address.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda/xrayconfig"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel"

	"github.com/opsfactory/account-mail-service/internal/allocator"
	"github.com/opsfactory/account-mail-service/internal/directory"
	"github.com/opsfactory/account-mail-service/internal/sesmail"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: logLevel(),
}))

func logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// AccountAllocator vends a unique account name and email for a provisioning
// request.
type AccountAllocator interface {
	Allocate(ctx context.Context, req *allocator.Request) (*allocator.Result, error)
}

// handler implements the account vending logic.
type handler struct {
	alloc      AccountAllocator
	apiVersion string
}

// newHandler creates a new handler.
func newHandler(alloc AccountAllocator, apiVersion string) *handler {
	return &handler{
		alloc:      alloc,
		apiVersion: apiVersion,
	}
}

// handle processes one provisioning request. Failures of every kind are
// reported through the 500 envelope; the Lambda invocation itself never
// errors.
func (h *handler) handle(ctx context.Context, event json.RawMessage) (allocator.Response, error) {
	tracer := otel.Tracer("account-vend")
	ctx, span := tracer.Start(ctx, "AccountVendHandler")
	defer span.End()

	var req allocator.Request
	if err := json.Unmarshal(event, &req); err != nil {
		logger.InfoContext(ctx, "Rejected malformed request", slog.String("error", err.Error()))
		return allocator.FailureResponse(h.apiVersion, "request is not a valid provisioning payload: "+err.Error()), nil
	}

	result, err := h.alloc.Allocate(ctx, &req)
	if err != nil {
		h.logFailure(ctx, &req, err)
		return allocator.FailureResponse(h.apiVersion, err.Error()), nil
	}

	logger.InfoContext(ctx, "Allocated account",
		slog.String("account_name", result.AccountName),
		slog.String("account_email", result.AccountEmail),
		slog.String("account_type", result.AccountType),
	)
	return allocator.SuccessResponse(h.apiVersion, result), nil
}

func (h *handler) logFailure(ctx context.Context, req *allocator.Request, err error) {
	var validation *allocator.ValidationError
	var collision *allocator.CollisionError
	switch {
	case errors.As(err, &validation):
		logger.InfoContext(ctx, "Rejected invalid request", slog.String("error", err.Error()))
	case errors.As(err, &collision):
		logger.InfoContext(ctx, "Rejected colliding request", slog.String("error", err.Error()))
	default:
		logger.ErrorContext(ctx, "Failed to allocate account",
			slog.String("owner_address", req.OwnerAddress),
			slog.String("error", err.Error()),
		)
	}
}

func main() {
	ctx := context.Background()

	tp, err := xrayconfig.NewTracerProvider(ctx)
	if err != nil {
		logger.Error("FATAL: Failed to initialize tracer provider", slog.String("error", err.Error()))
		panic(err)
	}
	otel.SetTracerProvider(tp)

	tableName := os.Getenv("TABLE_NAME")
	domain := os.Getenv("SES_DOMAIN_NAME")
	apiVersion := os.Getenv("API_VERSION")

	counterWidth := allocator.DefaultCounterWidth
	if v := os.Getenv("COUNTER_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("FATAL: COUNTER_LENGTH is not a number", slog.String("value", v))
			panic(err)
		}
		counterWidth = n
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("FATAL: Failed to load AWS config", slog.String("error", err.Error()))
		panic(err)
	}

	// Instrument AWS SDK clients with OTel tracing
	otelaws.AppendMiddlewares(&cfg.APIOptions)

	repo := directory.NewDynamoDBRepository(dynamodb.NewFromConfig(cfg), tableName)
	verifier := sesmail.NewClient(sesv2.NewFromConfig(cfg))
	alloc := allocator.New(repo, verifier, allocator.Config{
		Domain:       domain,
		CounterWidth: counterWidth,
	})

	h := newHandler(alloc, apiVersion)
	lambda.Start(otellambda.InstrumentHandler(h.handle, xrayconfig.WithRecommendedOptions(tp)...))
}
