// Package main implements the mail-forward Lambda handler.
// This Lambda listens to SES receipt notifications on SNS, resolves the
// account owner for the addressed recipient, and re-sends the stored message
// from the trusted forwarding address.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda/xrayconfig"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
	"go.opentelemetry.io/otel"

	"github.com/opsfactory/account-mail-service/internal/directory"
	"github.com/opsfactory/account-mail-service/internal/forwarder"
	"github.com/opsfactory/account-mail-service/internal/mailstore"
	"github.com/opsfactory/account-mail-service/internal/rewrite"
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

// OwnerDirectory looks up the registered owner of an account email.
type OwnerDirectory interface {
	GetOwnerAddress(ctx context.Context, accountEmail string) (string, error)
}

// MailFetcher loads a stored raw message.
type MailFetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// MailSender sends a raw message.
type MailSender interface {
	SendRaw(ctx context.Context, from, to string, data []byte) (string, error)
}

// handler implements the mail forwarding logic.
type handler struct {
	directory OwnerDirectory
	store     MailFetcher
	sender    MailSender
	resolver  forwarder.Resolver
}

// newHandler creates a new handler.
func newHandler(dir OwnerDirectory, store MailFetcher, sender MailSender, resolver forwarder.Resolver) *handler {
	return &handler{
		directory: dir,
		store:     store,
		sender:    sender,
		resolver:  resolver,
	}
}

// handle processes an SNS event carrying SES receipt notifications.
func (h *handler) handle(ctx context.Context, event events.SNSEvent) error {
	tracer := otel.Tracer("mail-forward")
	ctx, span := tracer.Start(ctx, "MailForwardHandler")
	defer span.End()

	for _, record := range event.Records {
		receipt, ok := forwarder.Classify(record)
		if !ok {
			logger.InfoContext(ctx, "Ignoring record without a received-mail notification",
				slog.String("event_source", record.EventSource),
			)
			continue
		}

		if err := h.forward(ctx, receipt); err != nil {
			logger.ErrorContext(ctx, "Failed to forward message",
				slog.String("message_id", receipt.MessageID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// forward resolves the recipient for one stored message and re-sends it.
func (h *handler) forward(ctx context.Context, receipt *forwarder.Receipt) error {
	logger.InfoContext(ctx, "Received message",
		slog.String("message_id", receipt.MessageID),
		slog.String("mail_to", receipt.Recipient),
	)

	raw, err := h.store.Fetch(ctx, receipt.Bucket, receipt.ObjectKey)
	if err != nil {
		return err
	}

	accountOwner, err := h.directory.GetOwnerAddress(ctx, receipt.Recipient)
	if err != nil {
		return err
	}

	sendTo, ok := h.resolver.Resolve(receipt.Recipient, accountOwner)
	if !ok {
		logger.InfoContext(ctx, "Unable to determine the proper recipient, dropping message",
			slog.String("message_id", receipt.MessageID),
			slog.String("mail_to", receipt.Recipient),
		)
		return nil
	}

	messageID, err := h.send(ctx, raw, sendTo)
	if errors.Is(err, sesmail.ErrAddressNotVerified) {
		// One fallback resend to the admin, no further retries.
		logger.WarnContext(ctx, "Recipient is not verified, re-sending to admin",
			slog.String("send_to", sendTo),
			slog.String("admin", h.resolver.AdminAddress),
		)
		messageID, err = h.send(ctx, raw, h.resolver.AdminAddress)
	}
	if err != nil {
		// Delivery failures have no synchronous caller to surface to.
		logger.ErrorContext(ctx, "Failed to send message",
			slog.String("message_id", receipt.MessageID),
			slog.String("send_to", sendTo),
			slog.String("error", err.Error()),
		)
		return nil
	}

	logger.InfoContext(ctx, "Forwarded message",
		slog.String("message_id", messageID),
		slog.String("send_to", sendTo),
		slog.String("subject", rewrite.Subject(raw)),
	)
	return nil
}

func (h *handler) send(ctx context.Context, raw []byte, to string) (string, error) {
	message, err := rewrite.Rewrite(raw, h.resolver.FromAddress, to)
	if err != nil {
		return "", err
	}
	return h.sender.SendRaw(ctx, h.resolver.FromAddress, to, message)
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
	resolver := forwarder.Resolver{
		FromAddress:     os.Getenv("ADDRESS_FROM"),
		AdminAddress:    os.Getenv("ADDRESS_ADMIN"),
		DisableCatchAll: os.Getenv("DISABLE_CATCH_ALL") != "",
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("FATAL: Failed to load AWS config", slog.String("error", err.Error()))
		panic(err)
	}

	// Instrument AWS SDK clients with OTel tracing
	otelaws.AppendMiddlewares(&cfg.APIOptions)

	repo := directory.NewDynamoDBRepository(dynamodb.NewFromConfig(cfg), tableName)
	store := mailstore.NewStore(s3.NewFromConfig(cfg))
	sender := sesmail.NewClient(sesv2.NewFromConfig(cfg))

	h := newHandler(repo, store, sender, resolver)
	lambda.Start(otellambda.InstrumentHandler(h.handle, xrayconfig.WithRecommendedOptions(tp)...))
}
