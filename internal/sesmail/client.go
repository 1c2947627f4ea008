// Package sesmail wraps the SES v2 API for raw-message forwarding and
// owner-identity verification.
package sesmail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// ErrAddressNotVerified reports a send rejected because the destination
// address has not completed identity verification. This happens while the
// sending account is still in the SES sandbox.
var ErrAddressNotVerified = errors.New("destination address not verified")

// SESAPI defines the interface for SES v2 operations.
type SESAPI interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	GetEmailIdentity(ctx context.Context, input *sesv2.GetEmailIdentityInput, opts ...func(*sesv2.Options)) (*sesv2.GetEmailIdentityOutput, error)
	CreateEmailIdentity(ctx context.Context, input *sesv2.CreateEmailIdentityInput, opts ...func(*sesv2.Options)) (*sesv2.CreateEmailIdentityOutput, error)
}

// Client sends mail and manages identity verification through SES v2.
type Client struct {
	api SESAPI
}

// NewClient creates a new Client.
func NewClient(api SESAPI) *Client {
	return &Client{api: api}
}

// SendRaw sends a raw RFC5322 message and returns the SES message id.
// A rejection caused by an unverified destination is reported as
// ErrAddressNotVerified so callers can fall back to a verified address.
func (c *Client) SendRaw(ctx context.Context, from, to string, data []byte) (string, error) {
	output, err := c.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: data},
		},
	})
	if err != nil {
		var rejected *types.MessageRejected
		if errors.As(err, &rejected) && strings.Contains(rejected.ErrorMessage(), "not verified") {
			return "", fmt.Errorf("%w: %s", ErrAddressNotVerified, to)
		}
		return "", err
	}
	return aws.ToString(output.MessageId), nil
}
