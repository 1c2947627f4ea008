package sesmail

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// VerifyEmailAddress returns a message describing the verification state of
// an address. If no verification request was ever sent, one is triggered.
// Failures are folded into the message rather than returned: verification is
// best effort and must never fail the operation that requested it.
func (c *Client) VerifyEmailAddress(ctx context.Context, address string) string {
	output, err := c.api.GetEmailIdentity(ctx, &sesv2.GetEmailIdentityInput{
		EmailIdentity: aws.String(address),
	})
	if err != nil {
		var notFound *types.NotFoundException
		if errors.As(err, &notFound) {
			return c.requestVerification(ctx, address)
		}
		return fmt.Sprintf("An error was generated when attempting to get the state of verification: %s", err)
	}

	return fmt.Sprintf("A request to verify %s is in a %s state.", address, output.VerificationStatus)
}

func (c *Client) requestVerification(ctx context.Context, address string) string {
	_, err := c.api.CreateEmailIdentity(ctx, &sesv2.CreateEmailIdentityInput{
		EmailIdentity: aws.String(address),
	})
	if err != nil {
		return fmt.Sprintf("An error was generated when attempting to request verification of %s: %s", address, err)
	}
	return fmt.Sprintf("A request to verify %s has been sent, please check your email.", address)
}
