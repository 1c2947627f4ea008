// Package forwarder classifies SES receipt notifications and resolves the
// recipient inbound mail is forwarded to.
package forwarder

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// sesNotification mirrors the SES receipt notification payload published
// to SNS.
type sesNotification struct {
	NotificationType string `json:"notificationType"`
	Mail             struct {
		MessageID string `json:"messageId"`
	} `json:"mail"`
	Receipt struct {
		Recipients []string `json:"recipients"`
		Action     struct {
			BucketName string `json:"bucketName"`
			ObjectKey  string `json:"objectKey"`
		} `json:"action"`
	} `json:"receipt"`
}

// Receipt identifies a stored inbound message and the address it was sent to.
// Only the first listed recipient is honored.
type Receipt struct {
	MessageID string
	Bucket    string
	ObjectKey string
	Recipient string
}

// Classify decodes an SNS record into a Receipt. ok is false when the record
// carries anything other than an SES "Received" notification, in which case
// the record is ignored before any business logic runs.
func Classify(record events.SNSEventRecord) (*Receipt, bool) {
	if record.EventSource != "aws:sns" {
		return nil, false
	}

	var notification sesNotification
	if err := json.Unmarshal([]byte(record.SNS.Message), &notification); err != nil {
		return nil, false
	}
	if notification.NotificationType != "Received" {
		return nil, false
	}
	if len(notification.Receipt.Recipients) == 0 {
		return nil, false
	}

	return &Receipt{
		MessageID: notification.Mail.MessageID,
		Bucket:    notification.Receipt.Action.BucketName,
		ObjectKey: notification.Receipt.Action.ObjectKey,
		Recipient: notification.Receipt.Recipients[0],
	}, true
}
