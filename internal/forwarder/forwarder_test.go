package forwarder

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

const receivedMessage = `{
	"notificationType": "Received",
	"mail": {"messageId": "abc123"},
	"receipt": {
		"recipients": ["finance-billing-prod-001@example.com", "second@example.com"],
		"action": {"bucketName": "incoming-mail", "objectKey": "abc123"}
	}
}`

func snsRecord(message string) events.SNSEventRecord {
	return events.SNSEventRecord{
		EventSource: "aws:sns",
		SNS:         events.SNSEntity{Message: message},
	}
}

func TestClassify_ReceivedNotification(t *testing.T) {
	receipt, ok := Classify(snsRecord(receivedMessage))
	if !ok {
		t.Fatal("Classify() rejected a received-mail notification")
	}
	if receipt.MessageID != "abc123" {
		t.Errorf("MessageID = %q", receipt.MessageID)
	}
	if receipt.Bucket != "incoming-mail" || receipt.ObjectKey != "abc123" {
		t.Errorf("Bucket/ObjectKey = %q/%q", receipt.Bucket, receipt.ObjectKey)
	}
	// Only the first listed recipient is honored.
	if receipt.Recipient != "finance-billing-prod-001@example.com" {
		t.Errorf("Recipient = %q", receipt.Recipient)
	}
}

func TestClassify_Ignored(t *testing.T) {
	tests := []struct {
		name   string
		record events.SNSEventRecord
	}{
		{
			name: "non-sns source",
			record: events.SNSEventRecord{
				EventSource: "aws:sqs",
				SNS:         events.SNSEntity{Message: receivedMessage},
			},
		},
		{
			name:   "bounce notification",
			record: snsRecord(`{"notificationType": "Bounce"}`),
		},
		{
			name:   "no recipients",
			record: snsRecord(`{"notificationType": "Received", "receipt": {"recipients": []}}`),
		},
		{
			name:   "not json",
			record: snsRecord("plain text"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := Classify(tt.record); ok {
				t.Error("Classify() accepted the record")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	resolver := Resolver{
		FromAddress:  "noreply@example.com",
		AdminAddress: "admin@example.com",
	}

	tests := []struct {
		name    string
		mailTo  string
		owner   string
		want    string
		wantOK  bool
		noCatch bool
	}{
		{
			name:   "owner found",
			mailTo: "finance-billing-prod-001@example.com",
			owner:  "owner@example.com",
			want:   "owner@example.com",
			wantOK: true,
		},
		{
			// Mail to the system's own from-address always goes to the
			// admin, even when a record exists for it.
			name:   "from address routes to admin",
			mailTo: "noreply@example.com",
			owner:  "owner@example.com",
			want:   "admin@example.com",
			wantOK: true,
		},
		{
			name:   "unmatched falls back to admin",
			mailTo: "nobody@example.com",
			want:   "admin@example.com",
			wantOK: true,
		},
		{
			name:    "unmatched dropped when catch-all disabled",
			mailTo:  "nobody@example.com",
			noCatch: true,
			wantOK:  false,
		},
		{
			name:    "owner still wins when catch-all disabled",
			mailTo:  "finance-billing-prod-001@example.com",
			owner:   "owner@example.com",
			noCatch: true,
			want:    "owner@example.com",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolver
			r.DisableCatchAll = tt.noCatch
			got, ok := r.Resolve(tt.mailTo, tt.owner)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
