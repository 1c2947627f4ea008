package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/opsfactory/account-mail-service/internal/allocator"
)

// mockAllocator implements AccountAllocator for testing.
type mockAllocator struct {
	allocateFunc func(ctx context.Context, req *allocator.Request) (*allocator.Result, error)
}

func (m *mockAllocator) Allocate(ctx context.Context, req *allocator.Request) (*allocator.Result, error) {
	if m.allocateFunc != nil {
		return m.allocateFunc(ctx, req)
	}
	return &allocator.Result{}, nil
}

func TestHandle_Success(t *testing.T) {
	ctx := context.Background()

	mock := &mockAllocator{
		allocateFunc: func(ctx context.Context, req *allocator.Request) (*allocator.Result, error) {
			if req.OwnerAddress != "owner@sample.example.com" {
				t.Errorf("OwnerAddress = %q", req.OwnerAddress)
			}
			if req.Tags.BusinessUnit != "finance" {
				t.Errorf("BusinessUnit = %q", req.Tags.BusinessUnit)
			}
			return &allocator.Result{
				AccountName:       "finance-billing-prod-001",
				AccountEmail:      "finance-billing-prod-001@example.com",
				AccountType:       "Sales",
				EmailVerification: "A request to verify owner@sample.example.com has been sent, please check your email.",
			}, nil
		},
	}

	h := newHandler(mock, "2024-06-01")
	response, err := h.handle(ctx, json.RawMessage(`{
		"OwnerAddress": "owner@sample.example.com",
		"AccountType": "Sales",
		"Tags": {
			"BusinessUnit": "finance",
			"ApplicationName": "billing",
			"Environment": "PRODUCTION",
			"CostCenter": "ignored"
		}
	}`))

	if err != nil {
		t.Fatalf("handle() error = %v", err)
	}
	if response.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", response.StatusCode)
	}
	if response.Body["AccountName"] != "finance-billing-prod-001" {
		t.Errorf("AccountName = %v", response.Body["AccountName"])
	}
	if response.Body["AccountEmail"] != "finance-billing-prod-001@example.com" {
		t.Errorf("AccountEmail = %v", response.Body["AccountEmail"])
	}
	if response.Headers["x-api-version"] != "2024-06-01" {
		t.Errorf("x-api-version = %q", response.Headers["x-api-version"])
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	ctx := context.Background()

	h := newHandler(&mockAllocator{}, "2024-06-01")
	response, err := h.handle(ctx, json.RawMessage(`{"Tags": "not an object"}`))

	if err != nil {
		t.Fatalf("handle() error = %v", err)
	}
	if response.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", response.StatusCode)
	}
	if response.Body["message"] == nil {
		t.Error("failure body carries no message")
	}
}

func TestHandle_AllocationFailure(t *testing.T) {
	ctx := context.Background()

	mock := &mockAllocator{
		allocateFunc: func(ctx context.Context, req *allocator.Request) (*allocator.Result, error) {
			return nil, &allocator.CollisionError{
				Message: "An account with email finance-billing-prod-001@example.com already exists",
			}
		},
	}

	h := newHandler(mock, "")
	response, err := h.handle(ctx, json.RawMessage(`{
		"OwnerAddress": "owner@sample.example.com",
		"AccountType": "Sales",
		"Tags": {"BusinessUnit": "finance", "ApplicationName": "billing"}
	}`))

	if err != nil {
		t.Fatalf("handle() error = %v", err)
	}
	if response.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", response.StatusCode)
	}
	if response.Body["message"] != "An account with email finance-billing-prod-001@example.com already exists" {
		t.Errorf("message = %v", response.Body["message"])
	}
	// The api version header is present even when unconfigured.
	if response.Headers["x-api-version"] != "<UNKNOWN>" {
		t.Errorf("x-api-version = %q", response.Headers["x-api-version"])
	}
}

func TestHandle_InternalErrorStillWrapped(t *testing.T) {
	ctx := context.Background()

	mock := &mockAllocator{
		allocateFunc: func(ctx context.Context, req *allocator.Request) (*allocator.Result, error) {
			return nil, errors.New("storing account record: dynamodb unavailable")
		},
	}

	h := newHandler(mock, "2024-06-01")
	response, err := h.handle(ctx, json.RawMessage(`{
		"OwnerAddress": "owner@sample.example.com",
		"AccountType": "Sales",
		"Tags": {"BusinessUnit": "finance", "ApplicationName": "billing"}
	}`))

	if err != nil {
		t.Fatalf("handle() error = %v, the envelope must carry failures", err)
	}
	if response.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", response.StatusCode)
	}
}
