package allocator

import (
	"context"
	"testing"

	"github.com/opsfactory/account-mail-service/internal/directory"
)

func TestFormatSequence(t *testing.T) {
	tests := []struct {
		width int
		n     int
		want  string
	}{
		{3, 1, "001"},
		{3, 42, "042"},
		{3, 1000, "1000"},
		{5, 7, "00007"},
	}
	for _, tt := range tests {
		a := New(newFakeDirectory(), &fakeVerifier{}, Config{Domain: "example.com", CounterWidth: tt.width})
		if got := a.formatSequence(tt.n); got != tt.want {
			t.Errorf("formatSequence(%d) with width %d = %q, want %q", tt.n, tt.width, got, tt.want)
		}
	}
}

func TestTranslateEnvironment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PRODUCTION", "prod"},
		{"DEVELOPMENT", "dev"},
		{"QUALITYASSURANCE", "qa"},
		{"", "eval"},
		{"SOMETHINGELSE", "eval"},
	}
	for _, tt := range tests {
		if got := translateEnvironment(tt.in); got != tt.want {
			t.Errorf("translateEnvironment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveBaseName(t *testing.T) {
	base := deriveBaseName(RequestTags{
		BusinessUnit:    "Finance",
		ApplicationName: "Billing",
		Environment:     "PRODUCTION",
	})
	if base != "finance-billing-prod" {
		t.Errorf("deriveBaseName() = %q, want %q", base, "finance-billing-prod")
	}
}

func TestSplitFullName(t *testing.T) {
	base, enum, err := splitFullName("finance-billing-prod-001")
	if err != nil {
		t.Fatalf("splitFullName() error = %v", err)
	}
	if base != "finance-billing-prod" || enum != "001" {
		t.Errorf("splitFullName() = %q, %q", base, enum)
	}

	for _, bad := range []string{"nosequence", "trailing-", "-leading"} {
		if _, _, err := splitFullName(bad); err == nil {
			t.Errorf("splitFullName(%q) did not fail", bad)
		}
	}
}

func TestNextSequence_IgnoresOtherBases(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory(
		&directory.AccountRecord{
			AccountEmail: "finance-billing-prod-003@example.com",
			AccountName:  "finance-billing-prod",
			Enum:         "003",
		},
		&directory.AccountRecord{
			AccountEmail: "finance-payroll-prod-009@example.com",
			AccountName:  "finance-payroll-prod",
			Enum:         "009",
		},
	)
	a := New(dir, &fakeVerifier{}, Config{Domain: "example.com"})

	got, err := a.nextSequence(ctx, "finance-billing-prod")
	if err != nil {
		t.Fatalf("nextSequence() error = %v", err)
	}
	if got != "004" {
		t.Errorf("nextSequence() = %q, want %q", got, "004")
	}
}
