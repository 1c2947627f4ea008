package allocator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// envTranslate maps the Environment tag to the short form used in account
// names. Unknown or absent environments fall back to defaultEnvironment.
var envTranslate = map[string]string{
	"DEVELOPMENT":      "dev",
	"EVALUATION":       "eval",
	"PRODUCTION":       "prod",
	"QUALITYASSURANCE": "qa",
	"TRAINING":         "trn",
	"VALIDATION":       "val",
}

const defaultEnvironment = "eval"

// translateEnvironment returns the short form for an environment tag value.
func translateEnvironment(environment string) string {
	if short, ok := envTranslate[environment]; ok {
		return short
	}
	return defaultEnvironment
}

// deriveBaseName builds the candidate base name from the request tags.
func deriveBaseName(tags RequestTags) string {
	return strings.Join([]string{
		strings.ToLower(tags.BusinessUnit),
		strings.ToLower(tags.ApplicationName),
		translateEnvironment(tags.Environment),
	}, "-")
}

// formatSequence renders a sequence number as a fixed-width, zero-padded
// decimal string.
func (a *Allocator) formatSequence(n int) string {
	return fmt.Sprintf("%0*d", a.counterWidth, n)
}

// nextSequence returns one more than the highest sequence currently allocated
// for the base name, or 1 when no records exist.
func (a *Allocator) nextSequence(ctx context.Context, baseName string) (string, error) {
	records, err := a.repo.GetByNamePrefix(ctx, baseName)
	if err != nil {
		return "", fmt.Errorf("querying records for base name %q: %w", baseName, err)
	}

	highest := 0
	for _, record := range records {
		n, err := strconv.Atoi(record.Enum)
		if err != nil {
			return "", fmt.Errorf("record %q carries a non-numeric sequence %q: %w", record.AccountEmail, record.Enum, err)
		}
		if n > highest {
			highest = n
		}
	}
	return a.formatSequence(highest + 1), nil
}

// splitFullName splits a full account name into its base name and trailing
// sequence.
func splitFullName(fullName string) (baseName, enum string, err error) {
	idx := strings.LastIndex(fullName, "-")
	if idx <= 0 || idx == len(fullName)-1 {
		return "", "", fmt.Errorf("account name %q has no trailing sequence", fullName)
	}
	return fullName[:idx], fullName[idx+1:], nil
}
