package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.PasswordCost < 4 || c.Auth.PasswordCost > 31 {
		return fmt.Errorf("auth.password_cost must be between 4 and 31 (got %d)", c.Auth.PasswordCost)
	}

	if c.Server.LoginRateLimit <= 0 {
		return fmt.Errorf("server.login_rate_limit must be > 0 (got %d)", c.Server.LoginRateLimit)
	}

	if err := c.Claims.validate(); err != nil {
		return fmt.Errorf("claims: %w", err)
	}

	if err := c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	return nil
}

// Column widths of claims.period, claims.description and feedback.message.
const (
	periodColumnWidth      = 50
	descriptionColumnWidth = 200
	feedbackColumnWidth    = 1000
)

func (c *ClaimsConfig) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.DefaultHourlyRate))
	if err != nil {
		return fmt.Errorf("default_hourly_rate: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("default_hourly_rate must be >= 0 (got %s)", rate)
	}
	if c.MaxHoursPerClaim <= 0 {
		return fmt.Errorf("max_hours_per_claim must be > 0 (got %d)", c.MaxHoursPerClaim)
	}
	if c.MaxPeriodLength <= 0 || c.MaxPeriodLength > periodColumnWidth {
		return fmt.Errorf("max_period_length must be between 1 and %d (got %d)", periodColumnWidth, c.MaxPeriodLength)
	}
	if c.MaxDescription <= 0 || c.MaxDescription > descriptionColumnWidth {
		return fmt.Errorf("max_description must be between 1 and %d (got %d)", descriptionColumnWidth, c.MaxDescription)
	}
	if c.MaxFeedbackLength <= 0 || c.MaxFeedbackLength > feedbackColumnWidth {
		return fmt.Errorf("max_feedback_length must be between 1 and %d (got %d)", feedbackColumnWidth, c.MaxFeedbackLength)
	}
	return nil
}

// HourlyRate returns the parsed default rate. Validate must have succeeded.
func (c ClaimsConfig) HourlyRate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.DefaultHourlyRate))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (s *StorageConfig) validate() error {
	if strings.TrimSpace(s.RootDir) == "" {
		return fmt.Errorf("root_dir is required")
	}
	if s.MaxDocumentBytes <= 0 {
		return fmt.Errorf("max_document_bytes must be > 0 (got %d)", s.MaxDocumentBytes)
	}

	exts, err := ParseExtensions(s.AllowedExtensionsRaw)
	if err != nil {
		return fmt.Errorf("allowed_extensions: %w", err)
	}
	if len(exts) == 0 {
		return fmt.Errorf("allowed_extensions must list at least one extension")
	}
	s.AllowedExtensions = exts

	return nil
}

// ParseExtensions parses a comma-separated list such as ".pdf,.PNG" into
// lower-cased extensions. An empty string returns a nil slice.
func ParseExtensions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") || len(p) < 2 {
			return nil, fmt.Errorf("invalid extension %q: must start with a dot", p)
		}
		exts = append(exts, p)
	}

	return exts, nil
}
