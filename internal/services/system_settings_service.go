package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"marketBack/internal/models"
)

var hundred = decimal.NewFromInt(100)

type SystemSettingsService struct {
	Repo SettingsStore
}

// MinOfferPercentage returns the configured minimum offer as a percentage of
// the asking price. A missing or unusable value yields the default of 70.
func (s *SystemSettingsService) MinOfferPercentage(ctx context.Context) (decimal.Decimal, error) {
	raw, ok, err := s.Repo.GetSetting(ctx, models.SettingMinOfferPercentage)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("get min offer percentage: %w", err)
	}
	if !ok {
		return decimal.NewFromInt(models.DefaultMinOfferPercentage), nil
	}
	pct, err := parsePercentage(raw)
	if err != nil {
		return decimal.NewFromInt(models.DefaultMinOfferPercentage), nil
	}
	return pct, nil
}

func (s *SystemSettingsService) GetAll(ctx context.Context) ([]models.SystemSetting, error) {
	return s.Repo.GetAllSettings(ctx)
}

func (s *SystemSettingsService) Update(ctx context.Context, key, value string) (models.SystemSetting, error) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return models.SystemSetting{}, models.Reject("Setting key is required.")
	}
	if key == models.SettingMinOfferPercentage {
		pct, err := parsePercentage(value)
		if err != nil {
			return models.SystemSetting{}, models.Reject("Minimum offer percentage must be a number greater than 0 and at most 100.")
		}
		value = pct.String()
	}
	return s.Repo.UpsertSetting(ctx, key, value)
}

// parsePercentage accepts numbers in (0, 100].
func parsePercentage(raw string) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, models.ErrSettingInvalid
	}
	if !pct.IsPositive() || pct.GreaterThan(hundred) {
		return decimal.Decimal{}, models.ErrSettingInvalid
	}
	return pct, nil
}
