package models

import "time"

const (
	SettingMinOfferPercentage = "min_offer_percentage"

	DefaultMinOfferPercentage = 70
)

type SystemSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
