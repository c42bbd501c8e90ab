package types

import (
	"time"

	"github.com/google/uuid"
)

// Plan is a purchasable subscription tier shown in the pricing catalog.
// Only plans with Active=true are displayed or eligible as the default
// trial plan for new signups.
type Plan struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name" example:"Profissional"`
	PriceMonthly    float64   `json:"price_monthly" example:"49.9"`
	PriceSemiannual float64   `json:"price_semiannual" example:"269.9"`
	PriceAnnual     float64   `json:"price_annual" example:"479.9"`
	Features        []string  `json:"features"` // Order is significant for display.
	Color           string    `json:"color,omitempty" example:"#6C5CE7"`
	Icon            string    `json:"icon,omitempty" example:"shield"`
	Active          bool      `json:"active"`
	Popular         bool      `json:"popular"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreatePlanParams is the admin payload for creating a plan.
type CreatePlanParams struct {
	Name            string   `json:"name" validate:"required"`
	PriceMonthly    float64  `json:"price_monthly" validate:"gte=0"`
	PriceSemiannual float64  `json:"price_semiannual" validate:"gte=0"`
	PriceAnnual     float64  `json:"price_annual" validate:"gte=0"`
	Features        []string `json:"features"`
	Color           string   `json:"color,omitempty"`
	Icon            string   `json:"icon,omitempty"`
	Active          bool     `json:"active"`
	Popular         bool     `json:"popular"`
}

// UpdatePlanParams carries partial plan updates. Nil fields are left unchanged.
type UpdatePlanParams struct {
	Name            *string   `json:"name,omitempty"`
	PriceMonthly    *float64  `json:"price_monthly,omitempty" validate:"omitempty,gte=0"`
	PriceSemiannual *float64  `json:"price_semiannual,omitempty" validate:"omitempty,gte=0"`
	PriceAnnual     *float64  `json:"price_annual,omitempty" validate:"omitempty,gte=0"`
	Features        *[]string `json:"features,omitempty"`
	Color           *string   `json:"color,omitempty"`
	Icon            *string   `json:"icon,omitempty"`
	Active          *bool     `json:"active,omitempty"`
	Popular         *bool     `json:"popular,omitempty"`
}
