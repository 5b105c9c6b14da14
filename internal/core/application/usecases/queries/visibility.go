package queries

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Setting keys read by SettingsVisibility.
const (
	SettingHideZeroQuantities = "stock.hide_zero_quantities"
	SettingVisibleProducts    = "stock.visible_products"
)

// VisibilityConfig narrows what stock listings show. The zero value shows
// everything.
type VisibilityConfig struct {
	// HideZeroQuantities drops rows whose quantity is 0.
	HideZeroQuantities bool
	// ProductIDs, when not empty, restricts listings to these products.
	ProductIDs []kernel.UUID
}

// VisibilitySource supplies the configuration in effect for a request.
type VisibilitySource interface {
	Visibility(ctx context.Context) (VisibilityConfig, error)
}

// StaticVisibility always returns the same configuration.
type StaticVisibility VisibilityConfig

func (s StaticVisibility) Visibility(context.Context) (VisibilityConfig, error) {
	return VisibilityConfig(s), nil
}

// SettingsVisibility derives the configuration from the settings store.
// Absent keys fall back to the defaults.
type SettingsVisibility struct {
	settings ports.SettingsReader
	defaults VisibilityConfig
}

func NewSettingsVisibility(settings ports.SettingsReader, defaults VisibilityConfig) *SettingsVisibility {
	return &SettingsVisibility{settings: settings, defaults: defaults}
}

func (s *SettingsVisibility) Visibility(ctx context.Context) (VisibilityConfig, error) {
	cfg := s.defaults

	raw, ok, err := s.settings.Get(ctx, SettingHideZeroQuantities)
	if err != nil {
		return VisibilityConfig{}, err
	}
	if ok {
		hide, parseErr := parseHideZero(raw)
		if parseErr != nil {
			return VisibilityConfig{}, parseErr
		}
		cfg.HideZeroQuantities = hide
	}

	raw, ok, err = s.settings.Get(ctx, SettingVisibleProducts)
	if err != nil {
		return VisibilityConfig{}, err
	}
	if ok {
		ids, parseErr := ParseProductList(raw)
		if parseErr != nil {
			return VisibilityConfig{}, parseErr
		}
		cfg.ProductIDs = ids
	}

	return cfg, nil
}

// ValidateSetting checks the value of a setting read by SettingsVisibility.
// Other keys are accepted as is.
func ValidateSetting(key, value string) error {
	switch key {
	case SettingHideZeroQuantities:
		_, err := parseHideZero(value)
		return err
	case SettingVisibleProducts:
		_, err := ParseProductList(value)
		return err
	default:
		return nil
	}
}

func parseHideZero(raw string) (bool, error) {
	hide, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, errs.NewValueIsInvalidErrorWithCause(SettingHideZeroQuantities, err)
	}
	return hide, nil
}

// ParseProductList reads a comma separated list of product ids. Blank
// entries are skipped.
func ParseProductList(raw string) ([]kernel.UUID, error) {
	var ids []kernel.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := kernel.UUIDFromString(part)
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause(SettingVisibleProducts, fmt.Errorf("%q: %w", part, err))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
