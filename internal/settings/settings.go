package settings

import (
	"context"
	"fmt"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/service"
)

// Store reads and writes the singleton settings row.
type Store struct {
	DB *gorm.DB
}

var defaults = models.Setting{
	ID:                    1,
	ShippingFee:           300,
	FreeDeliveryThreshold: 10000,
	CompanyName:           "Duka Shop",
	Currency:              "KES",
}

func (s *Store) Get(ctx context.Context) (*models.Setting, error) {
	var setting models.Setting
	err := s.DB.WithContext(ctx).
		Where(models.Setting{ID: 1}).
		Attrs(defaults).
		FirstOrCreate(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Update applies the given fields to the singleton row. Values arrive as
// loose JSON types and are coerced before writing.
func (s *Store) Update(ctx context.Context, fields map[string]any) (*models.Setting, error) {
	setting, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	for key, raw := range fields {
		switch key {
		case "shipping_fee":
			fee := cast.ToFloat64(raw)
			if fee < 0 {
				return nil, fmt.Errorf("%w: shipping_fee must be >= 0", service.ErrValidation)
			}
			setting.ShippingFee = fee
		case "free_delivery_threshold":
			threshold := cast.ToFloat64(raw)
			if threshold < 0 {
				return nil, fmt.Errorf("%w: free_delivery_threshold must be >= 0", service.ErrValidation)
			}
			setting.FreeDeliveryThreshold = threshold
		case "company_name":
			setting.CompanyName = cast.ToString(raw)
		case "company_phone":
			setting.CompanyPhone = cast.ToString(raw)
		case "support_email":
			setting.SupportEmail = cast.ToString(raw)
		case "currency":
			setting.Currency = cast.ToString(raw)
		default:
			return nil, fmt.Errorf("%w: unknown setting %q", service.ErrValidation, key)
		}
	}

	if err := s.DB.WithContext(ctx).Save(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}
