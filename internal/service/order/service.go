package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/logging"
	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/outbox"
	"github.com/kamaudev/dukashop/internal/service"
	"github.com/kamaudev/dukashop/internal/settings"
)

type Service struct {
	DB       *gorm.DB
	Outbox   *outbox.Queue
	Settings *settings.Store
}

type LineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

type Delivery struct {
	Type   string `json:"type"`
	County string `json:"county"`
	Town   string `json:"town"`
	Street string `json:"street"`
	Notes  string `json:"notes"`
}

// Checkout creates an order in a single transaction: every stock decrement
// is conditional on remaining stock, so two competing checkouts can never
// drive stock negative, and any failed line rolls back the others.
func (s *Service) Checkout(ctx context.Context, userID uint, lines []LineRequest, delivery Delivery, idemKey string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: items required", service.ErrValidation)
	}
	for _, line := range lines {
		if line.ProductID == 0 {
			return nil, fmt.Errorf("%w: product_id required", service.ErrValidation)
		}
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", service.ErrValidation)
		}
	}
	switch delivery.Type {
	case models.DeliveryTypePickup:
	case models.DeliveryTypeDelivery:
		if delivery.County == "" || delivery.Town == "" {
			return nil, fmt.Errorf("%w: delivery address requires county and town", service.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: delivery type must be delivery or pickup", service.ErrValidation)
	}

	if idemKey != "" {
		if existing, err := s.findByIdempotencyKey(ctx, userID, idemKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	setting, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		Number:         uuid.NewString(),
		UserID:         userID,
		Status:         models.OrderStatusPending,
		PaymentStatus:  models.PaymentStatusPending,
		DeliveryType:   delivery.Type,
		DeliveryCounty: delivery.County,
		DeliveryTown:   delivery.Town,
		DeliveryStreet: delivery.Street,
		DeliveryNotes:  delivery.Notes,
	}
	if idemKey != "" {
		order.IdempotencyKey = &idemKey
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		var subtotal, discount float64

		for _, line := range lines {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", service.ErrProductNotFound, line.ProductID)
				}
				return err
			}
			if !product.Active {
				return fmt.Errorf("%w: product %d", service.ErrProductNotFound, line.ProductID)
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d", service.ErrOutOfStock, product.ID)
			}

			// The line item captures the price actually charged: the sale
			// price while a flash sale is live, the list price otherwise.
			unitPrice := product.Price
			if sale := activeSale(tx, product.ID, now); sale != nil && sale.SalePrice < product.Price {
				unitPrice = sale.SalePrice
			}
			subtotal += product.Price * float64(line.Quantity)
			discount += (product.Price - unitPrice) * float64(line.Quantity)

			order.Items = append(order.Items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   unitPrice,
				LineTotal:   unitPrice * float64(line.Quantity),
			})
		}

		order.SubtotalAmount = subtotal
		order.DiscountAmount = discount
		// Free delivery keys off the list-price subtotal, so a flash-sale
		// discount never costs the customer their free shipping.
		order.ShippingAmount = shippingFor(delivery.Type, subtotal, setting)
		order.TotalAmount = subtotal + order.ShippingAmount - discount

		if err := tx.Create(order).Error; err != nil {
			// A concurrent retry with the same idempotency key may have won
			// the race. Surface the original order in that case.
			if idemKey != "" {
				if existing, lookupErr := s.findByIdempotencyKey(ctx, userID, idemKey); lookupErr == nil {
					order = existing
					return errAlreadyCreated
				}
			}
			return err
		}
		return nil
	})
	if errors.Is(err, errAlreadyCreated) {
		return order, nil
	}
	if err != nil {
		return nil, err
	}

	s.notifyCreated(ctx, order)
	return order, nil
}

var errAlreadyCreated = errors.New("order already created")

func activeSale(tx *gorm.DB, productID uint, now time.Time) *models.FlashSale {
	var sale models.FlashSale
	err := tx.Where("product_id = ? AND active = ? AND starts_at <= ? AND ends_at > ?",
		productID, true, now, now).
		Order("sale_price ASC").
		First(&sale).Error
	if err != nil {
		return nil
	}
	return &sale
}

func shippingFor(deliveryType string, goodsAmount float64, setting *models.Setting) float64 {
	if deliveryType == models.DeliveryTypePickup {
		return 0
	}
	if setting.FreeDeliveryThreshold > 0 && goodsAmount >= setting.FreeDeliveryThreshold {
		return 0
	}
	return setting.ShippingFee
}

// notifyCreated enqueues the confirmation email and the order_created event.
// Enqueue failures are logged, never surfaced: the order already exists.
func (s *Service) notifyCreated(ctx context.Context, order *models.Order) {
	l := logging.FromContext(ctx)

	event := map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"number":   order.Number,
		"user_id":  order.UserID,
		"total":    order.TotalAmount,
	}
	if err := s.Outbox.EnqueueEvent(ctx, "order_events", fmt.Sprint(order.UserID), event); err != nil {
		l.Error("enqueue order_created event failed", "order_id", order.ID, "error", err)
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, order.UserID).Error; err != nil {
		l.Error("load user for confirmation email failed", "order_id", order.ID, "error", err)
		return
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nYour order %s has been received.\nTotal: %.2f\n\nWe will notify you once payment is confirmed.",
		user.Name, order.Number, order.TotalAmount,
	)
	if err := s.Outbox.EnqueueEmail(ctx, user.Email, "Order received", body); err != nil {
		l.Error("enqueue confirmation email failed", "order_id", order.ID, "error", err)
	}
}

func (s *Service) findByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Order, error) {
	var existing models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", service.ErrNotFound, id)
		}
		return nil, err
	}
	return &order, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

// UpdateStatus moves an order along the lifecycle, rejecting transitions the
// table does not allow.
func (s *Service) UpdateStatus(ctx context.Context, id uint, next models.OrderStatus) (*models.Order, error) {
	if !ValidStatus(next) {
		return nil, fmt.Errorf("%w: unknown status %q", service.ErrValidation, next)
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", service.ErrValidation, order.Status, next)
	}
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", next).Error; err != nil {
		return nil, err
	}
	order.Status = next
	return order, nil
}
