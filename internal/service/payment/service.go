package payment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/logging"
	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/outbox"
	"github.com/kamaudev/dukashop/internal/service"
)

type Service struct {
	DB     *gorm.DB
	Outbox *outbox.Queue
}

type SubmitRequest struct {
	OrderID     uint    `json:"order_id"`
	Amount      float64 `json:"amount"`
	PhoneNumber string  `json:"phone_number"`
	MpesaCode   string  `json:"mpesa_code"`
}

// Submit records a customer's claim of an off-band M-Pesa payment. The order
// itself is untouched until an admin resolves the claim.
func (s *Service) Submit(ctx context.Context, userID uint, req SubmitRequest) (*models.Payment, error) {
	if req.MpesaCode == "" {
		return nil, fmt.Errorf("%w: mpesa_code required", service.ErrValidation)
	}
	if req.PhoneNumber == "" {
		return nil, fmt.Errorf("%w: phone_number required", service.ErrValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be > 0", service.ErrValidation)
	}

	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", service.ErrNotFound, req.OrderID)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %d", service.ErrForbidden, req.OrderID)
	}

	payment := models.Payment{
		OrderID:     order.ID,
		Amount:      req.Amount,
		PhoneNumber: req.PhoneNumber,
		MpesaCode:   req.MpesaCode,
		Status:      models.PaymentStatusPending,
	}
	if err := s.DB.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// Confirm resolves a pending payment. Payment and order rows change in one
// transaction so a crash cannot leave them disagreeing.
func (s *Service) Confirm(ctx context.Context, paymentID uint) (*models.Payment, error) {
	payment, err := s.resolve(ctx, paymentID, func(tx *gorm.DB, payment *models.Payment, order *models.Order) error {
		payment.Status = models.PaymentStatusConfirmed
		if err := tx.Save(payment).Error; err != nil {
			return err
		}
		updates := map[string]any{"payment_status": models.PaymentStatusConfirmed}
		if order.Status == models.OrderStatusPending {
			updates["status"] = models.OrderStatusConfirmed
		}
		return tx.Model(order).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	event := map[string]any{
		"type":       "payment_confirmed",
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"amount":     payment.Amount,
	}
	if err := s.Outbox.EnqueueEvent(ctx, "payment_events", fmt.Sprint(payment.OrderID), event); err != nil {
		logging.FromContext(ctx).Error("enqueue payment_confirmed event failed", "payment_id", payment.ID, "error", err)
	}
	return payment, nil
}

// Reject resolves a pending payment negatively. A reason is mandatory.
func (s *Service) Reject(ctx context.Context, paymentID uint, reason string) (*models.Payment, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason required", service.ErrValidation)
	}
	return s.resolve(ctx, paymentID, func(tx *gorm.DB, payment *models.Payment, order *models.Order) error {
		payment.Status = models.PaymentStatusRejected
		payment.RejectionReason = reason
		if err := tx.Save(payment).Error; err != nil {
			return err
		}
		return tx.Model(order).
			Update("payment_status", models.PaymentStatusRejected).Error
	})
}

func (s *Service) resolve(ctx context.Context, paymentID uint, apply func(tx *gorm.DB, payment *models.Payment, order *models.Order) error) (*models.Payment, error) {
	var payment models.Payment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %d", service.ErrNotFound, paymentID)
			}
			return err
		}
		if payment.Status != models.PaymentStatusPending {
			return fmt.Errorf("%w: payment %d already %s", service.ErrConflict, paymentID, payment.Status)
		}
		var order models.Order
		if err := tx.First(&order, payment.OrderID).Error; err != nil {
			return err
		}
		return apply(tx, &payment, &order)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *Service) ListForOrder(ctx context.Context, orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id DESC").
		Find(&payments).Error
	return payments, err
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Payment, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payments []models.Payment
	err := s.DB.WithContext(ctx).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error
	return payments, total, err
}
