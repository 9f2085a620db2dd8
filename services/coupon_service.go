package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"go.uber.org/zap"
)

// CouponService manages promotional coupons and doubles as the checkout
// DiscountPolicy: a valid coupon code produces a discount, everything else
// produces zero.
type CouponService struct {
	coupons repository.CouponRepository
	logger  *zap.Logger
}

func NewCouponService(coupons repository.CouponRepository, logger *zap.Logger) *CouponService {
	return &CouponService{coupons: coupons, logger: logger}
}

// CreateCoupon creates a new coupon (admin only).
func (s *CouponService) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {
	if req.ExpiresAt.Before(time.Now()) {
		return nil, &ValidationError{Field: "expires_at", Message: "expiry date must be in the future"}
	}
	if req.Type == models.CouponTypePercentage && req.Value > 100 {
		return nil, &ValidationError{Field: "value", Message: "percentage discount cannot exceed 100"}
	}

	coupon := &models.Coupon{
		Code:          strings.ToUpper(req.Code),
		Type:          req.Type,
		Value:         req.Value,
		MinOrderValue: req.MinOrderValue,
		UsageLimit:    req.UsageLimit,
		ExpiresAt:     req.ExpiresAt,
		Active:        true,
	}

	if err := s.coupons.Create(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &ValidationError{Field: "code", Message: "coupon code already exists"}
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	s.logger.Info("Coupon created", zap.String("code", coupon.Code), zap.String("type", string(coupon.Type)))
	return coupon, nil
}

// Discount implements DiscountPolicy. An empty code means no discount; an
// invalid, expired, exhausted or below-minimum coupon is a validation
// failure so the shopper learns why it did not apply. Discount only reads
// the coupon; the use is counted by Redeem once the order exists.
func (s *CouponService) Discount(ctx context.Context, couponCode string, subtotal float64) (float64, error) {
	if couponCode == "" {
		return 0, nil
	}

	coupon, err := s.coupons.FindByCode(ctx, couponCode)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, &ValidationError{Field: "couponCode", Message: "coupon not found or inactive"}
	}
	if err != nil {
		return 0, fmt.Errorf("fetch coupon: %w", err)
	}

	if time.Now().After(coupon.ExpiresAt) {
		return 0, &ValidationError{Field: "couponCode", Message: "coupon has expired"}
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return 0, &ValidationError{Field: "couponCode", Message: "coupon usage limit reached"}
	}
	if subtotal < coupon.MinOrderValue {
		return 0, &ValidationError{
			Field:   "couponCode",
			Message: fmt.Sprintf("minimum order value of %.2f required", coupon.MinOrderValue),
		}
	}

	var discount float64
	switch coupon.Type {
	case models.CouponTypePercentage:
		discount = subtotal * (coupon.Value / 100)
	case models.CouponTypeFlat:
		discount = coupon.Value
		if discount > subtotal {
			discount = subtotal
		}
	default:
		return 0, fmt.Errorf("unknown coupon type %q", coupon.Type)
	}

	s.logger.Info("Coupon applied",
		zap.String("code", coupon.Code),
		zap.Float64("discount", discount),
		zap.Float64("subtotal", subtotal))
	return discount, nil
}

// Redeem implements DiscountPolicy: it counts one use of the coupon. The
// checkout workflow calls it after the order is persisted, so an aborted
// checkout never consumes a use.
func (s *CouponService) Redeem(ctx context.Context, couponCode string) error {
	if couponCode == "" {
		return nil
	}

	code := strings.ToUpper(couponCode)
	if err := s.coupons.IncrementUsedCount(ctx, code); err != nil {
		return fmt.Errorf("redeem coupon: %w", err)
	}

	s.logger.Info("Coupon redeemed", zap.String("code", code))
	return nil
}

// DeactivateCoupon disables a coupon without deleting it.
func (s *CouponService) DeactivateCoupon(ctx context.Context, code string) error {
	err := s.coupons.Deactivate(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Resource: "coupon"}
	}
	return err
}

// ListCoupons retrieves paginated coupons (admin only).
func (s *CouponService) ListCoupons(ctx context.Context, page, limit int) ([]models.Coupon, Pagination, error) {
	coupons, total, err := s.coupons.FindAll(ctx, page, limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("fetch coupons: %w", err)
	}
	return coupons, paginate(page, limit, total), nil
}
