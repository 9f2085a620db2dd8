package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func activeCoupon(code string, typ models.CouponType, value float64) *models.Coupon {
	return &models.Coupon{
		Code:      code,
		Type:      typ,
		Value:     value,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Active:    true,
	}
}

func TestDiscountEmptyCodeIsZero(t *testing.T) {
	svc := services.NewCouponService(newMockCouponRepo(), zap.NewNop())

	discount, err := svc.Discount(context.Background(), "", 1000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, discount)
}

func TestDiscountPercentage(t *testing.T) {
	repo := newMockCouponRepo(activeCoupon("SAVE10", models.CouponTypePercentage, 10))
	svc := services.NewCouponService(repo, zap.NewNop())

	discount, err := svc.Discount(context.Background(), "SAVE10", 2000)
	require.NoError(t, err)
	assert.Equal(t, 200.0, discount)

	// Computing a discount is read-only; only Redeem counts a use.
	c, err := repo.FindByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 0, c.UsedCount)
}

func TestRedeemCountsUsage(t *testing.T) {
	repo := newMockCouponRepo(activeCoupon("SAVE10", models.CouponTypePercentage, 10))
	svc := services.NewCouponService(repo, zap.NewNop())

	require.NoError(t, svc.Redeem(context.Background(), "save10"))

	c, err := repo.FindByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsedCount)

	// No code, no redemption.
	assert.NoError(t, svc.Redeem(context.Background(), ""))
}

func TestDiscountFlatCappedAtSubtotal(t *testing.T) {
	repo := newMockCouponRepo(activeCoupon("FLAT500", models.CouponTypeFlat, 500))
	svc := services.NewCouponService(repo, zap.NewNop())

	discount, err := svc.Discount(context.Background(), "FLAT500", 300)
	require.NoError(t, err)
	assert.Equal(t, 300.0, discount, "flat discount never exceeds the subtotal")
}

func TestDiscountUnknownCode(t *testing.T) {
	svc := services.NewCouponService(newMockCouponRepo(), zap.NewNop())

	_, err := svc.Discount(context.Background(), "NOPE", 1000)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestDiscountExpiredCoupon(t *testing.T) {
	expired := activeCoupon("OLD", models.CouponTypeFlat, 100)
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	svc := services.NewCouponService(newMockCouponRepo(expired), zap.NewNop())

	_, err := svc.Discount(context.Background(), "OLD", 1000)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestDiscountUsageLimitReached(t *testing.T) {
	limited := activeCoupon("ONCE", models.CouponTypeFlat, 100)
	limited.UsageLimit = 1
	limited.UsedCount = 1
	svc := services.NewCouponService(newMockCouponRepo(limited), zap.NewNop())

	_, err := svc.Discount(context.Background(), "ONCE", 1000)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestDiscountBelowMinimumOrder(t *testing.T) {
	coupon := activeCoupon("BIG", models.CouponTypePercentage, 20)
	coupon.MinOrderValue = 2000
	svc := services.NewCouponService(newMockCouponRepo(coupon), zap.NewNop())

	_, err := svc.Discount(context.Background(), "BIG", 1500)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateCouponValidations(t *testing.T) {
	svc := services.NewCouponService(newMockCouponRepo(), zap.NewNop())

	_, err := svc.CreateCoupon(context.Background(), &models.CreateCouponRequest{
		Code:      "PAST",
		Type:      models.CouponTypeFlat,
		Value:     100,
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.CreateCoupon(context.Background(), &models.CreateCouponRequest{
		Code:      "TOOBIG",
		Type:      models.CouponTypePercentage,
		Value:     150,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateCouponUppercasesCode(t *testing.T) {
	svc := services.NewCouponService(newMockCouponRepo(), zap.NewNop())

	coupon, err := svc.CreateCoupon(context.Background(), &models.CreateCouponRequest{
		Code:      "save20",
		Type:      models.CouponTypePercentage,
		Value:     20,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", coupon.Code)
	assert.True(t, coupon.Active)
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	svc := services.NewCouponService(newMockCouponRepo(activeCoupon("SAVE10", models.CouponTypeFlat, 100)), zap.NewNop())

	_, err := svc.CreateCoupon(context.Background(), &models.CreateCouponRequest{
		Code:      "SAVE10",
		Type:      models.CouponTypeFlat,
		Value:     50,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCheckoutWithCouponDiscount(t *testing.T) {
	product := testProduct(2000, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	couponRepo := newMockCouponRepo(activeCoupon("SAVE10", models.CouponTypePercentage, 10))
	coupons := services.NewCouponService(couponRepo, zap.NewNop())
	f.svc = services.NewOrderService(f.orders, f.products, f.carts, coupons, services.OrderServiceOptions{
		Rules:            testRules,
		ReturnWindowDays: 30,
	}, zap.NewNop())

	req := checkoutReq()
	req.CouponCode = "SAVE10"

	order, err := f.svc.Checkout(context.Background(), f.userID, req)
	require.NoError(t, err)

	assert.Equal(t, 200.0, order.Pricing.Discount)
	assert.Equal(t, order.Pricing.Subtotal+order.Pricing.Shipping+order.Pricing.Tax-order.Pricing.Discount, order.Pricing.Total)

	c, err := couponRepo.FindByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, c.UsedCount, "a placed order counts one coupon use")
}

func TestCheckoutFailureLeavesCouponUnused(t *testing.T) {
	product := testProduct(2000, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	couponRepo := newMockCouponRepo(activeCoupon("SAVE10", models.CouponTypePercentage, 10))
	coupons := services.NewCouponService(couponRepo, zap.NewNop())
	f.svc = services.NewOrderService(f.orders, f.products, f.carts, coupons, services.OrderServiceOptions{
		Rules:            testRules,
		ReturnWindowDays: 30,
	}, zap.NewNop())
	f.orders.failCreate = true

	req := checkoutReq()
	req.CouponCode = "SAVE10"

	_, err := f.svc.Checkout(context.Background(), f.userID, req)
	require.Error(t, err)

	// The aborted checkout must not consume a coupon use.
	c, err := couponRepo.FindByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 0, c.UsedCount)
	assert.Equal(t, 5, f.products.stock(product.ID, "M", "Blue"))
}
