package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var testRules = services.PricingRules{
	FreeShippingThreshold: 999,
	ShippingFee:           50,
	TaxRate:               0.18,
}

func testAddress() models.Address {
	return models.Address{
		Name:    "Neha Sharma",
		Phone:   "9876543210",
		Pincode: "560001",
		Address: "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
	}
}

func testProduct(price float64, stock int) *models.Product {
	return &models.Product{
		ID:       primitive.NewObjectID(),
		Title:    "Slim Fit Jeans",
		Brand:    "Roadster",
		IsActive: true,
		Variants: []models.Variant{
			{Size: "M", Color: "Blue", Price: price, Stock: stock},
		},
	}
}

type orderFixture struct {
	svc      *services.OrderService
	products *mockProductRepo
	orders   *mockOrderRepo
	carts    *mockCartRepo
	userID   string
}

func newOrderFixture(t *testing.T, opts services.OrderServiceOptions, products ...*models.Product) *orderFixture {
	t.Helper()
	if opts.Rules == (services.PricingRules{}) {
		opts.Rules = testRules
	}
	if opts.ReturnWindowDays == 0 {
		opts.ReturnWindowDays = 30
	}

	f := &orderFixture{
		products: newMockProductRepo(products...),
		orders:   newMockOrderRepo(),
		carts:    newMockCartRepo(),
		userID:   primitive.NewObjectID().Hex(),
	}
	f.svc = services.NewOrderService(f.orders, f.products, f.carts, nil, opts, zap.NewNop())
	return f
}

func (f *orderFixture) fillCart(t *testing.T, product *models.Product, quantity int) {
	t.Helper()
	cart := &models.Cart{
		UserID: f.userID,
		Items: []models.CartLine{{
			ProductID: product.ID.Hex(),
			Variant:   models.VariantKey{Size: "M", Color: "Blue"},
			Quantity:  quantity,
			Price:     product.Variants[0].Price,
		}},
	}
	cart.Recalculate()
	require.NoError(t, f.carts.Save(context.Background(), cart))
}

func checkoutReq() *services.CheckoutRequest {
	return &services.CheckoutRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "COD",
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 2)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentDetails.Status)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Len(t, order.Items, 1)

	// subtotal 2598 -> free shipping, tax round(2598*0.18)=468
	assert.Equal(t, 2598.0, order.Pricing.Subtotal)
	assert.Equal(t, 0.0, order.Pricing.Shipping)
	assert.Equal(t, 468.0, order.Pricing.Tax)
	assert.Equal(t, order.Pricing.Subtotal+order.Pricing.Shipping+order.Pricing.Tax-order.Pricing.Discount, order.Pricing.Total)

	// Stock and sales moved, cart cleared.
	assert.Equal(t, 3, f.products.stock(product.ID, "M", "Blue"))
	assert.Equal(t, 2, f.products.sales(product.ID))
	assert.Equal(t, 1, f.carts.clears)

	// Billing defaults to shipping when omitted.
	assert.Equal(t, order.ShippingAddress, order.BillingAddress)
}

func TestCheckoutShippingFeeBelowThreshold(t *testing.T) {
	product := testProduct(499, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)

	assert.Equal(t, 50.0, order.Pricing.Shipping)
	// tax round(499*0.18)=round(89.82)=90
	assert.Equal(t, 90.0, order.Pricing.Tax)
	assert.Equal(t, 639.0, order.Pricing.Total)
}

func TestCheckoutFreeShippingAtExactThreshold(t *testing.T) {
	product := testProduct(999, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.Pricing.Shipping)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newOrderFixture(t, services.OrderServiceOptions{})

	_, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())

	var emptyErr *services.EmptyCartError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	product := testProduct(799, 1)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 3)

	_, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())

	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)

	// Nothing was taken.
	assert.Equal(t, 1, f.products.stock(product.ID, "M", "Blue"))
	assert.Equal(t, 0, f.products.sales(product.ID))
	assert.Equal(t, 0, f.carts.clears)
}

func TestCheckoutInactiveProduct(t *testing.T) {
	product := testProduct(799, 5)
	product.IsActive = false
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	_, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())

	var unavailableErr *services.ProductUnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
}

func TestCheckoutRollsBackReservationsOnOrderCreateFailure(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 2)
	f.orders.failCreate = true

	_, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.Error(t, err)

	// The reserved stock came back and sales were undone.
	assert.Equal(t, 5, f.products.stock(product.ID, "M", "Blue"))
	assert.Equal(t, 0, f.products.sales(product.ID))
}

func TestCheckoutMultiLineAllOrNothing(t *testing.T) {
	inStock := testProduct(500, 10)
	outOfStock := testProduct(700, 0)
	f := newOrderFixture(t, services.OrderServiceOptions{}, inStock, outOfStock)

	cart := &models.Cart{
		UserID: f.userID,
		Items: []models.CartLine{
			{ProductID: inStock.ID.Hex(), Variant: models.VariantKey{Size: "M", Color: "Blue"}, Quantity: 2, Price: 500},
			{ProductID: outOfStock.ID.Hex(), Variant: models.VariantKey{Size: "M", Color: "Blue"}, Quantity: 1, Price: 700},
		},
	}
	cart.Recalculate()
	require.NoError(t, f.carts.Save(context.Background(), cart))

	_, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())

	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// The first line's reservation must not survive the second line's failure.
	assert.Equal(t, 10, f.products.stock(inStock.ID, "M", "Blue"))
	assert.Equal(t, 0, f.products.sales(inStock.ID))
}

func TestCheckoutCartSurvivesClearFailure(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)
	f.carts.failClear = true

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())

	// A stale cart is not a checkout failure.
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.OrderStatus)
	assert.Equal(t, 4, f.products.stock(product.ID, "M", "Blue"))
}

func TestCheckoutIdempotencyReplay(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	req := checkoutReq()
	req.IdempotencyKey = "key-123"

	first, err := f.svc.Checkout(context.Background(), f.userID, req)
	require.NoError(t, err)

	// Replay with the same key: same order back, no second stock decrement.
	f.fillCart(t, product, 1)
	second, err := f.svc.Checkout(context.Background(), f.userID, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	assert.Equal(t, 4, f.products.stock(product.ID, "M", "Blue"))
}

func TestCheckoutIdempotencyKeyInFlight(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	// Another request holds the claim and has not completed yet.
	_, claimed, err := f.carts.ClaimIdempotency(context.Background(), "key-123")
	require.NoError(t, err)
	require.True(t, claimed)

	req := checkoutReq()
	req.IdempotencyKey = "key-123"

	_, err = f.svc.Checkout(context.Background(), f.userID, req)

	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, 5, f.products.stock(product.ID, "M", "Blue"))
}

func TestCheckoutFailureReleasesIdempotencyKey(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)
	f.orders.failCreate = true

	req := checkoutReq()
	req.IdempotencyKey = "key-123"

	_, err := f.svc.Checkout(context.Background(), f.userID, req)
	require.Error(t, err)

	// The failed attempt released its claim, so a retry with the same key
	// goes through instead of replaying or being rejected.
	f.orders.failCreate = false
	order, err := f.svc.Checkout(context.Background(), f.userID, req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.OrderStatus)
	assert.Equal(t, 4, f.products.stock(product.ID, "M", "Blue"))
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	product := testProduct(999, 1)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)

	const shoppers = 8
	userIDs := make([]string, shoppers)
	for i := range userIDs {
		userIDs[i] = primitive.NewObjectID().Hex()
		cart := &models.Cart{
			UserID: userIDs[i],
			Items: []models.CartLine{{
				ProductID: product.ID.Hex(),
				Variant:   models.VariantKey{Size: "M", Color: "Blue"},
				Quantity:  1,
				Price:     999,
			}},
		}
		cart.Recalculate()
		require.NoError(t, f.carts.Save(context.Background(), cart))
	}

	var wg sync.WaitGroup
	results := make([]error, shoppers)
	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Checkout(context.Background(), userIDs[i], checkoutReq())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			var stockErr *services.InsufficientStockError
			assert.ErrorAs(t, err, &stockErr)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one shopper gets the last unit")
	assert.Equal(t, 0, f.products.stock(product.ID, "M", "Blue"))
	assert.Equal(t, 1, f.products.sales(product.ID))
}

func TestCancelOrderRestoresStock(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 2)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)
	require.Equal(t, 3, f.products.stock(product.ID, "M", "Blue"))

	cancelled, err := f.svc.CancelOrder(context.Background(), f.userID, order.ID.Hex(), "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)
	assert.Equal(t, 5, f.products.stock(product.ID, "M", "Blue"))
	assert.Equal(t, 0, f.products.sales(product.ID))
}

func TestCancelShippedOrderRejected(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)

	for _, status := range []string{models.StatusConfirmed, models.StatusProcessing, models.StatusShipped} {
		_, err = f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}

	_, err = f.svc.CancelOrder(context.Background(), f.userID, order.ID.Hex(), "too late")

	var transitionErr *services.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusShipped, transitionErr.From)

	// Stock untouched by the rejected cancellation.
	assert.Equal(t, 4, f.products.stock(product.ID, "M", "Blue"))
}

// deliverOrder walks an order through the fulfillment path and backdates
// its delivery timestamp.
func deliverOrder(t *testing.T, f *orderFixture, orderID primitive.ObjectID, deliveredAt time.Time) {
	t.Helper()
	for _, status := range []string{models.StatusConfirmed, models.StatusProcessing, models.StatusShipped, models.StatusDelivered} {
		_, err := f.svc.UpdateStatus(context.Background(), orderID.Hex(), &services.UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}
	order, err := f.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	order.TrackingDetails.DeliveredAt = &deliveredAt
	require.NoError(t, f.orders.Update(context.Background(), order))
}

func TestReturnWithinWindow(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)
	deliverOrder(t, f, order.ID, time.Now().AddDate(0, 0, -29))

	returned, err := f.svc.ReturnOrder(context.Background(), f.userID, order.ID.Hex(), &services.ReturnRequest{Reason: "wrong size"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusReturned, returned.OrderStatus)
	assert.Equal(t, "wrong size", returned.ReturnReason)
	require.NotNil(t, returned.RefundAmount)
	assert.Equal(t, returned.Pricing.Total, *returned.RefundAmount)
	assert.NotNil(t, returned.RefundedAt)

	// Returns do not restock by default.
	assert.Equal(t, 4, f.products.stock(product.ID, "M", "Blue"))
}

func TestReturnAfterWindowRejected(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)
	deliverOrder(t, f, order.ID, time.Now().AddDate(0, 0, -31))

	_, err = f.svc.ReturnOrder(context.Background(), f.userID, order.ID.Hex(), &services.ReturnRequest{Reason: "wrong size"})

	var windowErr *services.ReturnWindowExpiredError
	require.ErrorAs(t, err, &windowErr)
	assert.Equal(t, 30, windowErr.WindowDays)
}

func TestReturnBeforeDeliveryRejected(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)

	_, err = f.svc.ReturnOrder(context.Background(), f.userID, order.ID.Hex(), &services.ReturnRequest{Reason: "early"})

	var transitionErr *services.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestReturnRestocksWhenConfigured(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{RestockOnReturn: true}, product)
	f.fillCart(t, product, 2)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)
	deliverOrder(t, f, order.ID, time.Now().AddDate(0, 0, -1))

	_, err = f.svc.ReturnOrder(context.Background(), f.userID, order.ID.Hex(), &services.ReturnRequest{Reason: "defective"})
	require.NoError(t, err)

	assert.Equal(t, 5, f.products.stock(product.ID, "M", "Blue"))
	assert.Equal(t, 0, f.products.sales(product.ID))
}

func TestReturnCustomRefundAmount(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)
	deliverOrder(t, f, order.ID, time.Now().AddDate(0, 0, -1))

	refund := 500.0
	returned, err := f.svc.ReturnOrder(context.Background(), f.userID, order.ID.Hex(), &services.ReturnRequest{
		Reason:       "partial damage",
		RefundAmount: &refund,
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, *returned.RefundAmount)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)

	// Skipping states is rejected.
	_, err = f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{Status: models.StatusShipped})
	var transitionErr *services.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	_, err = f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{Status: models.StatusConfirmed})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{Status: models.StatusProcessing})
	require.NoError(t, err)

	shipped, err := f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{
		Status:         models.StatusShipped,
		TrackingNumber: "TRK123",
		Carrier:        "Delhivery",
	})
	require.NoError(t, err)
	assert.Equal(t, "TRK123", shipped.TrackingDetails.TrackingNumber)
	assert.Equal(t, "Delhivery", shipped.TrackingDetails.Carrier)
	assert.NotNil(t, shipped.TrackingDetails.ShippedAt)

	delivered, err := f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{Status: models.StatusDelivered})
	require.NoError(t, err)
	assert.NotNil(t, delivered.TrackingDetails.DeliveredAt)

	// Delivered is terminal for admin moves other than Returned.
	_, err = f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{Status: models.StatusPending})
	assert.ErrorAs(t, err, &transitionErr)
}

func TestAdminCancellationRestoresStock(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 2)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)

	cancelled, err := f.svc.UpdateStatus(context.Background(), order.ID.Hex(), &services.UpdateStatusRequest{Status: models.StatusCancelled})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, 5, f.products.stock(product.ID, "M", "Blue"))
}

func TestGetOrderScopedToOwner(t *testing.T) {
	product := testProduct(1299, 5)
	f := newOrderFixture(t, services.OrderServiceOptions{}, product)
	f.fillCart(t, product, 1)

	order, err := f.svc.Checkout(context.Background(), f.userID, checkoutReq())
	require.NoError(t, err)

	_, err = f.svc.GetOrderByID(context.Background(), primitive.NewObjectID().Hex(), order.ID.Hex())

	var notFoundErr *services.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestComputePricingInvariant(t *testing.T) {
	cases := []struct {
		name     string
		subtotal float64
		discount float64
	}{
		{"below threshold", 499, 0},
		{"at threshold", 999, 0},
		{"above threshold", 2598, 0},
		{"with discount", 1500, 200},
		{"fractional tax", 333, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := services.ComputePricing(testRules, tc.subtotal, tc.discount)
			assert.Equal(t, p.Subtotal+p.Shipping+p.Tax-p.Discount, p.Total)
			assert.Equal(t, p.Tax, float64(int64(p.Tax)), "tax is rounded to a whole rupee")
			if tc.subtotal >= 999 {
				assert.Equal(t, 0.0, p.Shipping)
			} else {
				assert.Equal(t, 50.0, p.Shipping)
			}
		})
	}
}
