package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"
	"github.com/neeharika666/myntra-hackerramp/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CheckoutRequest is the typed input for the checkout workflow.
type CheckoutRequest struct {
	ShippingAddress models.Address  `json:"shippingAddress" binding:"required"`
	BillingAddress  *models.Address `json:"billingAddress,omitempty"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required,oneof=COD Card UPI 'Net Banking' Wallet"`
	Notes           string          `json:"notes,omitempty"`
	CouponCode      string          `json:"couponCode,omitempty"`

	// IdempotencyKey is taken from the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

// CancelRequest and ReturnRequest carry the caller-supplied reason.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ReturnRequest struct {
	Reason       string   `json:"reason" binding:"required"`
	RefundAmount *float64 `json:"refundAmount,omitempty"`
}

// UpdateStatusRequest is the admin payload for moving an order forward.
type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=Pending Confirmed Processing Shipped Delivered Cancelled"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
}

// Pagination is the listing metadata returned alongside page results.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func paginate(page, limit int, total int64) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasMore:    total > int64(page*limit),
	}
}

// OrderListResponse pairs a page of orders with its metadata.
type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   Pagination     `json:"meta"`
}

// OrderService owns the order lifecycle: checkout, cancellation, returns
// and fulfillment status transitions. It is the one place where the cart,
// catalog and order aggregates change together.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	discount DiscountPolicy
	rules    PricingRules

	returnWindowDays int
	restockOnReturn  bool

	logger *zap.Logger
}

type OrderServiceOptions struct {
	Rules            PricingRules
	ReturnWindowDays int
	RestockOnReturn  bool
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	discount DiscountPolicy,
	opts OrderServiceOptions,
	logger *zap.Logger,
) *OrderService {
	if discount == nil {
		discount = NoDiscount{}
	}
	return &OrderService{
		orders:           orders,
		products:         products,
		carts:            carts,
		discount:         discount,
		rules:            opts.Rules,
		returnWindowDays: opts.ReturnWindowDays,
		restockOnReturn:  opts.RestockOnReturn,
		logger:           logger,
	}
}

// reservation records one applied stock decrement so it can be undone if a
// later step fails.
type reservation struct {
	productID primitive.ObjectID
	variant   models.VariantKey
	quantity  int
}

// Checkout converts the user's cart into an order. Lines are first
// validated against the live catalog, then stock is taken with atomic
// conditional decrements; any failure after that point rolls the
// decrements back in reverse order, so a failed checkout leaves no stock
// effect behind.
func (s *OrderService) Checkout(ctx context.Context, userID string, req *CheckoutRequest) (*models.Order, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ValidationError{Field: "user", Message: "invalid user ID"}
	}

	// Claim the idempotency key before doing anything: a replayed key
	// returns the original order, a key still held by a concurrent request
	// is rejected, and a fresh claim is released again if this checkout
	// fails before the order exists.
	committed := false
	if req.IdempotencyKey != "" {
		existingID, claimed, err := s.carts.ClaimIdempotency(ctx, req.IdempotencyKey)
		switch {
		case err != nil:
			return nil, fmt.Errorf("claim idempotency key: %w", err)
		case existingID != "":
			return s.replayIdempotent(ctx, existingID)
		case !claimed:
			return nil, &ValidationError{Field: "Idempotency-Key", Message: "a checkout with this key is already in progress"}
		}
		defer func() {
			if committed {
				return
			}
			if err := s.carts.ReleaseIdempotency(ctx, req.IdempotencyKey); err != nil {
				s.logger.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}()
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, &EmptyCartError{}
	}

	// Cart contents are a stale snapshot; re-validate every line against the
	// live catalog and price at current catalog prices.
	items, subtotal, err := s.buildOrderLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	discount, err := s.discount.Discount(ctx, req.CouponCode, subtotal)
	if err != nil {
		return nil, err
	}
	pricing := ComputePricing(s.rules, subtotal, discount)

	reserved, err := s.reserveStock(ctx, items)
	if err != nil {
		return nil, err
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          userOID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		PaymentDetails: models.PaymentDetails{
			Method: req.PaymentMethod,
			Status: models.PaymentPending,
		},
		OrderStatus: models.StatusPending,
		Pricing:     pricing,
		Notes:       req.Notes,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.releaseStock(ctx, reserved)
		return nil, fmt.Errorf("create order: %w", err)
	}
	committed = true

	// The order exists; a missed redemption count is recoverable, an
	// aborted checkout consuming a coupon use would not be.
	if err := s.discount.Redeem(ctx, req.CouponCode); err != nil {
		s.logger.Warn("Failed to record coupon redemption",
			zap.String("coupon", req.CouponCode),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}

	if _, err := s.carts.Clear(ctx, userID); err != nil {
		// The order exists and stock is taken; a stale cart is recoverable.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("user_id", userID),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}

	if req.IdempotencyKey != "" {
		if err := s.carts.CompleteIdempotency(ctx, req.IdempotencyKey, order.ID.Hex()); err != nil {
			s.logger.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}

	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID),
		zap.Float64("total", order.Pricing.Total))
	return order, nil
}

func (s *OrderService) replayIdempotent(ctx context.Context, orderID string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("decode replayed order ID: %w", err)
	}
	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("fetch replayed order: %w", err)
	}
	return order, nil
}

// buildOrderLines validates each cart line against the live catalog and
// snapshots current prices. No stock is taken here; this pre-check gives
// callers precise errors before any mutation.
func (s *OrderService) buildOrderLines(ctx context.Context, cart *models.Cart) ([]models.OrderLine, float64, error) {
	items := make([]models.OrderLine, 0, len(cart.Items))
	var subtotal float64

	for _, line := range cart.Items {
		productOID, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, 0, &ProductUnavailableError{ProductID: line.ProductID}
		}

		product, err := s.products.FindByID(ctx, productOID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, &ProductUnavailableError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, 0, fmt.Errorf("fetch product: %w", err)
		}
		if !product.IsActive {
			return nil, 0, &ProductUnavailableError{ProductID: line.ProductID, Title: product.Title}
		}

		variant := product.FindVariant(line.Variant.Size, line.Variant.Color)
		if variant == nil {
			return nil, 0, &ProductUnavailableError{ProductID: line.ProductID, Title: product.Title}
		}
		if variant.Stock < line.Quantity {
			return nil, 0, &InsufficientStockError{
				ProductID: line.ProductID,
				Title:     product.Title,
				Size:      line.Variant.Size,
				Color:     line.Variant.Color,
				Available: variant.Stock,
			}
		}

		items = append(items, models.OrderLine{
			ProductID:     productOID,
			Variant:       line.Variant,
			Quantity:      line.Quantity,
			Price:         variant.Price,
			OriginalPrice: variant.OriginalPrice,
		})
		subtotal += variant.Price * float64(line.Quantity)
	}

	return items, subtotal, nil
}

// reserveStock decrements every line's variant stock (and bumps sales)
// through the conditional update. On failure it undoes the decrements
// already applied, in reverse order, and reports why the failing line
// could not be taken.
func (s *OrderService) reserveStock(ctx context.Context, items []models.OrderLine) ([]reservation, error) {
	applied := make([]reservation, 0, len(items))

	for _, item := range items {
		err := s.products.AdjustVariantStock(ctx, item.ProductID, item.Variant, -item.Quantity, item.Quantity)
		if err == nil {
			applied = append(applied, reservation{productID: item.ProductID, variant: item.Variant, quantity: item.Quantity})
			continue
		}

		s.releaseStock(ctx, applied)

		if errors.Is(err, repository.ErrInsufficientStock) {
			available := 0
			if product, ferr := s.products.FindByID(ctx, item.ProductID); ferr == nil {
				if v := product.FindVariant(item.Variant.Size, item.Variant.Color); v != nil {
					available = v.Stock
				}
			}
			return nil, &InsufficientStockError{
				ProductID: item.ProductID.Hex(),
				Size:      item.Variant.Size,
				Color:     item.Variant.Color,
				Available: available,
			}
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &ProductUnavailableError{ProductID: item.ProductID.Hex()}
		}
		return nil, fmt.Errorf("reserve stock: %w", err)
	}

	return applied, nil
}

// releaseStock is the exact inverse of reserveStock for the given
// reservations, applied in reverse order.
func (s *OrderService) releaseStock(ctx context.Context, reserved []reservation) {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := s.products.AdjustVariantStock(ctx, r.productID, r.variant, r.quantity, -r.quantity); err != nil {
			s.logger.Error("Failed to release reserved stock",
				zap.String("product_id", r.productID.Hex()),
				zap.String("size", r.variant.Size),
				zap.String("color", r.variant.Color),
				zap.Int("quantity", r.quantity),
				zap.Error(err))
		}
	}
}

// restoreOrderStock puts an order's stock and sales deltas back, used by
// cancellation (and returns when restocking is enabled).
func (s *OrderService) restoreOrderStock(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		if err := s.products.AdjustVariantStock(ctx, item.ProductID, item.Variant, item.Quantity, -item.Quantity); err != nil {
			s.logger.Error("Failed to restore stock",
				zap.String("order_number", order.OrderNumber),
				zap.String("product_id", item.ProductID.Hex()),
				zap.Error(err))
		}
	}
}

// CancelOrder transitions an order to Cancelled and restores the stock and
// sales deltas taken at checkout. Only pending and confirmed orders can be
// cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID, reason string) (*models.Order, error) {
	order, err := s.findUserOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.OrderStatus != models.StatusPending && order.OrderStatus != models.StatusConfirmed {
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: models.StatusCancelled}
	}

	s.restoreOrderStock(ctx, order)

	order.OrderStatus = models.StatusCancelled
	order.CancellationReason = reason
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("save cancelled order: %w", err)
	}

	s.logger.Info("Order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.String("reason", reason))
	return order, nil
}

// ReturnOrder transitions a delivered order to Returned when the request
// falls within the return window measured from the delivery timestamp.
// Stock is restored only when the service is configured to restock
// returns.
func (s *OrderService) ReturnOrder(ctx context.Context, userID, orderID string, req *ReturnRequest) (*models.Order, error) {
	order, err := s.findUserOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.OrderStatus != models.StatusDelivered {
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: models.StatusReturned}
	}
	if order.TrackingDetails.DeliveredAt == nil {
		return nil, fmt.Errorf("order %s has no delivery timestamp", order.OrderNumber)
	}

	window := time.Duration(s.returnWindowDays) * 24 * time.Hour
	if time.Since(*order.TrackingDetails.DeliveredAt) > window {
		return nil, &ReturnWindowExpiredError{
			DeliveredAt: *order.TrackingDetails.DeliveredAt,
			WindowDays:  s.returnWindowDays,
		}
	}

	refund := order.Pricing.Total
	if req.RefundAmount != nil {
		refund = *req.RefundAmount
	}
	now := time.Now()

	order.OrderStatus = models.StatusReturned
	order.ReturnReason = req.Reason
	order.RefundAmount = &refund
	order.RefundedAt = &now

	if s.restockOnReturn {
		s.restoreOrderStock(ctx, order)
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("save returned order: %w", err)
	}

	s.logger.Info("Order returned",
		zap.String("order_number", order.OrderNumber),
		zap.Float64("refund", refund))
	return order, nil
}

// UpdateStatus is the admin path for moving an order through fulfillment.
// The transition is validated against the status machine; Shipped records
// tracking details, Delivered stamps the delivery time (the anchor for the
// return window) and Cancelled restores stock like a user cancellation.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, req *UpdateStatusRequest) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, &ValidationError{Field: "orderId", Message: "invalid order ID"}
	}
	order, err := s.orders.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "order"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}

	if !models.CanTransition(order.OrderStatus, req.Status) {
		return nil, &InvalidTransitionError{From: order.OrderStatus, To: req.Status}
	}

	now := time.Now()
	switch req.Status {
	case models.StatusShipped:
		order.TrackingDetails.TrackingNumber = req.TrackingNumber
		order.TrackingDetails.Carrier = req.Carrier
		order.TrackingDetails.ShippedAt = &now
	case models.StatusDelivered:
		order.TrackingDetails.DeliveredAt = &now
	case models.StatusCancelled:
		s.restoreOrderStock(ctx, order)
		order.CancellationReason = "Cancelled by store"
	}
	order.OrderStatus = req.Status

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("save order status: %w", err)
	}

	s.logger.Info("Order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", req.Status))
	return order, nil
}

// GetUserOrders retrieves paginated orders for a user, optionally filtered
// by status.
func (s *OrderService) GetUserOrders(ctx context.Context, userID, status string, page, limit int) (*OrderListResponse, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ValidationError{Field: "user", Message: "invalid user ID"}
	}

	orders, total, err := s.orders.FindByUser(ctx, userOID, status, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return &OrderListResponse{Orders: orders, Meta: paginate(page, limit, total)}, nil
}

// GetAllOrders retrieves paginated orders across users (admin only).
func (s *OrderService) GetAllOrders(ctx context.Context, status, search string, page, limit int) (*OrderListResponse, error) {
	orders, total, err := s.orders.FindAll(ctx, status, search, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return &OrderListResponse{Orders: orders, Meta: paginate(page, limit, total)}, nil
}

// GetOrderByID retrieves a single order owned by the user.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.findUserOrder(ctx, userID, orderID)
}

func (s *OrderService) findUserOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &ValidationError{Field: "user", Message: "invalid user ID"}
	}
	orderOID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, &ValidationError{Field: "orderId", Message: "invalid order ID"}
	}

	order, err := s.orders.FindByIDAndUser(ctx, orderOID, userOID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "order"}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	return order, nil
}

// generateOrderNumber builds a human-readable order number: MYN prefix,
// millisecond timestamp, short random suffix.
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("MYN%d%s", time.Now().UnixMilli(), suffix)
}
