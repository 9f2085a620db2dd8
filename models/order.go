package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status lifecycle. The happy path moves strictly forward through
// StatusPending..StatusDelivered; StatusCancelled is reachable from
// Pending/Confirmed and StatusReturned only from Delivered. Both exits are
// terminal.
const (
	StatusPending    = "Pending"
	StatusConfirmed  = "Confirmed"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
	StatusReturned   = "Returned"
)

// Payment status values.
const (
	PaymentPending  = "Pending"
	PaymentPaid     = "Paid"
	PaymentFailed   = "Failed"
	PaymentRefunded = "Refunded"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []string{"COD", "Card", "UPI", "Net Banking", "Wallet"}

// Address is a shipping or billing address.
type Address struct {
	Name    string `bson:"name" json:"name" binding:"required"`
	Phone   string `bson:"phone" json:"phone" binding:"required"`
	Pincode string `bson:"pincode" json:"pincode" binding:"required"`
	Address string `bson:"address" json:"address" binding:"required"`
	City    string `bson:"city" json:"city" binding:"required"`
	State   string `bson:"state" json:"state" binding:"required"`
}

// OrderLine snapshots one cart line at checkout. Price and OriginalPrice are
// copied from the catalog, not referenced, so later price changes never
// retroactively alter a placed order.
type OrderLine struct {
	ProductID     primitive.ObjectID `bson:"product" json:"product"`
	Variant       VariantKey         `bson:"variant" json:"variant"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	Price         float64            `bson:"price" json:"price"`
	OriginalPrice *float64           `bson:"original_price,omitempty" json:"originalPrice,omitempty"`
}

// Pricing is computed once at checkout and stored.
// Invariant: Total == Subtotal + Shipping + Tax - Discount.
type Pricing struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Shipping float64 `bson:"shipping" json:"shipping"`
	Discount float64 `bson:"discount" json:"discount"`
	Tax      float64 `bson:"tax" json:"tax"`
	Total    float64 `bson:"total" json:"total"`
}

type PaymentDetails struct {
	Method        string     `bson:"method" json:"method"`
	Status        string     `bson:"status" json:"status"`
	TransactionID string     `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
}

type TrackingDetails struct {
	TrackingNumber    string     `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	Carrier           string     `bson:"carrier,omitempty" json:"carrier,omitempty"`
	EstimatedDelivery *time.Time `bson:"estimated_delivery,omitempty" json:"estimatedDelivery,omitempty"`
	ShippedAt         *time.Time `bson:"shipped_at,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
}

// Order is an immutable-after-creation snapshot of a checked-out cart.
// Only the status-transition operations mutate it.
type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber        string             `bson:"order_number" json:"orderNumber"`
	UserID             primitive.ObjectID `bson:"user" json:"user"`
	Items              []OrderLine        `bson:"items" json:"items"`
	ShippingAddress    Address            `bson:"shipping_address" json:"shippingAddress"`
	BillingAddress     Address            `bson:"billing_address" json:"billingAddress"`
	PaymentDetails     PaymentDetails     `bson:"payment_details" json:"paymentDetails"`
	OrderStatus        string             `bson:"order_status" json:"orderStatus"`
	TrackingDetails    TrackingDetails    `bson:"tracking_details" json:"trackingDetails"`
	Pricing            Pricing            `bson:"pricing" json:"pricing"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	ReturnReason       string             `bson:"return_reason,omitempty" json:"returnReason,omitempty"`
	RefundAmount       *float64           `bson:"refund_amount,omitempty" json:"refundAmount,omitempty"`
	RefundedAt         *time.Time         `bson:"refunded_at,omitempty" json:"refundedAt,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// nextStatus maps each non-terminal state to the set of states reachable
// from it.
var nextStatus = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range nextStatus[from] {
		if s == to {
			return true
		}
	}
	return false
}
