package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande. La progression pending → paid → shipped → delivered
// n'est pas verrouillée côté serveur : le front suppose qu'elle avance.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

type Order struct {
	ID              gocql.UUID  `json:"id"`
	BuyerID         string      `json:"buyer_id"`
	TotalAmount     float64     `json:"total_amount"`
	DiscountAmount  float64     `json:"discount_amount"`
	CouponCode      string      `json:"coupon_code,omitempty"` // Snapshot du code, pas une référence
	ShippingAddress string      `json:"shipping_address"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem fige le prix du livre au moment de la commande. Le total d'une
// commande doit rester recalculable depuis ces snapshots même si le prix
// du livre change ensuite.
type OrderItem struct {
	OrderID  gocql.UUID `json:"order_id"`
	BookID   gocql.UUID `json:"book_id"`
	Title    string     `json:"title"`
	Quantity int        `json:"quantity"`
	Price    float64    `json:"price"`
}
