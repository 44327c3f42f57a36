package models

import "time"

// Coupon : code de réduction en pourcentage, avec plancher d'achat et
// plafond de remise optionnels. Lecture seule côté boutique.
type Coupon struct {
	Code               string    `json:"code"` // Toujours stocké en majuscules
	DiscountPercentage float64   `json:"discount_percentage"`
	MinPurchaseAmount  *float64  `json:"min_purchase_amount,omitempty"`
	MaxDiscountAmount  *float64  `json:"max_discount_amount,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}
