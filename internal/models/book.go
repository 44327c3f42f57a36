package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Conditions possibles pour un livre d'occasion
const (
	ConditionLikeNew    = "like_new"
	ConditionVeryGood   = "very_good"
	ConditionGood       = "good"
	ConditionAcceptable = "acceptable"
)

type Book struct {
	ID            gocql.UUID `json:"id"`
	SellerID      string     `json:"seller_id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category"`
	Condition     string     `json:"condition"` // "like_new", "very_good", "good", "acceptable"
	Price         float64    `json:"price"`
	OriginalPrice *float64   `json:"original_price,omitempty"` // Prix neuf, pour afficher la remise
	ImageURL      string     `json:"image_url,omitempty"`
	StockQuantity int        `json:"stock_quantity"`
	IsAvailable   bool       `json:"is_available"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// IsValidCondition vérifie qu'une condition fait partie de l'énumération
func IsValidCondition(condition string) bool {
	switch condition {
	case ConditionLikeNew, ConditionVeryGood, ConditionGood, ConditionAcceptable:
		return true
	}
	return false
}
