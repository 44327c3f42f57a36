package pricing

import (
	"math"
	"testing"

	"relivre_back_end/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func sampleCart() []Line {
	return []Line{
		{BookID: "b1", Title: "Le Comte de Monte-Cristo", Price: 12.99, Quantity: 2},
		{BookID: "b2", Title: "Vingt mille lieues sous les mers", Price: 9.99, Quantity: 1},
	}
}

func TestSubtotal(t *testing.T) {
	lines := sampleCart()
	if got := Subtotal(lines); !almostEqual(got, 35.97) {
		t.Fatalf("sous-total attendu 35.97, obtenu %v", got)
	}

	// Indépendant de l'ordre des lignes
	reversed := []Line{lines[1], lines[0]}
	if got := Subtotal(reversed); !almostEqual(got, 35.97) {
		t.Fatalf("sous-total dépendant de l'ordre: %v", got)
	}

	if got := Subtotal(nil); got != 0 {
		t.Fatalf("panier vide devrait donner 0, obtenu %v", got)
	}
}

func TestComputeWithoutCoupon(t *testing.T) {
	quote, err := Compute(sampleCart(), nil)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	if !almostEqual(quote.Subtotal, 35.97) || quote.Discount != 0 || !almostEqual(quote.Total, 35.97) {
		t.Fatalf("devis sans coupon incorrect: %+v", quote)
	}
}

func TestComputeWithCappedCoupon(t *testing.T) {
	coupon := &models.Coupon{
		Code:               "WELCOME20",
		DiscountPercentage: 20,
		MinPurchaseAmount:  floatPtr(20),
		MaxDiscountAmount:  floatPtr(5),
		IsActive:           true,
	}

	quote, err := Compute(sampleCart(), coupon)
	if err != nil {
		t.Fatalf("erreur inattendue: %v", err)
	}
	// Remise brute = 35.97 * 20% = 7.194, plafonnée à 5.00
	if !almostEqual(quote.Discount, 5.00) {
		t.Fatalf("remise attendue 5.00, obtenue %v", quote.Discount)
	}
	if !almostEqual(quote.Total, 30.97) {
		t.Fatalf("total attendu 30.97, obtenu %v", quote.Total)
	}
	if quote.CouponCode != "WELCOME20" {
		t.Fatalf("code coupon non reporté dans le devis: %+v", quote)
	}
}

func TestComputeBelowMinimum(t *testing.T) {
	coupon := &models.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		MinPurchaseAmount:  floatPtr(50),
		IsActive:           true,
	}

	quote, err := Compute(sampleCart(), coupon)
	if err != ErrCouponBelowMinimum {
		t.Fatalf("erreur attendue ErrCouponBelowMinimum, obtenue %v", err)
	}
	// Aucune remise partielle : le total reste le sous-total
	if quote.Discount != 0 || !almostEqual(quote.Total, 35.97) {
		t.Fatalf("remise partielle appliquée malgré l'échec: %+v", quote)
	}
}

func TestValidateCouponInactive(t *testing.T) {
	coupon := &models.Coupon{Code: "OLD", DiscountPercentage: 15, IsActive: false}
	if err := ValidateCoupon(coupon, 100); err != ErrCouponNotFound {
		t.Fatalf("coupon inactif devrait être introuvable, obtenu %v", err)
	}
	if err := ValidateCoupon(nil, 100); err != ErrCouponNotFound {
		t.Fatalf("coupon nil devrait être introuvable, obtenu %v", err)
	}
}

func TestDiscountNeverExceedsSubtotal(t *testing.T) {
	subtotals := []float64{0, 0.01, 9.99, 35.97, 1000}
	coupons := []*models.Coupon{
		{Code: "A", DiscountPercentage: 100, IsActive: true},
		{Code: "B", DiscountPercentage: 50, MaxDiscountAmount: floatPtr(3), IsActive: true},
		{Code: "C", DiscountPercentage: 0, IsActive: true},
	}

	for _, subtotal := range subtotals {
		for _, coupon := range coupons {
			discount := Discount(subtotal, coupon)
			if discount > subtotal+1e-9 {
				t.Fatalf("remise %v > sous-total %v pour %s", discount, subtotal, coupon.Code)
			}
			if total := Total(subtotal, discount); total < 0 {
				t.Fatalf("total négatif %v pour %s", total, coupon.Code)
			}
		}
	}
}

func TestTotalClampedAtZero(t *testing.T) {
	if got := Total(10, 15); got != 0 {
		t.Fatalf("total devrait être borné à 0, obtenu %v", got)
	}
}
