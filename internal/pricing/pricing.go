// Package pricing calcule sous-total, remise et total d'un panier.
// Calcul pur et déterministe : aucune E/S, aucun arrondi intermédiaire.
// Les montants sont des float64 en pleine précision, arrondis à 2 décimales
// uniquement à l'affichage.
package pricing

import (
	"errors"

	"relivre_back_end/internal/models"
)

var (
	// ErrCouponNotFound : aucun coupon actif ne correspond au code normalisé
	ErrCouponNotFound = errors.New("coupon introuvable ou inactif")
	// ErrCouponBelowMinimum : le sous-total n'atteint pas le minimum d'achat du coupon
	ErrCouponBelowMinimum = errors.New("montant minimum d'achat non atteint")
)

// Line est une ligne de panier vue par le moteur de prix : le prix unitaire
// est celui lu au moment du calcul (snapshot), pas une référence vivante.
type Line struct {
	BookID   string
	Title    string
	Price    float64
	Quantity int
}

// Quote est le résultat complet d'un calcul de panier.
type Quote struct {
	Subtotal   float64 `json:"subtotal"`
	Discount   float64 `json:"discount"`
	Total      float64 `json:"total"`
	CouponCode string  `json:"coupon_code,omitempty"`
}

// Subtotal somme prix × quantité sur toutes les lignes, indépendamment de
// leur ordre.
func Subtotal(lines []Line) float64 {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.Price * float64(line.Quantity)
	}
	return subtotal
}

// ValidateCoupon vérifie qu'un coupon est applicable à un sous-total donné.
// Le plancher min_purchase_amount est strict : en dessous, aucune remise
// partielle n'est appliquée.
func ValidateCoupon(coupon *models.Coupon, subtotal float64) error {
	if coupon == nil || !coupon.IsActive {
		return ErrCouponNotFound
	}
	if coupon.MinPurchaseAmount != nil && subtotal < *coupon.MinPurchaseAmount {
		return ErrCouponBelowMinimum
	}
	return nil
}

// Discount calcule la remise : pourcentage du sous-total, plafonnée par
// max_discount_amount quand il est défini. Sans coupon, la remise est 0.
func Discount(subtotal float64, coupon *models.Coupon) float64 {
	if coupon == nil {
		return 0
	}
	discount := subtotal * coupon.DiscountPercentage / 100
	if coupon.MaxDiscountAmount != nil && discount > *coupon.MaxDiscountAmount {
		discount = *coupon.MaxDiscountAmount
	}
	return discount
}

// Total retourne subtotal - discount, borné à 0 par précaution : avec un
// pourcentage ≤ 100 le cas négatif ne devrait jamais arriver.
func Total(subtotal, discount float64) float64 {
	total := subtotal - discount
	if total < 0 {
		total = 0
	}
	return total
}

// Compute produit le devis complet d'un panier avec au plus un coupon.
// Si le coupon est invalide, l'erreur est retournée et le devis reste
// sans remise (total == subtotal).
func Compute(lines []Line, coupon *models.Coupon) (Quote, error) {
	subtotal := Subtotal(lines)
	quote := Quote{Subtotal: subtotal, Total: subtotal}

	if coupon == nil {
		return quote, nil
	}
	if err := ValidateCoupon(coupon, subtotal); err != nil {
		return quote, err
	}

	quote.Discount = Discount(subtotal, coupon)
	quote.Total = Total(subtotal, quote.Discount)
	quote.CouponCode = coupon.Code
	return quote, nil
}
