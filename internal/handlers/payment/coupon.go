package payment

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"relivre_back_end/internal/checkout"
	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
	"relivre_back_end/internal/pricing"
)

// ValidateCoupon vérifie un code contre un sous-total donné et renvoie la
// remise qui s'appliquerait. Lecture seule, rien n'est attaché au panier.
func ValidateCoupon(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Query("code")))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'code' requis"})
		return
	}

	subtotal, err := strconv.ParseFloat(c.Query("subtotal"), 64)
	if err != nil || subtotal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'subtotal' invalide"})
		return
	}

	coupon, err := checkout.ScyllaCouponStore{}.FindActiveByCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture coupon"})
		return
	}
	if coupon == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": pricing.ErrCouponNotFound.Error()})
		return
	}

	if err := pricing.ValidateCoupon(coupon, subtotal); err != nil {
		if errors.Is(err, pricing.ErrCouponBelowMinimum) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"valid":               false,
				"error":               err.Error(),
				"min_purchase_amount": coupon.MinPurchaseAmount,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
		return
	}

	discount := pricing.Discount(subtotal, coupon)
	c.JSON(http.StatusOK, gin.H{
		"valid":               true,
		"code":                coupon.Code,
		"discount_percentage": coupon.DiscountPercentage,
		"discount":            discount,
		"total":               pricing.Total(subtotal, discount),
	})
}

// CreateCoupon crée un coupon (endpoint d'amorçage admin)
func CreateCoupon(c *gin.Context) {
	var req struct {
		Code               string   `json:"code" binding:"required"`
		DiscountPercentage float64  `json:"discount_percentage" binding:"required"`
		MinPurchaseAmount  *float64 `json:"min_purchase_amount"`
		MaxDiscountAmount  *float64 `json:"max_discount_amount"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	if req.DiscountPercentage <= 0 || req.DiscountPercentage > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pourcentage doit être entre 1 et 100"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	coupon := models.Coupon{
		Code:               strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountPercentage: req.DiscountPercentage,
		MinPurchaseAmount:  req.MinPurchaseAmount,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		IsActive:           true,
		CreatedAt:          time.Now(),
	}

	// Le code est la clé : doublon refusé par LWT
	previous := make(map[string]interface{})
	applied, err := ordersSession.Query(`
		INSERT INTO coupons (code, discount_percentage, min_purchase_amount, max_discount_amount, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		coupon.Code, coupon.DiscountPercentage, coupon.MinPurchaseAmount,
		coupon.MaxDiscountAmount, coupon.IsActive, coupon.CreatedAt,
	).WithContext(c.Request.Context()).MapScanCAS(previous)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création coupon"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce code coupon existe déjà"})
		return
	}

	c.JSON(http.StatusCreated, coupon)
}
