package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"relivre_back_end/internal/checkout"
	"relivre_back_end/internal/database"
	"relivre_back_end/internal/pricing"
	"relivre_back_end/internal/utils"
)

// orchestrator sur les adaptateurs Scylla. Les tests du package checkout
// couvrent la séquence avec des fakes ; ici on ne fait que brancher.
var orchestrator = checkout.New(
	checkout.ScyllaCartStore{},
	checkout.ScyllaBookStore{},
	checkout.ScyllaCouponStore{},
	checkout.ScyllaOrderStore{},
)

// Checkout transforme le panier en commande. Le coupon vient du corps de
// la requête ou, à défaut, de la session panier Redis.
func Checkout(c *gin.Context) {
	var input struct {
		CouponCode string `json:"coupon_code"`
	}
	// Corps vide accepté : checkout sans coupon
	_ = c.ShouldBindJSON(&input)

	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	couponCode := input.CouponCode
	if couponCode == "" {
		couponCode, _ = database.Redis.Get(ctx, "cart_coupon:"+userID).Result()
	}

	order, err := orchestrator.PlaceOrder(ctx, userID, couponCode)
	if err != nil {
		utils.LogFailedAction(c, utils.ActionOrderCreate, "order", "", err.Error())

		switch {
		case errors.Is(err, checkout.ErrNotAuthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, pricing.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, pricing.ErrCouponBelowMinimum):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, checkout.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la commande"})
		}
		return
	}

	// Le coupon de session est consommé par la commande
	database.Redis.Del(ctx, "cart_coupon:"+userID)

	utils.LogAction(c, utils.ActionOrderCreate, "order", order.ID.String())

	c.JSON(http.StatusCreated, gin.H{
		"order_id":        order.ID.String(),
		"status":          order.Status,
		"total_amount":    order.TotalAmount,
		"discount_amount": order.DiscountAmount,
		"coupon_code":     order.CouponCode,
	})
}
