package cart

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"relivre_back_end/internal/checkout"
	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
	"relivre_back_end/internal/pricing"
	"relivre_back_end/internal/utils"
)

// Durée de vie d'un coupon attaché à une session panier
const couponSessionTTL = 24 * time.Hour

// couponSessionStore garde le coupon attaché à une session panier.
// Attach est premier-arrivé : false si un coupon est déjà posé.
type couponSessionStore interface {
	Attach(ctx context.Context, userID, code string) (bool, error)
	Current(ctx context.Context, userID string) (string, error)
	Detach(ctx context.Context, userID string) error
}

type redisCouponSessions struct{}

func (redisCouponSessions) Attach(ctx context.Context, userID, code string) (bool, error) {
	return database.Redis.SetNX(ctx, "cart_coupon:"+userID, code, couponSessionTTL).Result()
}

func (redisCouponSessions) Current(ctx context.Context, userID string) (string, error) {
	code, err := database.Redis.Get(ctx, "cart_coupon:"+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

func (redisCouponSessions) Detach(ctx context.Context, userID string) error {
	return database.Redis.Del(ctx, "cart_coupon:"+userID).Err()
}

var (
	couponSessions couponSessionStore = redisCouponSessions{}

	findActiveCoupon = func(ctx context.Context, code string) (*models.Coupon, error) {
		return checkout.ScyllaCouponStore{}.FindActiveByCode(ctx, code)
	}
)

// ApplyCoupon attache un coupon à la session panier. Un seul coupon à la
// fois : 409 tant que le précédent n'est pas retiré.
func ApplyCoupon(c *gin.Context) {
	var input struct {
		Code string `json:"code"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code coupon requis"})
		return
	}

	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	coupon, err := findActiveCoupon(ctx, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture coupon"})
		return
	}
	if coupon == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": pricing.ErrCouponNotFound.Error()})
		return
	}

	lines, err := listCartLines(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	priceLines := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		priceLines = append(priceLines, pricing.Line{Price: l.Price, Quantity: l.Quantity})
	}

	if err := pricing.ValidateCoupon(coupon, pricing.Subtotal(priceLines)); err != nil {
		if errors.Is(err, pricing.ErrCouponBelowMinimum) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":               err.Error(),
				"min_purchase_amount": coupon.MinPurchaseAmount,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := couponSessions.Attach(ctx, userID, coupon.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur session coupon"})
		return
	}
	if !ok {
		current, _ := couponSessions.Current(ctx, userID)
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Un coupon est déjà appliqué à ce panier",
			"applied_coupon": current,
		})
		return
	}

	utils.LogAction(c, utils.ActionCouponApply, "coupon", coupon.Code)
	publishCartEvent(userID, "updated")

	quote, _ := pricing.Compute(priceLines, coupon)
	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// RemoveCoupon détache le coupon de la session panier
func RemoveCoupon(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := couponSessions.Detach(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur session coupon"})
		return
	}
	publishCartEvent(userID, "updated")

	c.JSON(http.StatusOK, gin.H{"removed": true})
}
