package cart

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"relivre_back_end/internal/models"
)

// fakeCouponSessions reproduit la sémantique SetNX : premier arrivé gagne.
type fakeCouponSessions struct {
	codes map[string]string
}

func (f *fakeCouponSessions) Attach(_ context.Context, userID, code string) (bool, error) {
	if _, exists := f.codes[userID]; exists {
		return false, nil
	}
	f.codes[userID] = code
	return true, nil
}

func (f *fakeCouponSessions) Current(_ context.Context, userID string) (string, error) {
	return f.codes[userID], nil
}

func (f *fakeCouponSessions) Detach(_ context.Context, userID string) error {
	delete(f.codes, userID)
	return nil
}

func setupCouponRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	session := func(c *gin.Context) { c.Set("user_id", "user-1") }
	r.POST("/cart/coupon", session, ApplyCoupon)
	r.DELETE("/cart/coupon", session, RemoveCoupon)
	return r
}

func applyCouponRequest(r *gin.Engine, code string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/coupon", bytes.NewBufferString(`{"code":"`+code+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// Un seul coupon par session panier : le second est refusé tant que le
// premier n'est pas retiré, et repasse une fois la session libérée.
func TestApplyCouponOneShot(t *testing.T) {
	origSessions := couponSessions
	origFind := findActiveCoupon
	origList := listCartLines
	origPublish := publishCartEvent
	defer func() {
		couponSessions = origSessions
		findActiveCoupon = origFind
		listCartLines = origList
		publishCartEvent = origPublish
	}()

	couponSessions = &fakeCouponSessions{codes: make(map[string]string)}
	findActiveCoupon = func(_ context.Context, code string) (*models.Coupon, error) {
		return &models.Coupon{Code: code, DiscountPercentage: 20, IsActive: true}, nil
	}
	listCartLines = func(_ context.Context, _ string) ([]models.CartLine, error) {
		return []models.CartLine{{Price: 11.99, Quantity: 3}}, nil
	}
	publishCartEvent = func(string, string) {}

	r := setupCouponRouter()

	// Première application : acceptée
	if w := applyCouponRequest(r, "WELCOME20"); w.Code != http.StatusOK {
		t.Fatalf("200 attendu à la première application, obtenu %d (%s)", w.Code, w.Body.String())
	}

	// Seconde application : refusée tant que le coupon est attaché
	if w := applyCouponRequest(r, "SAVE10"); w.Code != http.StatusConflict {
		t.Fatalf("409 attendu à la seconde application, obtenu %d (%s)", w.Code, w.Body.String())
	}

	// Retrait du coupon
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/coupon", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("200 attendu au retrait, obtenu %d (%s)", w.Code, w.Body.String())
	}

	// Après retrait, une nouvelle application passe
	if w := applyCouponRequest(r, "SAVE10"); w.Code != http.StatusOK {
		t.Fatalf("200 attendu après retrait, obtenu %d (%s)", w.Code, w.Body.String())
	}
}
