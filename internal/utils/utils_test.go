package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/gocql/gocql"

	"relivre_back_end/internal/models"
)

func TestGenerateSepaQR(t *testing.T) {
	qr, err := GenerateSepaQR("BE12345678901234", "KREDBEBB", "Relivre SRL", "Commande 42", 30.97)
	if err != nil {
		t.Fatalf("GenerateSepaQR: %v", err)
	}
	if !strings.HasPrefix(qr, "data:image/png;base64,") {
		t.Fatalf("le QR doit être une data-URI PNG, obtenu %q", qr[:30])
	}
}

func TestGenerateOrderConfirmationHTML(t *testing.T) {
	orderID, _ := gocql.RandomUUID()
	bookID, _ := gocql.RandomUUID()

	order := models.Order{
		ID:             orderID,
		TotalAmount:    30.97,
		DiscountAmount: 5.00,
		CouponCode:     "WELCOME20",
		Status:         models.OrderStatusPaid,
		CreatedAt:      time.Now(),
		Items: []models.OrderItem{
			{OrderID: orderID, BookID: bookID, Title: "Le Comte de Monte-Cristo", Quantity: 2, Price: 11.99},
		},
	}

	html := GenerateOrderConfirmationHTML(order, "data:image/png;base64,xxx")

	for _, want := range []string{
		"Le Comte de Monte-Cristo",
		"30.97€",
		"WELCOME20",
		"-5.00€",
		"data:image/png;base64,xxx",
		orderID.String(),
	} {
		if !strings.Contains(html, want) {
			t.Errorf("le HTML de confirmation doit contenir %q", want)
		}
	}
}

func TestGenerateOrderConfirmationHTMLWithoutCouponNorQR(t *testing.T) {
	orderID, _ := gocql.RandomUUID()
	order := models.Order{ID: orderID, TotalAmount: 12.50, Status: models.OrderStatusPending}

	html := GenerateOrderConfirmationHTML(order, "")

	if strings.Contains(html, "Réduction") {
		t.Error("pas de ligne de réduction attendue sans coupon")
	}
	if strings.Contains(html, "QR") {
		t.Error("pas de bloc QR attendu sans QR fourni")
	}
}

func TestGenerateJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")

	token, err := GenerateJWT(models.User{ID: "user-1", Email: "a@b.fr", Name: "Ana"})
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("JWT attendu (3 segments), obtenu %q", token)
	}
}
