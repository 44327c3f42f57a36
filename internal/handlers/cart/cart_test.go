package cart

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"relivre_back_end/internal/models"
)

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		stock     int
		wantQty   int
		wantOK    bool
	}{
		{"dans les bornes", 2, 5, 2, true},
		{"borne basse", 1, 5, 1, true},
		{"borne haute", 5, 5, 5, true},
		{"zéro ignoré", 0, 5, 0, false},
		{"négatif ignoré", -3, 5, 0, false},
		{"au-dessus du stock ignoré", 6, 5, 0, false},
		{"stock épuisé refuse tout", 1, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, ok := clampQuantity(tt.requested, tt.stock)
			if ok != tt.wantOK {
				t.Fatalf("clampQuantity(%d, %d) ok = %v, attendu %v", tt.requested, tt.stock, ok, tt.wantOK)
			}
			if ok && qty != tt.wantQty {
				t.Fatalf("clampQuantity(%d, %d) = %d, attendu %d", tt.requested, tt.stock, qty, tt.wantQty)
			}
		})
	}
}

// Un livre épuisé a une plage de quantités vide : aucune demande ne passe.
func TestClampQuantitySoldOutBook(t *testing.T) {
	for _, requested := range []int{1, 3, 99} {
		if qty, ok := clampQuantity(requested, 0); ok {
			t.Fatalf("la demande devrait être un no-op, obtenu qty=%d ok=%v", qty, ok)
		}
	}
}

func TestEnrichCartLines(t *testing.T) {
	bookID := gocql.TimeUUID()
	lines := []models.CartLine{{BookID: bookID, Quantity: 2}}

	err := enrichCartLines(lines, func(id gocql.UUID) (*models.Book, error) {
		return &models.Book{ID: id, Title: "Germinal", Author: "Zola", Price: 8.50, StockQuantity: 3}, nil
	})
	if err != nil {
		t.Fatalf("enrichCartLines: %v", err)
	}
	if lines[0].Title != "Germinal" || lines[0].Price != 8.50 || lines[0].StockQuantity != 3 {
		t.Fatalf("ligne non enrichie: %+v", lines[0])
	}
}

// Un livre disparu ou illisible rend le panier en erreur, jamais valorisé
// à 0 (un prix nul fausserait le sous-total et le seuil des coupons).
func TestEnrichCartLinesBookMissing(t *testing.T) {
	lines := []models.CartLine{{BookID: gocql.TimeUUID(), Quantity: 1}}

	err := enrichCartLines(lines, func(gocql.UUID) (*models.Book, error) {
		return nil, nil
	})
	if err == nil {
		t.Fatal("erreur attendue pour un livre introuvable")
	}
	if lines[0].Price != 0 {
		t.Fatalf("aucun prix ne devrait être posé, obtenu %v", lines[0].Price)
	}
}

func TestEnrichCartLinesLookupError(t *testing.T) {
	lines := []models.CartLine{{BookID: gocql.TimeUUID(), Quantity: 1}}
	boom := errors.New("cache indisponible")

	err := enrichCartLines(lines, func(gocql.UUID) (*models.Book, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("l'erreur de lecture doit remonter telle quelle, obtenu %v", err)
	}
}

// L'ajout au panier refuse un livre épuisé même marqué disponible.
func TestAddToCartSoldOutBook(t *testing.T) {
	gin.SetMode(gin.TestMode)

	origGetBook := getBook
	origPublish := publishCartEvent
	defer func() {
		getBook = origGetBook
		publishCartEvent = origPublish
	}()

	bookID := gocql.TimeUUID()
	getBook = func(id gocql.UUID) (*models.Book, error) {
		return &models.Book{ID: id, Title: "Bel-Ami", Price: 6.99, IsAvailable: true, StockQuantity: 0}, nil
	}
	publishCartEvent = func(string, string) {
		t.Error("aucun événement panier ne devrait être publié")
	}

	r := gin.New()
	r.POST("/cart/add", func(c *gin.Context) { c.Set("user_id", "user-1") }, AddToCart)

	w := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"book_id":"` + bookID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/cart/add", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("404 attendu pour un livre épuisé, obtenu %d (%s)", w.Code, w.Body.String())
	}
}
