package cart

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"relivre_back_end/internal/cache"
	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
	"relivre_back_end/internal/pricing"
)

// Points d'accrochage remplaçables dans les tests : la lecture livre passe
// par le cache Redis et la notification par pub/sub, deux dépendances
// qu'un test de handler n'a pas.
var (
	getBook          = cache.GetBookFromCache
	listCartLines    = loadCartLines
	publishCartEvent = publishCartEventRedis
)

// clampQuantity valide une quantité demandée contre le stock. Hors bornes
// [1, stock], la demande est ignorée (pas d'erreur, pas d'écriture).
// Stock à zéro : la plage est vide, tout est refusé.
func clampQuantity(requested, stock int) (int, bool) {
	if requested < 1 || requested > stock {
		return 0, false
	}
	return requested, true
}

// publishCartEventRedis notifie les autres onglets/appareils via Redis pub/sub
func publishCartEventRedis(userID, event string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := database.Redis.Publish(ctx, "cart:"+userID, event).Err(); err != nil {
		log.Printf("⚠️ Publication événement panier impossible: %v", err)
	}
}

// enrichCartLines joint chaque ligne à son livre (titre, prix courant,
// stock). Un livre illisible ou disparu fait échouer la lecture du panier :
// une ligne valorisée à 0 fausserait le sous-total et le seuil des coupons.
func enrichCartLines(lines []models.CartLine, lookup func(gocql.UUID) (*models.Book, error)) error {
	for i := range lines {
		b, err := lookup(lines[i].BookID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("livre %s introuvable pour la ligne de panier", lines[i].BookID)
		}
		lines[i].Title = b.Title
		lines[i].Author = b.Author
		lines[i].Price = b.Price
		lines[i].ImageURL = b.ImageURL
		lines[i].StockQuantity = b.StockQuantity
	}
	return nil
}

// loadCartLines lit les lignes de panier et les enrichit depuis ks_books
// (via le cache livre).
func loadCartLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	q, err := database.ListCartLinesQuery()
	if err != nil {
		return nil, err
	}

	iter := q.Bind(userID).WithContext(ctx).Iter()

	var lines []models.CartLine
	var line models.CartLine
	for iter.Scan(&line.BookID, &line.Quantity, &line.CreatedAt) {
		line.UserID = userID
		lines = append(lines, line)
		line = models.CartLine{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	if err := enrichCartLines(lines, getBook); err != nil {
		return nil, err
	}

	return lines, nil
}

// GetCart renvoie les lignes jointes aux livres plus le devis courant
// (sous-total, remise du coupon appliqué, total).
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	lines, err := listCartLines(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	priceLines := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		priceLines = append(priceLines, pricing.Line{
			BookID:   l.BookID.String(),
			Title:    l.Title,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
	}

	// Coupon attaché à la session panier (une seule fois par session)
	var coupon *models.Coupon
	couponCode, _ := couponSessions.Current(ctx, userID)
	if couponCode != "" {
		coupon, _ = findActiveCoupon(ctx, couponCode)
	}

	quote, err := pricing.Compute(priceLines, coupon)
	if err != nil {
		// Coupon devenu invalide pour ce panier : devis sans remise
		quote, _ = pricing.Compute(priceLines, nil)
		c.JSON(http.StatusOK, gin.H{
			"items":        lines,
			"quote":        quote,
			"coupon_error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": lines,
		"quote": quote,
	})
}

// AddToCart crée une ligne (quantité 1). Une ligne existante pour le même
// livre n'est pas écrasée : 409, le front propose d'ajuster la quantité.
func AddToCart(c *gin.Context) {
	var input struct {
		BookID string `json:"book_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookID, err := gocql.ParseUUID(input.BookID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de livre invalide"})
		return
	}

	b, err := getBook(bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture livre"})
		return
	}
	// Stock épuisé = indisponible : rien à ajouter, même à quantité 1
	if b == nil || !b.IsAvailable || b.StockQuantity < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Livre indisponible"})
		return
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	previous := make(map[string]interface{})
	applied, err := usersSession.Query(`
		INSERT INTO cart_items (user_id, book_id, quantity, created_at)
		VALUES (?, ?, 1, ?) IF NOT EXISTS`,
		userID, bookID, time.Now(),
	).WithContext(ctx).MapScanCAS(previous)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout au panier"})
		return
	}
	if !applied {
		existingQty, _ := previous["quantity"].(int)
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Ce livre est déjà dans votre panier",
			"book_id":  bookID.String(),
			"quantity": existingQty,
		})
		return
	}

	publishCartEvent(userID, "updated")

	c.JSON(http.StatusCreated, gin.H{"book_id": bookID.String(), "quantity": 1})
}

// UpsertCartItem pose la quantité demandée, que la ligne existe ou non
// (flux page détail : choix de quantité avant ajout).
func UpsertCartItem(c *gin.Context) {
	var input struct {
		BookID   string `json:"book_id"`
		Quantity int    `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookID, err := gocql.ParseUUID(input.BookID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de livre invalide"})
		return
	}

	b, err := getBook(bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture livre"})
		return
	}
	if b == nil || !b.IsAvailable {
		c.JSON(http.StatusNotFound, gin.H{"error": "Livre indisponible"})
		return
	}

	qty, ok := clampQuantity(input.Quantity, b.StockQuantity)
	if !ok {
		// Demande hors bornes : état inchangé
		c.JSON(http.StatusOK, gin.H{"book_id": bookID.String(), "applied": false})
		return
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	userID := c.GetString("user_id")
	if err := usersSession.Query(`
		INSERT INTO cart_items (user_id, book_id, quantity, created_at)
		VALUES (?, ?, ?, ?)`,
		userID, bookID, qty, time.Now(),
	).WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur écriture panier"})
		return
	}

	publishCartEvent(userID, "updated")

	c.JSON(http.StatusOK, gin.H{"book_id": bookID.String(), "quantity": qty, "applied": true})
}

// UpdateQuantity change la quantité d'une ligne existante. Hors bornes,
// la ligne reste telle quelle.
func UpdateQuantity(c *gin.Context) {
	bookID, err := gocql.ParseUUID(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de livre invalide"})
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	getLine, err := database.GetCartLineQuery()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var currentQty int
	if err := getLine.Bind(userID, bookID).WithContext(ctx).Scan(&currentQty); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ligne de panier introuvable"})
		return
	}

	b, err := getBook(bookID)
	if err != nil || b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Livre introuvable"})
		return
	}

	qty, ok := clampQuantity(input.Quantity, b.StockQuantity)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"book_id": bookID.String(), "quantity": currentQty, "applied": false})
		return
	}

	update, err := database.UpdateCartLineQuery()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	if err := update.Bind(qty, userID, bookID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	publishCartEvent(userID, "updated")

	c.JSON(http.StatusOK, gin.H{"book_id": bookID.String(), "quantity": qty, "applied": true})
}

func RemoveFromCart(c *gin.Context) {
	bookID, err := gocql.ParseUUID(c.Param("bookId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de livre invalide"})
		return
	}

	userID := c.GetString("user_id")

	del, err := database.DeleteCartLineQuery()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	if err := del.Bind(userID, bookID).WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression"})
		return
	}

	publishCartEvent(userID, "updated")

	c.JSON(http.StatusOK, gin.H{"removed": bookID.String()})
}

// ClearCart vide le panier et détache le coupon de session
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := usersSession.Query(`DELETE FROM cart_items WHERE user_id = ?`, userID).
		WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	if err := couponSessions.Detach(ctx, userID); err != nil {
		log.Printf("⚠️ Coupon de session non détaché pour %s: %v", userID, err)
	}
	publishCartEvent(userID, "cleared")

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
