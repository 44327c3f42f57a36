package order

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
	"relivre_back_end/internal/utils"
)

func loadOrderItems(ctx context.Context, session *gocql.Session, orderID gocql.UUID) ([]models.OrderItem, error) {
	iter := session.Query(`SELECT order_id, book_id, title, quantity, price FROM order_items WHERE order_id = ?`, orderID).
		WithContext(ctx).Iter()

	var items []models.OrderItem
	var item models.OrderItem
	for iter.Scan(&item.OrderID, &item.BookID, &item.Title, &item.Quantity, &item.Price) {
		items = append(items, item)
	}
	return items, iter.Close()
}

// GetMyOrders liste les commandes de l'acheteur connecté, de la plus
// récente à la plus ancienne (ordre de clustering de orders_by_buyer).
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT order_id, created_at, total_amount, status FROM orders_by_buyer WHERE buyer_id = ?`, userID).
		WithContext(ctx).Iter()

	var summaries []models.Order
	var o models.Order
	o.BuyerID = userID
	for iter.Scan(&o.ID, &o.CreatedAt, &o.TotalAmount, &o.Status) {
		summaries = append(summaries, o)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	// Jointure applicative : détail complet + lignes pour chaque commande
	orders := make([]models.Order, 0, len(summaries))
	for _, summary := range summaries {
		full := summary
		err := session.Query(`SELECT discount_amount, coupon_code, shipping_address FROM orders WHERE order_id = ?`, summary.ID).
			WithContext(ctx).Scan(&full.DiscountAmount, &full.CouponCode, &full.ShippingAddress)
		if err != nil {
			log.Printf("⚠️ Commande %s absente de la table orders: %v", summary.ID, err)
		}

		if items, err := loadOrderItems(ctx, session, summary.ID); err == nil {
			full.Items = items
		}
		orders = append(orders, full)
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrderByID renvoie une commande avec ses lignes. Une commande d'un
// autre acheteur est introuvable, pas interdite.
func GetOrderByID(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()

	var o models.Order
	o.ID = orderID
	err = session.Query(`SELECT buyer_id, total_amount, discount_amount, coupon_code, shipping_address, status, created_at
		FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).Scan(
		&o.BuyerID, &o.TotalAmount, &o.DiscountAmount, &o.CouponCode,
		&o.ShippingAddress, &o.Status, &o.CreatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if o.BuyerID != c.GetString("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if items, err := loadOrderItems(ctx, session, orderID); err == nil {
		o.Items = items
	}

	c.JSON(http.StatusOK, o)
}

// PayOrder enregistre l'adresse de livraison et passe la commande en
// "paid". Pas de passerelle de paiement : le règlement se fait par
// virement, le mail de confirmation embarque le QR SEPA.
func PayOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de commande invalide"})
		return
	}

	var input struct {
		ShippingAddress string `json:"shipping_address" binding:"required"`
		PaymentMethod   string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	var o models.Order
	o.ID = orderID
	err = session.Query(`SELECT buyer_id, total_amount, discount_amount, coupon_code, status, created_at
		FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).Scan(
		&o.BuyerID, &o.TotalAmount, &o.DiscountAmount, &o.CouponCode, &o.Status, &o.CreatedAt)
	if err != nil || o.BuyerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if o.Status != models.OrderStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Commande déjà payée", "status": o.Status})
		return
	}

	if err := session.Query(`UPDATE orders SET status = ?, shipping_address = ? WHERE order_id = ?`,
		models.OrderStatusPaid, input.ShippingAddress, orderID).WithContext(ctx).Exec(); err != nil {
		utils.LogFailedAction(c, utils.ActionOrderPay, "order", orderID.String(), err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		return
	}

	if err := session.Query(`UPDATE orders_by_buyer SET status = ? WHERE buyer_id = ? AND created_at = ?`,
		models.OrderStatusPaid, userID, o.CreatedAt).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour orders_by_buyer: %v", err)
	}

	o.Status = models.OrderStatusPaid
	o.ShippingAddress = input.ShippingAddress

	utils.LogAction(c, utils.ActionOrderPay, "order", orderID.String())

	// Confirmation par mail, hors du chemin de réponse
	email := c.GetString("email")
	if email != "" {
		go sendConfirmation(o, email, session)
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": orderID.String(),
		"status":   o.Status,
	})
}

func sendConfirmation(o models.Order, email string, session *gocql.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if items, err := loadOrderItems(ctx, session, o.ID); err == nil {
		o.Items = items
	}

	qr, err := utils.GenerateOrderPaymentQR(o.ID.String(), o.TotalAmount)
	if err != nil {
		log.Printf("⚠️ QR SEPA non généré pour %s: %v", o.ID, err)
		qr = ""
	}

	html := utils.GenerateOrderConfirmationHTML(o, qr)
	if err := utils.SendConfirmationEmail(email, "Confirmation de votre commande Relivre", html); err != nil {
		log.Printf("❌ Envoi mail de confirmation impossible pour %s: %v", o.ID, err)
	}
}
