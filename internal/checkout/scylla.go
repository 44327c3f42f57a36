package checkout

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gocql/gocql"

	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
)

// Adapteurs ScyllaDB des stores du checkout. Les handlers construisent
// l'orchestrateur avec ces implémentations ; les tests injectent des fakes.

type ScyllaCartStore struct{}

func (ScyllaCartStore) List(ctx context.Context, userID string) ([]models.CartLine, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT book_id, quantity, created_at FROM cart_items WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	var lines []models.CartLine
	var line models.CartLine
	line.UserID = userID
	for iter.Scan(&line.BookID, &line.Quantity, &line.CreatedAt) {
		lines = append(lines, line)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (ScyllaCartStore) DeleteLines(ctx context.Context, userID string, bookIDs []gocql.UUID) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}
	return session.Query(`DELETE FROM cart_items WHERE user_id = ? AND book_id IN ?`, userID, bookIDs).
		WithContext(ctx).Exec()
}

type ScyllaBookStore struct{}

func (ScyllaBookStore) Get(ctx context.Context, bookID gocql.UUID) (*models.Book, error) {
	session, err := database.GetBooksSession()
	if err != nil {
		return nil, err
	}

	var book models.Book
	book.ID = bookID
	err = session.Query(`SELECT seller_id, title, author, price, original_price, category, condition, image_url, stock_quantity, is_available
		FROM books WHERE book_id = ?`, bookID).WithContext(ctx).Scan(
		&book.SellerID, &book.Title, &book.Author, &book.Price, &book.OriginalPrice,
		&book.Category, &book.Condition, &book.ImageURL, &book.StockQuantity, &book.IsAvailable)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

type ScyllaCouponStore struct{}

func (ScyllaCouponStore) FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var coupon models.Coupon
	err = session.Query(`SELECT code, discount_percentage, min_purchase_amount, max_discount_amount, is_active, created_at
		FROM coupons WHERE code = ?`, strings.ToUpper(strings.TrimSpace(code))).WithContext(ctx).Scan(
		&coupon.Code, &coupon.DiscountPercentage, &coupon.MinPurchaseAmount,
		&coupon.MaxDiscountAmount, &coupon.IsActive, &coupon.CreatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, nil
	}
	return &coupon, nil
}

type ScyllaOrderStore struct{}

func (ScyllaOrderStore) CreateOrder(ctx context.Context, order models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	if err := session.Query(`INSERT INTO orders (order_id, buyer_id, total_amount, discount_amount, coupon_code, shipping_address, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.BuyerID, order.TotalAmount, order.DiscountAmount,
		order.CouponCode, order.ShippingAddress, order.Status, order.CreatedAt).
		WithContext(ctx).Exec(); err != nil {
		return err
	}

	// Table de lookup par acheteur, triée du plus récent au plus ancien.
	// Un échec ici n'invalide pas la commande : on log et on continue.
	if err := session.Query(`INSERT INTO orders_by_buyer (buyer_id, created_at, order_id, total_amount, status)
		VALUES (?, ?, ?, ?, ?)`,
		order.BuyerID, order.CreatedAt, order.ID, order.TotalAmount, order.Status).
		WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation orders_by_buyer: %v", err)
	}

	return nil
}

func (ScyllaOrderStore) CreateItems(ctx context.Context, items []models.OrderItem) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	// Toutes les lignes partagent la partition order_id : un batch loggé
	// reproduit l'insert multi-lignes en une seule écriture distante.
	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, item := range items {
		batch.Query(`INSERT INTO order_items (order_id, book_id, title, quantity, price) VALUES (?, ?, ?, ?, ?)`,
			item.OrderID, item.BookID, item.Title, item.Quantity, item.Price)
	}
	return session.ExecuteBatch(batch)
}
