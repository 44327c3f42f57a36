package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
)

const (
	BookCacheTTL    = 10 * time.Minute
	ListingCacheTTL = time.Hour
)

const listingCacheKey = "books:all"

// GetBookFromCache récupère un livre depuis Redis ou ScyllaDB
func GetBookFromCache(bookID gocql.UUID) (*models.Book, error) {
	ctx := context.Background()
	key := "book:" + bookID.String()

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var book models.Book
		if json.Unmarshal([]byte(data), &book) == nil {
			return &book, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetBooksSession()
	if err != nil {
		return nil, err
	}

	var book models.Book
	book.ID = bookID
	err = session.Query(`SELECT seller_id, title, author, description, category, condition, price, original_price, image_url, stock_quantity, is_available, created_at, updated_at
		FROM books WHERE book_id = ?`, bookID).Scan(
		&book.SellerID, &book.Title, &book.Author, &book.Description, &book.Category,
		&book.Condition, &book.Price, &book.OriginalPrice, &book.ImageURL,
		&book.StockQuantity, &book.IsAvailable, &book.CreatedAt, &book.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(book)
	database.Redis.Set(ctx, key, jsonData, BookCacheTTL)

	return &book, nil
}

// GetCachedListing retourne la liste complète des livres si elle est en cache
func GetCachedListing(ctx context.Context) ([]models.Book, bool) {
	val, err := database.Redis.Get(ctx, listingCacheKey).Result()
	if err != nil || val == "" {
		return nil, false
	}

	var books []models.Book
	if err := json.Unmarshal([]byte(val), &books); err != nil {
		return nil, false
	}
	return books, true
}

// SetCachedListing met la liste complète en cache
func SetCachedListing(ctx context.Context, books []models.Book) {
	if data, err := json.Marshal(books); err == nil {
		database.Redis.Set(ctx, listingCacheKey, data, ListingCacheTTL)
	}
}

// InvalidateBook purge un livre et la liste complète après une mutation
func InvalidateBook(ctx context.Context, bookID gocql.UUID) {
	database.Redis.Del(ctx, "book:"+bookID.String(), listingCacheKey)
}
