package book

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"relivre_back_end/internal/cache"
	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
	"relivre_back_end/internal/services"
	"relivre_back_end/internal/utils"
)

// GetAllBooks liste le catalogue. La liste complète passe par le cache
// Redis ; les filtres (available, category, condition) s'appliquent après
// lecture pour garder une seule clé de cache.
func GetAllBooks(c *gin.Context) {
	ctx := c.Request.Context()

	books, hit := cache.GetCachedListing(ctx)
	if !hit {
		session, err := database.GetBooksSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
			return
		}

		iter := session.Query(`
			SELECT book_id, seller_id, title, author, description, category, condition,
			       price, original_price, image_url, stock_quantity, is_available, created_at
			FROM books`).WithContext(ctx).Iter()

		var b models.Book
		var createdAt time.Time
		for iter.Scan(&b.ID, &b.SellerID, &b.Title, &b.Author, &b.Description, &b.Category,
			&b.Condition, &b.Price, &b.OriginalPrice, &b.ImageURL, &b.StockQuantity,
			&b.IsAvailable, &createdAt) {
			created := createdAt
			b.CreatedAt = &created
			books = append(books, b)
			b = models.Book{}
		}
		if err := iter.Close(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
			return
		}

		cache.SetCachedListing(ctx, books)
	}

	// Filtres optionnels
	onlyAvailable := c.Query("available") == "true"
	category := c.Query("category")
	condition := c.Query("condition")

	filtered := books[:0:0]
	for _, b := range books {
		if onlyAvailable && !b.IsAvailable {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		if condition != "" && b.Condition != condition {
			continue
		}
		filtered = append(filtered, b)
	}

	c.JSON(http.StatusOK, filtered)
}

func GetBookByID(c *gin.Context) {
	bookID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de livre invalide"})
		return
	}

	b, err := cache.GetBookFromCache(bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture livre"})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Livre introuvable"})
		return
	}

	c.JSON(http.StatusOK, b)
}

// CreateBook met un livre en vente (vendeur = utilisateur connecté)
func CreateBook(c *gin.Context) {
	var b models.Book

	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if b.Title == "" || b.Author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Titre et auteur obligatoires"})
		return
	}
	if !models.IsValidCondition(b.Condition) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "État du livre invalide (like_new, very_good, good, acceptable)"})
		return
	}
	if b.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix invalide"})
		return
	}
	if b.StockQuantity <= 0 {
		b.StockQuantity = 1
	}

	userID, _ := c.Get("user_id")
	b.SellerID = userID.(string)
	b.ID = gocql.TimeUUID()
	b.IsAvailable = true
	now := time.Now()
	b.CreatedAt = &now
	b.UpdatedAt = &now

	session, err := database.GetBooksSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := `INSERT INTO books (book_id, seller_id, title, author, description, category, condition,
	          price, original_price, image_url, stock_quantity, is_available, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if err := session.Query(query, b.ID, b.SellerID, b.Title, b.Author, b.Description, b.Category,
		b.Condition, b.Price, b.OriginalPrice, b.ImageURL, b.StockQuantity, b.IsAvailable,
		b.CreatedAt, b.UpdatedAt).WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création livre: " + err.Error()})
		return
	}

	cache.InvalidateBook(context.Background(), b.ID)

	// 🔄 Indexation Elasticsearch
	go services.IndexBook(b)

	utils.LogAction(c, utils.ActionBookCreate, "book", b.ID.String())

	c.JSON(http.StatusCreated, b)
}
