package book

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"relivre_back_end/internal/cache"
	"relivre_back_end/internal/database"
	"relivre_back_end/internal/services"
)

// UploadCover reçoit l'image de couverture en multipart et la stocke dans
// MinIO. Seul le vendeur du livre peut changer la couverture.
func UploadCover(c *gin.Context) {
	bookID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de livre invalide"})
		return
	}

	session, err := database.GetBooksSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var sellerID string
	if err := session.Query(`SELECT seller_id FROM books WHERE book_id = ?`, bookID).
		WithContext(c.Request.Context()).Scan(&sellerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Livre introuvable"})
		return
	}

	userID, _ := c.Get("user_id")
	if sellerID != userID.(string) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Seul le vendeur peut modifier la couverture"})
		return
	}

	file, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier 'cover' manquant"})
		return
	}

	objectPath, err := services.UploadCover(c.Request.Context(), bookID.String(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload: " + err.Error()})
		return
	}

	if err := session.Query(`UPDATE books SET image_url = ?, updated_at = ? WHERE book_id = ?`,
		objectPath, time.Now(), bookID).WithContext(c.Request.Context()).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour livre"})
		return
	}

	cache.InvalidateBook(context.Background(), bookID)

	c.JSON(http.StatusOK, gin.H{"image_url": objectPath})
}

// GetCoverURL renvoie une URL signée temporaire pour la couverture
func GetCoverURL(c *gin.Context) {
	bookID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de livre invalide"})
		return
	}

	b, err := cache.GetBookFromCache(bookID)
	if err != nil || b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Livre introuvable"})
		return
	}
	if b.ImageURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pas de couverture pour ce livre"})
		return
	}

	signedURL, err := services.GenerateSignedURL(c.Request.Context(), b.ImageURL, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL, "expires_in": 900})
}
