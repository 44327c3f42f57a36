package book

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"relivre_back_end/internal/cache"
	"relivre_back_end/internal/services"
)

// SearchBooks interroge Elasticsearch ; si l'index est indisponible, on
// retombe sur un filtrage du catalogue Scylla (via le cache listing).
func SearchBooks(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre 'q' requis"})
		return
	}

	results, err := services.SearchBooks(query)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"source": "elasticsearch", "results": results})
		return
	}

	log.Printf("⚠️ Elasticsearch indisponible, fallback Scylla: %v", err)

	books, hit := cache.GetCachedListing(c.Request.Context())
	if !hit {
		// Pas de cache et pas d'ES : on renvoie vide plutôt qu'un scan complet
		c.JSON(http.StatusOK, gin.H{"source": "fallback", "results": []any{}})
		return
	}

	needle := strings.ToLower(query)
	matched := books[:0:0]
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.Author), needle) ||
			strings.Contains(strings.ToLower(b.Description), needle) {
			matched = append(matched, b)
		}
	}

	c.JSON(http.StatusOK, gin.H{"source": "fallback", "results": matched})
}
