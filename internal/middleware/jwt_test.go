package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"relivre_back_end/internal/models"
	"relivre_back_end/internal/utils"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func TestAuthRequiredMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	r := setupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("401 attendu sans token, obtenu %d", w.Code)
	}
}

func TestAuthRequiredBadFormat(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	r := setupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("401 attendu pour un mauvais format, obtenu %d", w.Code)
	}
}

func TestAuthRequiredValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")
	r := setupRouter()

	token, err := utils.GenerateJWT(models.User{ID: "user-42", Email: "lecteur@relivre.fr"})
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("200 attendu avec un token valide, obtenu %d (%s)", w.Code, w.Body.String())
	}
}

func TestAuthRequiredWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "autre_secret")
	token, err := utils.GenerateJWT(models.User{ID: "user-42", Email: "lecteur@relivre.fr"})
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	t.Setenv("JWT_SECRET", "test_secret")
	r := setupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("401 attendu avec une mauvaise signature, obtenu %d", w.Code)
	}
}
