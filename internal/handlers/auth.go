package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
	"golang.org/x/crypto/bcrypt"

	"relivre_back_end/internal/database"
	"relivre_back_end/internal/models"
	"relivre_back_end/internal/utils"
)

type ctxKey string

const providerKey ctxKey = "provider"

// ================== AUTH LOCALE ==================

func Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email et mot de passe requis"})
		return
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base utilisateurs indisponible"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	newUser := models.User{
		ID:        uuid.NewString(),
		Name:      input.Name,
		Email:     input.Email,
		Password:  string(hashedPassword),
		Provider:  "local",
		CreatedAt: time.Now(),
	}

	// LWT sur la table de lookup : l'email est la clé, doublon refusé
	previous := make(map[string]interface{})
	applied, err := usersSession.Query(`
		INSERT INTO users_by_email (email, user_id, name, password, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		newUser.Email, newUser.ID, newUser.Name, newUser.Password, newUser.Provider, newUser.CreatedAt,
	).WithContext(ctx).MapScanCAS(previous)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Un compte avec cet email existe déjà",
			"email": input.Email,
		})
		return
	}

	if err := usersSession.Query(`
		INSERT INTO users (id, email, name, password, provider, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		newUser.ID, newUser.Email, newUser.Name, newUser.Password, newUser.Provider, newUser.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	utils.LogAction(c, utils.ActionUserSignup, "user", newUser.ID)

	c.JSON(http.StatusCreated, gin.H{
		"id":    newUser.ID,
		"email": newUser.Email,
		"name":  newUser.Name,
	})
}

func Signin(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base utilisateurs indisponible"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = usersSession.Query(`
		SELECT email, user_id, name, password, provider, created_at
		FROM users_by_email WHERE email = ?`, input.Email,
	).WithContext(ctx).Scan(&user.Email, &user.ID, &user.Name, &user.Password, &user.Provider, &user.CreatedAt)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	if user.Provider != "local" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Compte lié à un provider externe"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.LogFailedAction(c, utils.ActionUserSignin, "user", user.ID, "mot de passe incorrect")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ActionUserSignin, "user", user.ID)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"name":   user.Name,
		"email":  user.Email,
	})
}

func Me(c *gin.Context) {
	userID, _ := c.Get("user_id")
	email, _ := c.Get("email")
	name, _ := c.Get("name")

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"email":   email,
		"name":    name,
	})
}

// ================== AUTH SOCIALE ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), providerKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), providerKey, provider),
	)

	userInfo, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base utilisateurs indisponible"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = usersSession.Query(`
		SELECT email, user_id, name, password, provider, created_at
		FROM users_by_email WHERE email = ?`, userInfo.Email,
	).WithContext(ctx).Scan(&user.Email, &user.ID, &user.Name, &user.Password, &user.Provider, &user.CreatedAt)

	if err != nil {
		// Première connexion sociale : création du compte
		user = models.User{
			ID:        uuid.NewString(),
			Email:     userInfo.Email,
			Name:      userInfo.Name,
			Provider:  provider,
			CreatedAt: time.Now(),
		}

		if err := usersSession.Query(`
			INSERT INTO users_by_email (email, user_id, name, password, provider, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			user.Email, user.ID, user.Name, "", user.Provider, user.CreatedAt,
		).WithContext(ctx).Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement utilisateur"})
			return
		}

		if err := usersSession.Query(`
			INSERT INTO users (id, email, name, password, provider, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			user.ID, user.Email, user.Name, "", user.Provider, user.CreatedAt,
		).WithContext(ctx).Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement utilisateur"})
			return
		}
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"provider": provider,
		"email":    user.Email,
		"name":     user.Name,
	})
}
