package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"relivre_back_end/internal/auth"
)

var Providers = map[string]*auth.OAuthProvider{}

func InitProviders() {
	Providers["google"] = &auth.OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
			Scopes:       []string{"email"},
			Endpoint:     google.Endpoint,
		},
	}

	Providers["facebook"] = &auth.OAuthProvider{
		Name: "facebook",
		Config: &oauth2.Config{
			ClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
			ClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("FACEBOOK_REDIRECT_URL"),
			Scopes:       []string{"email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://www.facebook.com/v15.0/dialog/oauth",
				TokenURL: "https://graph.facebook.com/v15.0/oauth/access_token",
			},
		},
	}
}

// ListProviders renvoie les URLs d'autorisation pour les clients mobiles
// qui gèrent eux-mêmes la redirection.
func ListProviders(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		state = "relivre"
	}

	urls := make(map[string]string, len(Providers))
	for name, p := range Providers {
		urls[name] = p.GetAuthURL(state)
	}

	c.JSON(http.StatusOK, gin.H{"providers": urls})
}

// ExchangeCode échange un code d'autorisation contre un token côté serveur
// (flux mobile, hors goth).
func ExchangeCode(c *gin.Context) {
	var input struct {
		Provider string `json:"provider"`
		Code     string `json:"code"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider, ok := Providers[input.Provider]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider inconnu"})
		return
	}

	token, err := provider.Exchange(c.Request.Context(), input.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "échange du code impossible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token.AccessToken,
		"expiry":       token.Expiry,
	})
}
