package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"relivre_back_end/internal/handlers"
	"relivre_back_end/internal/handlers/book"
	"relivre_back_end/internal/handlers/cart"
	"relivre_back_end/internal/handlers/order"
	"relivre_back_end/internal/handlers/payment"
	"relivre_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(corsConfig())

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/signup", middleware.SignupRateLimit(), handlers.Signup)
		auth.POST("/signin", middleware.SigninRateLimit(), handlers.Signin)
		auth.GET("/me", middleware.AuthRequired(), handlers.Me)
		auth.GET("/providers", handlers.ListProviders)
		auth.POST("/exchange", handlers.ExchangeCode)
		auth.GET("/:provider", handlers.BeginAuth)
		auth.GET("/:provider/callback", handlers.CallbackAuth)
	}

	// Catalogue
	books := api.Group("/books")
	{
		books.GET("", book.GetAllBooks)
		books.GET("/search", book.SearchBooks)
		books.GET("/:id", book.GetBookByID)
		books.GET("/:id/cover", book.GetCoverURL)
		books.POST("", middleware.AuthRequired(), book.CreateBook)
		books.POST("/:id/cover", middleware.AuthRequired(), book.UploadCover)
	}

	// Panier (tout sous session)
	cartGroup := api.Group("/cart", middleware.AuthRequired())
	{
		cartGroup.GET("", cart.GetCart)
		cartGroup.GET("/ws", cart.CartWebSocket)
		cartGroup.POST("/add", cart.AddToCart)
		cartGroup.PUT("", cart.UpsertCartItem)
		cartGroup.PATCH("/:bookId/quantity", cart.UpdateQuantity)
		cartGroup.DELETE("/:bookId", cart.RemoveFromCart)
		cartGroup.DELETE("", cart.ClearCart)
		cartGroup.POST("/coupon", cart.ApplyCoupon)
		cartGroup.DELETE("/coupon", cart.RemoveCoupon)
	}

	// Coupons
	coupons := api.Group("/coupons", middleware.AuthRequired())
	{
		coupons.GET("/validate", payment.ValidateCoupon)
		coupons.POST("", payment.CreateCoupon)
	}

	// Checkout et commandes
	api.POST("/checkout", middleware.AuthRequired(), payment.Checkout)

	orders := api.Group("/orders", middleware.AuthRequired())
	{
		orders.GET("", order.GetMyOrders)
		orders.GET("/:id", order.GetOrderByID)
		orders.POST("/:id/pay", order.PayOrder)
	}
}

func corsConfig() gin.HandlerFunc {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000"
	}

	return cors.New(cors.Config{
		AllowOrigins:     strings.Split(origins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
