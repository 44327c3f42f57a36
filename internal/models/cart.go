package models

import (
	"time"

	"github.com/gocql/gocql"
)

// CartLine représente une ligne de panier : au plus une par (user, book),
// garanti par la clé primaire (user_id, book_id) dans ScyllaDB.
type CartLine struct {
	UserID    string     `json:"user_id"`
	BookID    gocql.UUID `json:"book_id"`
	Quantity  int        `json:"quantity"`
	CreatedAt time.Time  `json:"created_at"`

	// Champs joints depuis ks_books.books à la lecture
	Title         string  `json:"title,omitempty"`
	Author        string  `json:"author,omitempty"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url,omitempty"`
	StockQuantity int     `json:"stock_quantity"`
}
