// Package checkout transforme le panier d'un acheteur en commande
// persistée. La séquence est une suite d'écritures distantes indépendantes,
// sans atomicité inter-étapes : l'orchestration est isolée ici pour qu'une
// future version puisse la rendre transactionnelle sans toucher aux
// handlers.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"

	"relivre_back_end/internal/models"
	"relivre_back_end/internal/pricing"
)

var (
	// ErrNotAuthenticated : pas de session active
	ErrNotAuthenticated = errors.New("utilisateur non authentifié")
	// ErrEmptyCart : rien à commander
	ErrEmptyCart = errors.New("panier vide")
	// ErrBookNotFound : un livre du panier n'existe plus au moment du checkout
	ErrBookNotFound = errors.New("livre introuvable")
)

// Adresse provisoire posée à la création ; la vraie adresse arrive au
// moment du paiement.
const placeholderAddress = "To be provided"

// CartStore expose les lignes de panier d'un acheteur.
type CartStore interface {
	List(ctx context.Context, userID string) ([]models.CartLine, error)
	DeleteLines(ctx context.Context, userID string, bookIDs []gocql.UUID) error
}

// BookStore relit le prix et le stock courants d'un livre (source du
// snapshot de prix).
type BookStore interface {
	Get(ctx context.Context, bookID gocql.UUID) (*models.Book, error)
}

// CouponStore cherche un coupon actif par code normalisé.
type CouponStore interface {
	FindActiveByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// OrderStore écrit la commande et ses lignes (deux écritures séparées).
type OrderStore interface {
	CreateOrder(ctx context.Context, order models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
}

type Orchestrator struct {
	Carts   CartStore
	Books   BookStore
	Coupons CouponStore
	Orders  OrderStore
}

func New(carts CartStore, books BookStore, coupons CouponStore, orders OrderStore) *Orchestrator {
	return &Orchestrator{Carts: carts, Books: books, Coupons: coupons, Orders: orders}
}

// PlaceOrder exécute la séquence de checkout :
//  1. lecture du panier (ErrEmptyCart si vide)
//  2. relecture de chaque livre pour figer prix et titre
//  3. calcul du devis via le moteur de prix (coupon optionnel)
//  4. insertion de la commande (status=pending, adresse provisoire)
//  5. insertion des lignes de commande avec prix snapshotté
//  6. suppression des lignes de panier du lot
//
// Chaque étape est une écriture distante indépendante. Si l'étape 4 échoue,
// rien d'autre n'est écrit. Si l'étape 5 échoue après la 4, la commande
// existe sans lignes. Si la 6 échoue, la commande est complète mais le
// panier n'est pas vidé. Ces trous sont assumés : aucune compensation,
// aucun retry, l'erreur remonte telle quelle.
func (o *Orchestrator) PlaceOrder(ctx context.Context, buyerID, couponCode string) (*models.Order, error) {
	if buyerID == "" {
		return nil, ErrNotAuthenticated
	}

	// 1. Panier courant
	lines, err := o.Carts.List(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	// 2. Snapshot prix/titre depuis le store livres
	priced := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		book, err := o.Books.Get(ctx, line.BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, ErrBookNotFound
		}
		priced = append(priced, pricing.Line{
			BookID:   line.BookID.String(),
			Title:    book.Title,
			Price:    book.Price,
			Quantity: line.Quantity,
		})
	}

	// 3. Devis (coupon optionnel)
	var coupon *models.Coupon
	if couponCode != "" {
		coupon, err = o.Coupons.FindActiveByCode(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		if coupon == nil {
			return nil, pricing.ErrCouponNotFound
		}
	}
	quote, err := pricing.Compute(priced, coupon)
	if err != nil {
		return nil, err
	}

	// 4. Commande en pending — si cette écriture échoue, on s'arrête avant
	// toute ligne orpheline.
	order := models.Order{
		ID:              gocql.TimeUUID(),
		BuyerID:         buyerID,
		TotalAmount:     quote.Total,
		DiscountAmount:  quote.Discount,
		CouponCode:      quote.CouponCode,
		ShippingAddress: placeholderAddress,
		Status:          models.OrderStatusPending,
		CreatedAt:       time.Now(),
	}
	if err := o.Orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	// 5. Lignes de commande avec prix figé
	items := make([]models.OrderItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, models.OrderItem{
			OrderID:  order.ID,
			BookID:   line.BookID,
			Title:    priced[i].Title,
			Quantity: line.Quantity,
			Price:    priced[i].Price,
		})
	}
	if err := o.Orders.CreateItems(ctx, items); err != nil {
		// La commande existe déjà sans lignes : état incohérent mais non
		// corrompant, remonté comme échec générique.
		return nil, err
	}
	order.Items = items

	// 6. Vidage du lot de panier
	bookIDs := make([]gocql.UUID, 0, len(lines))
	for _, line := range lines {
		bookIDs = append(bookIDs, line.BookID)
	}
	if err := o.Carts.DeleteLines(ctx, buyerID, bookIDs); err != nil {
		// Commande complète, panier intact : l'acheteur peut re-commander
		// les mêmes lignes (doublon possible, assumé).
		return nil, err
	}

	return &order, nil
}
