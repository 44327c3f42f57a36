package database

import "github.com/gocql/gocql"

// Requêtes du chemin chaud panier. Chaque appel construit un *gocql.Query
// neuf : Bind mute la requête en place, donc un Query partagé entre
// goroutines mélangerait les paramètres de deux requêtes concurrentes.
// gocql prépare et met en cache les statements côté session.

const (
	cqlListCartLines  = `SELECT book_id, quantity, created_at FROM cart_items WHERE user_id = ?`
	cqlGetCartLine    = `SELECT quantity FROM cart_items WHERE user_id = ? AND book_id = ?`
	cqlUpdateCartLine = `UPDATE cart_items SET quantity = ? WHERE user_id = ? AND book_id = ?`
	cqlDeleteCartLine = `DELETE FROM cart_items WHERE user_id = ? AND book_id = ?`
)

func ListCartLinesQuery() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlListCartLines), nil
}

func GetCartLineQuery() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlGetCartLine), nil
}

func UpdateCartLineQuery() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlUpdateCartLine), nil
}

func DeleteCartLineQuery() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlDeleteCartLine), nil
}
