package repos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"soltienda/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartItemRow struct {
	ProductID string  `db:"product_id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	ImageURL  string  `db:"image_url" json:"imageUrl,omitempty"`
	Qty       int     `db:"qty" json:"quantity"`
	Subtotal  float64 `db:"subtotal" json:"subtotal"`
}

func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	if err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID); err == nil {
		return cartID, nil
	}
	_, err := r.db.Exec(`INSERT INTO carts(id,session_id,total,updated_at) VALUES(?,?,0,?)`,
		sessionID, sessionID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// AddItem inserts a line with the product's current name/price/image, or bumps
// qty when the product is already in the cart. The cart total grows by
// price*qty in both cases; the snapshot price is kept on the existing line, so
// a catalog price change never touches a pending cart.
func (r *CartRepo) AddItem(cartID string, p domain.Product, qty int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var linePrice float64
	err = tx.Get(&linePrice, `SELECT price FROM cart_items WHERE cart_id=? AND product_id=?`, cartID, p.ID)
	switch err {
	case nil:
		if _, err := tx.Exec(`
			UPDATE cart_items SET qty = qty + ?, updated_at = CURRENT_TIMESTAMP
			WHERE cart_id = ? AND product_id = ?
		`, qty, cartID, p.ID); err != nil {
			return err
		}
	case sql.ErrNoRows:
		linePrice = p.Price
		if _, err := tx.Exec(`
			INSERT INTO cart_items(cart_id,product_id,name,price,image_url,qty,created_at)
			VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
		`, cartID, p.ID, p.Name, p.Price, p.ImageURL, qty); err != nil {
			return err
		}
	default:
		return err
	}

	if _, err := tx.Exec(`
		UPDATE carts SET total = total + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, linePrice*float64(qty), cartID); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateQty sets the quantity of an existing line, adjusting the cart total by
// the delta. A quantity of zero or less removes the line. Returns
// sql.ErrNoRows when the product is not in the cart.
func (r *CartRepo) UpdateQty(cartID, productID string, qty int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var old struct {
		Qty   int     `db:"qty"`
		Price float64 `db:"price"`
	}
	if err := tx.Get(&old, `SELECT qty, price FROM cart_items WHERE cart_id=? AND product_id=?`, cartID, productID); err != nil {
		return err
	}

	if qty <= 0 {
		if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id=? AND product_id=?`, cartID, productID); err != nil {
			return err
		}
		qty = 0
	} else {
		if _, err := tx.Exec(`
			UPDATE cart_items SET qty = ?, updated_at = CURRENT_TIMESTAMP
			WHERE cart_id = ? AND product_id = ?
		`, qty, cartID, productID); err != nil {
			return err
		}
	}

	delta := old.Price * float64(qty-old.Qty)
	if _, err := tx.Exec(`
		UPDATE carts SET total = total + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, delta, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveItem deletes the line and shrinks the total by price*qty.
func (r *CartRepo) RemoveItem(cartID, productID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var old struct {
		Qty   int     `db:"qty"`
		Price float64 `db:"price"`
	}
	if err := tx.Get(&old, `SELECT qty, price FROM cart_items WHERE cart_id=? AND product_id=?`, cartID, productID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id=? AND product_id=?`, cartID, productID); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		UPDATE carts SET total = total - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, old.Price*float64(old.Qty), cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CartRepo) Clear(cartID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE carts SET total = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

// View returns the cart lines plus the incrementally-maintained total.
func (r *CartRepo) View(cartID string) ([]CartItemRow, float64, error) {
	rows := []CartItemRow{}
	if err := r.db.Select(&rows, `
	  SELECT product_id, name, price, COALESCE(image_url,'') AS image_url, qty,
	         (qty*price) AS subtotal
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY created_at, product_id
	`, cartID); err != nil {
		return nil, 0, err
	}
	var total float64
	if err := r.db.Get(&total, `SELECT total FROM carts WHERE id = ?`, cartID); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
