package repos

import (
	"github.com/jmoiron/sqlx"

	"soltienda/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// orderRow flattens the header for sqlx scanning.
type orderRow struct {
	ID            string  `db:"id"`
	CustomerName  string  `db:"customer_name"`
	CustomerEmail string  `db:"customer_email"`
	CustomerPhone string  `db:"customer_phone"`
	CustomerAddr  string  `db:"customer_address"`
	PaymentMethod string  `db:"payment_method"`
	Total         float64 `db:"total"`
	Status        string  `db:"status"`
	CreatedAt     string  `db:"created_at"`
	UpdatedAt     string  `db:"updated_at"`
}

func (r orderRow) toDomain() domain.Order {
	return domain.Order{
		ID: r.ID,
		CustomerInfo: domain.CustomerInfo{
			Name:    r.CustomerName,
			Email:   r.CustomerEmail,
			Phone:   r.CustomerPhone,
			Address: r.CustomerAddr,
		},
		PaymentMethod: r.PaymentMethod,
		Total:         r.Total,
		Status:        domain.Status(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const orderCols = `
  id, customer_name, customer_email, customer_phone, customer_address,
  payment_method, total, status, created_at, COALESCE(updated_at,'') AS updated_at`

// Create persists the header and the item snapshot in one transaction.
func (r *OrderRepo) Create(o domain.Order) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, customer_name, customer_email, customer_phone, customer_address,
	     payment_method, total, status, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.CustomerInfo.Name, o.CustomerInfo.Email, o.CustomerInfo.Phone, o.CustomerInfo.Address,
		o.PaymentMethod, o.Total, string(o.Status), o.CreatedAt); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, name, price, qty, image_url)
		  VALUES (?, ?, ?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Name, it.Price, it.Quantity, it.ImageURL); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var row orderRow
	if err := r.db.Get(&row, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return domain.Order{}, err
	}
	o := row.toDomain()

	items := []domain.OrderItem{}
	if err := r.db.Select(&items, `
	  SELECT product_id, name, price, qty, COALESCE(image_url,'') AS image_url
	  FROM order_items WHERE order_id = ? ORDER BY name
	`, id); err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

// List returns every order with its items, newest first. Callers do their own
// filtering and sorting beyond that.
func (r *OrderRepo) List() ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.Select(&rows, `
	  SELECT `+orderCols+` FROM orders ORDER BY datetime(created_at) DESC, id DESC
	`); err != nil {
		return nil, err
	}

	type itemRow struct {
		OrderID string `db:"order_id"`
		domain.OrderItem
	}
	var items []itemRow
	if err := r.db.Select(&items, `
	  SELECT order_id, product_id, name, price, qty, COALESCE(image_url,'') AS image_url
	  FROM order_items ORDER BY order_id, name
	`); err != nil {
		return nil, err
	}
	byOrder := map[string][]domain.OrderItem{}
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it.OrderItem)
	}

	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o := row.toDomain()
		o.Items = byOrder[o.ID]
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
		out = append(out, o)
	}
	return out, nil
}

// UpdateStatus applies the lifecycle table and stamps updated_at. Returns
// sql.ErrNoRows for a missing id and domain.ErrInvalidTransition for a move
// the table forbids; the row is untouched in both cases.
func (r *OrderRepo) UpdateStatus(id string, next domain.Status, updatedAt string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	if err := tx.Get(&current, `SELECT status FROM orders WHERE id = ?`, id); err != nil {
		return err
	}
	if err := domain.Status(current).Transition(next); err != nil {
		return err
	}
	if _, err := tx.Exec(`
	  UPDATE orders SET status = ?, updated_at = ? WHERE id = ?
	`, string(next), updatedAt, id); err != nil {
		return err
	}
	return tx.Commit()
}

// ---------- Dashboard / customer projections (recomputed per request) ----------

func (r *OrderRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

// Revenue sums order totals excluding cancelled orders.
func (r *OrderRepo) Revenue() (float64, error) {
	var v float64
	err := r.db.Get(&v, `SELECT COALESCE(SUM(total),0) FROM orders WHERE status != 'cancelled'`)
	return v, err
}

type RecentOrder struct {
	ID           string  `db:"id" json:"id"`
	CustomerName string  `db:"customer_name" json:"customerName"`
	Total        float64 `db:"total" json:"total"`
	Status       string  `db:"status" json:"status"`
	Date         string  `db:"created_at" json:"date"`
}

func (r *OrderRepo) Recent(limit int) ([]RecentOrder, error) {
	out := []RecentOrder{}
	err := r.db.Select(&out, `
	  SELECT id, customer_name, total, status, created_at
	  FROM orders ORDER BY datetime(created_at) DESC, id DESC LIMIT ?
	`, limit)
	return out, err
}

// Customers groups orders by email into the derived customer projection. The
// displayed name is taken from the most recent order, not an arbitrary row.
func (r *OrderRepo) Customers() ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := r.db.Select(&out, `
	  SELECT o.customer_email AS email,
	         (SELECT o2.customer_name FROM orders o2
	          WHERE o2.customer_email = o.customer_email
	          ORDER BY datetime(o2.created_at) DESC, o2.id DESC LIMIT 1) AS name,
	         COUNT(*)        AS total_orders,
	         SUM(o.total)    AS total_spent,
	         MAX(o.created_at) AS last_order_date
	  FROM orders o
	  GROUP BY o.customer_email
	  ORDER BY last_order_date DESC
	`)
	return out, err
}

type ProductStat struct {
	Name    string  `db:"name" json:"name"`
	Sold    int     `db:"sold" json:"sold"`
	Revenue float64 `db:"revenue" json:"revenue"`
}

// TopProducts ranks products by the number of orders referencing them (not
// units sold), with the revenue those line items produced. It aggregates the
// order snapshots, so a product deleted from the catalog keeps its place in
// the ranking under its snapshot name.
func (r *OrderRepo) TopProducts(limit int) ([]ProductStat, error) {
	out := []ProductStat{}
	err := r.db.Select(&out, `
	  SELECT oi.name,
	         COUNT(DISTINCT oi.order_id)      AS sold,
	         COALESCE(SUM(oi.price*oi.qty),0) AS revenue
	  FROM order_items oi
	  GROUP BY oi.product_id, oi.name
	  ORDER BY sold DESC, revenue DESC, oi.name
	  LIMIT ?
	`, limit)
	return out, err
}
