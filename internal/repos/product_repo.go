package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"soltienda/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// List returns the catalog, optionally filtered by a name/description search
// term and a category. Newest first.
func (r *ProductRepo) List(search, category string) ([]domain.Product, error) {
	where := `1=1`
	args := []any{}
	if search != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}

	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT
	    id, name, COALESCE(description,'') AS description, price, currency, category,
	    stock, COALESCE(image_url,'') AS image_url, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC, id DESC
	`, args...)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT
	    id, name, COALESCE(description,'') AS description, price, currency, category,
	    stock, COALESCE(image_url,'') AS image_url, created_at, COALESCE(updated_at,'') AS updated_at
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}

func (r *ProductRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// Categories returns the distinct category ids in use by the catalog.
func (r *ProductRepo) Categories() ([]string, error) {
	out := []string{}
	err := r.db.Select(&out, `SELECT DISTINCT category FROM products ORDER BY category`)
	return out, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, name, description, price, currency, category, stock, image_url, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.Price, p.Currency, p.Category, p.Stock, p.ImageURL, p.CreatedAt)
	return err
}

// Update rewrites the mutable product fields and stamps updated_at.
// Returns sql.ErrNoRows when the id is absent.
func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET name = ?, description = ?, price = ?, currency = ?, category = ?, stock = ?,
	      image_url = ?, updated_at = ?
	  WHERE id = ?
	`, p.Name, p.Description, p.Price, p.Currency, p.Category, p.Stock, p.ImageURL, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
