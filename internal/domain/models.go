package domain

type Product struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Currency    string  `db:"currency" json:"currency"` // USD | ARS
	Category    string  `db:"category" json:"category"`
	Stock       int     `db:"stock" json:"stock"`
	ImageURL    string  `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt   string  `db:"created_at" json:"createdAt"`
	UpdatedAt   string  `db:"updated_at" json:"updatedAt,omitempty"`
}

type CustomerInfo struct {
	Name    string `db:"customer_name" json:"name"`
	Email   string `db:"customer_email" json:"email"`
	Phone   string `db:"customer_phone" json:"phone"`
	Address string `db:"customer_address" json:"address"`
}

// OrderItem is a snapshot of a product at submission time. Name, price and
// image are denormalized so later catalog edits never alter a stored order.
type OrderItem struct {
	ProductID string  `db:"product_id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Quantity  int     `db:"qty" json:"quantity"`
	ImageURL  string  `db:"image_url" json:"imageUrl,omitempty"`
}

type Order struct {
	ID            string       `db:"id" json:"id"`
	CustomerInfo  CustomerInfo `json:"customerInfo"`
	Items         []OrderItem  `json:"items"`
	PaymentMethod string       `db:"payment_method" json:"paymentMethod"` // cash | card | transfer
	Total         float64      `db:"total" json:"total"`
	Status        Status       `db:"status" json:"status"`
	CreatedAt     string       `db:"created_at" json:"createdAt"`
	UpdatedAt     string       `db:"updated_at" json:"updatedAt,omitempty"`
}

// Customer is a projection grouped from orders by email. It has no stored
// identity of its own.
type Customer struct {
	Email         string  `db:"email" json:"email"`
	Name          string  `db:"name" json:"name"`
	TotalOrders   int     `db:"total_orders" json:"totalOrders"`
	TotalSpent    float64 `db:"total_spent" json:"totalSpent"`
	LastOrderDate string  `db:"last_order_date" json:"lastOrderDate"`
}
