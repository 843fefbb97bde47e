package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"soltienda/internal/domain"
	applog "soltienda/internal/log"
	"soltienda/internal/repos"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyCart     = errors.New("cart is empty")

	// ErrTotalMismatch rejects a client-supplied total that disagrees with the
	// sum of the submitted items.
	ErrTotalMismatch = errors.New("total does not match items")
)

type OrderService struct {
	Carts  *repos.CartRepo
	Orders *repos.OrderRepo
}

func NewOrderService(carts *repos.CartRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Carts: carts, Orders: orders}
}

func itemsTotal(items []domain.OrderItem) float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Create persists a new pending order from an already-validated item list.
// The id and createdAt are server-generated; the total is recomputed from the
// items, and a client total that disagrees is rejected (clientTotal < 0 means
// the client sent none).
func (s *OrderService) Create(info domain.CustomerInfo, items []domain.OrderItem, paymentMethod string, clientTotal float64) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 || it.Price < 0 {
			return domain.Order{}, fmt.Errorf("%w: bad line item %q", ErrTotalMismatch, it.ProductID)
		}
	}

	total := itemsTotal(items)
	if clientTotal >= 0 && math.Abs(clientTotal-total) > 0.005 {
		return domain.Order{}, fmt.Errorf("%w: client %.2f, items %.2f", ErrTotalMismatch, clientTotal, total)
	}

	// Merge repeated product ids into a single line, mirroring the cart's
	// one-line-per-product shape. The rebuilt slice also keeps the stored
	// order from aliasing the caller's items.
	snapshot := make([]domain.OrderItem, 0, len(items))
	index := map[string]int{}
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			if snapshot[i].Price != it.Price {
				return domain.Order{}, fmt.Errorf("%w: conflicting prices for %q", ErrTotalMismatch, it.ProductID)
			}
			snapshot[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(snapshot)
		snapshot = append(snapshot, it)
	}

	o := domain.Order{
		ID:            newID(),
		CustomerInfo:  info,
		Items:         snapshot,
		PaymentMethod: paymentMethod,
		Total:         total,
		Status:        domain.StatusPending,
		CreatedAt:     now(),
	}
	if err := s.Orders.Create(o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// Checkout converts the session cart into a pending order. The cart is cleared
// only after the order is stored, so a failed submission can be retried.
func (s *OrderService) Checkout(sessionID string, info domain.CustomerInfo, paymentMethod string) (domain.Order, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return domain.Order{}, err
	}
	lines, _, err := s.Carts.View(cartID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Qty,
			ImageURL:  l.ImageURL,
		})
	}

	o, err := s.Create(info, items, paymentMethod, -1)
	if err != nil {
		return domain.Order{}, err
	}
	// The order is already stored; a failed clear must not undo the sale.
	if err := s.Carts.Clear(cartID); err != nil {
		applog.Error(nil, "checkout.cart.clear.fail", err, map[string]any{"order_id": o.ID, "cart_id": cartID})
	}
	return o, nil
}

func (s *OrderService) Get(id string) (domain.Order, error) {
	o, err := s.Orders.Get(id)
	if err == sql.ErrNoRows {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) List() ([]domain.Order, error) {
	return s.Orders.List()
}

// UpdateStatus moves an order along the lifecycle and returns the updated
// record. Illegal moves surface domain.ErrInvalidTransition untouched.
func (s *OrderService) UpdateStatus(id string, next domain.Status) (domain.Order, error) {
	if err := s.Orders.UpdateStatus(id, next, now()); err != nil {
		if err == sql.ErrNoRows {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, err
	}
	return s.Get(id)
}
