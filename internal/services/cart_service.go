package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"soltienda/internal/repos"
)

var (
	ErrItemNotFound = errors.New("item not in cart")

	// ErrCartTotalDrift signals that the incrementally-maintained cart total
	// no longer equals the sum of its lines.
	ErrCartTotalDrift = errors.New("cart total out of sync with items")
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

func (s *CartService) Add(sessionID, productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	p, err := s.Prods.Get(productID)
	if err == sql.ErrNoRows {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	return s.Carts.AddItem(cartID, p, qty)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(sessionID, productID string, qty int) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	if err := s.Carts.UpdateQty(cartID, productID, qty); err != nil {
		if err == sql.ErrNoRows {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

func (s *CartService) Remove(sessionID, productID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	if err := s.Carts.RemoveItem(cartID, productID); err != nil {
		if err == sql.ErrNoRows {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

func (s *CartService) Clear(sessionID string) error {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.Clear(cartID)
}

type CartView struct {
	Items []repos.CartItemRow `json:"items"`
	Total float64             `json:"total"`
}

// View returns the cart and checks the running total against the sum of its
// lines. The two must always agree.
func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, total, err := s.Carts.View(cartID)
	if err != nil {
		return CartView{}, err
	}
	sum := 0.0
	for _, it := range items {
		sum += it.Subtotal
	}
	if math.Abs(sum-total) > 0.005 {
		return CartView{}, fmt.Errorf("%w: stored %.2f, items %.2f", ErrCartTotalDrift, total, sum)
	}
	return CartView{Items: items, Total: total}, nil
}
