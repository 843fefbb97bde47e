package services

import (
	"soltienda/internal/domain"
	"soltienda/internal/repos"
)

// DashboardService derives admin summary statistics by scanning orders and
// products on every request. Nothing here is cached or stored; the source of
// truth is always the repositories.
type DashboardService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
}

func NewDashboardService(orders *repos.OrderRepo, prods *repos.ProductRepo) *DashboardService {
	return &DashboardService{Orders: orders, Prods: prods}
}

type DashboardStats struct {
	TotalOrders     int                 `json:"totalOrders"`
	TotalCustomers  int                 `json:"totalCustomers"`
	TotalRevenue    float64             `json:"totalRevenue"`
	TotalProducts   int                 `json:"totalProducts"`
	RecentOrders    []repos.RecentOrder `json:"recentOrders"`
	ProductStats    []repos.ProductStat `json:"productStats"`
	RecentCustomers []domain.Customer   `json:"recentCustomers"`
}

// Stats assembles the dashboard projection. Revenue excludes cancelled orders.
func (s *DashboardService) Stats() (DashboardStats, error) {
	orders, err := s.Orders.Count()
	if err != nil {
		return DashboardStats{}, err
	}
	revenue, err := s.Orders.Revenue()
	if err != nil {
		return DashboardStats{}, err
	}
	products, err := s.Prods.Count()
	if err != nil {
		return DashboardStats{}, err
	}
	recent, err := s.Orders.Recent(5)
	if err != nil {
		return DashboardStats{}, err
	}
	top, err := s.Orders.TopProducts(5)
	if err != nil {
		return DashboardStats{}, err
	}
	customers, err := s.Orders.Customers()
	if err != nil {
		return DashboardStats{}, err
	}

	recentCustomers := customers
	if len(recentCustomers) > 5 {
		recentCustomers = recentCustomers[:5]
	}

	return DashboardStats{
		TotalOrders:     orders,
		TotalCustomers:  len(customers),
		TotalRevenue:    revenue,
		TotalProducts:   products,
		RecentOrders:    recent,
		ProductStats:    top,
		RecentCustomers: recentCustomers,
	}, nil
}

// Customers exposes the derived customer list (grouped by order email).
func (s *DashboardService) Customers() ([]domain.Customer, error) {
	return s.Orders.Customers()
}
