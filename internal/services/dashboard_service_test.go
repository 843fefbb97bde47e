package services_test

import (
	"testing"

	"soltienda/internal/domain"
	"soltienda/internal/repos"
	"soltienda/internal/services"
)

func seedOrder(t *testing.T, svc *services.OrderService, email, name string, items []domain.OrderItem) domain.Order {
	t.Helper()
	info := domain.CustomerInfo{Name: name, Email: email, Phone: "(11) 5555-0000", Address: "Calle Falsa 123"}
	o, err := svc.Create(info, items, "cash", -1)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestDashboardRevenueExcludesCancelled(t *testing.T) {
	db := memdbAll(t)
	orderRepo := repos.NewOrderRepo(db)
	orderSvc := services.NewOrderService(repos.NewCartRepo(db), orderRepo)
	dash := services.NewDashboardService(orderRepo, repos.NewProductRepo(db))

	seedOrder(t, orderSvc, "a@example.com", "Ana", []domain.OrderItem{{ProductID: "x", Name: "X", Price: 100, Quantity: 1}})
	cancelled := seedOrder(t, orderSvc, "b@example.com", "Bruno", []domain.OrderItem{{ProductID: "x", Name: "X", Price: 50, Quantity: 1}})
	if _, err := orderSvc.UpdateStatus(cancelled.ID, domain.StatusCancelled); err != nil {
		t.Fatal(err)
	}

	stats, err := dash.Stats()
	if err != nil {
		t.Fatal(err)
	}
	// Cancelled orders count as orders but never as revenue.
	if stats.TotalOrders != 2 {
		t.Fatalf("want 2 orders, got %d", stats.TotalOrders)
	}
	if stats.TotalRevenue != 100 {
		t.Fatalf("want revenue 100 (cancelled excluded), got %v", stats.TotalRevenue)
	}
	if stats.TotalCustomers != 2 {
		t.Fatalf("want 2 distinct customers, got %d", stats.TotalCustomers)
	}
}

func TestDashboardTopProductsByOrderCount(t *testing.T) {
	db := memdbAll(t)
	orderRepo := repos.NewOrderRepo(db)
	orderSvc := services.NewOrderService(repos.NewCartRepo(db), orderRepo)
	dash := services.NewDashboardService(orderRepo, repos.NewProductRepo(db))

	// panel-450w appears in two orders (one unit each); ctrl-mppt-40a appears
	// in one order with ten units. Ranking is by referencing orders, not units.
	seedOrder(t, orderSvc, "a@example.com", "Ana",
		[]domain.OrderItem{{ProductID: "panel-450w", Name: "Panel Solar 450W", Price: 185, Quantity: 1}})
	seedOrder(t, orderSvc, "b@example.com", "Bruno",
		[]domain.OrderItem{{ProductID: "panel-450w", Name: "Panel Solar 450W", Price: 185, Quantity: 1}})
	seedOrder(t, orderSvc, "c@example.com", "Carla",
		[]domain.OrderItem{{ProductID: "ctrl-mppt-40a", Name: "Regulador MPPT 40A", Price: 95.50, Quantity: 10}})

	stats, err := dash.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.ProductStats) == 0 {
		t.Fatal("no product stats")
	}
	top := stats.ProductStats[0]
	if top.Name != "Panel Solar 450W" || top.Sold != 2 {
		t.Fatalf("want Panel Solar 450W with 2 referencing orders on top, got %+v", top)
	}
}

func TestCustomersProjection(t *testing.T) {
	db := memdbAll(t)
	orderRepo := repos.NewOrderRepo(db)
	orderSvc := services.NewOrderService(repos.NewCartRepo(db), orderRepo)
	dash := services.NewDashboardService(orderRepo, repos.NewProductRepo(db))

	seedOrder(t, orderSvc, "a@example.com", "Ana", []domain.OrderItem{{ProductID: "x", Name: "X", Price: 100, Quantity: 1}})
	seedOrder(t, orderSvc, "a@example.com", "Ana Maria Lopez", []domain.OrderItem{{ProductID: "x", Name: "X", Price: 40, Quantity: 1}})
	seedOrder(t, orderSvc, "b@example.com", "Bruno", []domain.OrderItem{{ProductID: "x", Name: "X", Price: 10, Quantity: 1}})

	customers, err := dash.Customers()
	if err != nil {
		t.Fatal(err)
	}
	if len(customers) != 2 {
		t.Fatalf("want 2 grouped customers, got %d", len(customers))
	}
	var ana domain.Customer
	for _, cu := range customers {
		if cu.Email == "a@example.com" {
			ana = cu
		}
	}
	if ana.TotalOrders != 2 || ana.TotalSpent != 140 {
		t.Fatalf("bad aggregation for repeat customer: %+v", ana)
	}
	// The displayed name follows the most recent order
	if ana.Name != "Ana Maria Lopez" {
		t.Fatalf("want latest order's name, got %q", ana.Name)
	}
}

func TestTopProductsSurviveCatalogDeletion(t *testing.T) {
	db := memdbAll(t)
	orderRepo := repos.NewOrderRepo(db)
	orderSvc := services.NewOrderService(repos.NewCartRepo(db), orderRepo)
	dash := services.NewDashboardService(orderRepo, repos.NewProductRepo(db))

	seedOrder(t, orderSvc, "a@example.com", "Ana",
		[]domain.OrderItem{{ProductID: "ctrl-mppt-40a", Name: "Regulador MPPT 40A", Price: 95.50, Quantity: 2}})
	if _, err := db.Exec(`DELETE FROM products WHERE id = 'ctrl-mppt-40a'`); err != nil {
		t.Fatal(err)
	}

	stats, err := dash.Stats()
	if err != nil {
		t.Fatal(err)
	}
	for _, ps := range stats.ProductStats {
		if ps.Name == "Regulador MPPT 40A" && ps.Sold == 1 {
			return
		}
	}
	t.Fatalf("ordered product vanished from ranking after catalog delete: %+v", stats.ProductStats)
}
