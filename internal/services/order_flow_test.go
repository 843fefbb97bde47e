package services_test

import (
	"errors"
	"math"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"soltienda/internal/domain"
	"soltienda/internal/repos"
	"soltienda/internal/services"
)

func memdbAll(t *testing.T) *sqlx.DB {
	t.Helper()
	db := memdb(t)
	schema := `
	CREATE TABLE orders(id TEXT PRIMARY KEY, customer_name TEXT, customer_email TEXT,
	  customer_phone TEXT, customer_address TEXT, payment_method TEXT, total NUMERIC,
	  status TEXT, created_at TEXT, updated_at TEXT);
	CREATE TABLE order_items(order_id TEXT, product_id TEXT, name TEXT, price NUMERIC,
	  qty INTEGER, image_url TEXT, PRIMARY KEY(order_id, product_id));
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

var buyer = domain.CustomerInfo{
	Name:    "Marta Suarez",
	Email:   "marta@example.com",
	Phone:   "(11) 5555-0134",
	Address: "Av. Rivadavia 1234, CABA",
}

func TestOrderCreateTotals(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewOrderService(repos.NewCartRepo(db), repos.NewOrderRepo(db))

	items := []domain.OrderItem{
		{ProductID: "a", Name: "A", Price: 10, Quantity: 2},
		{ProductID: "b", Name: "B", Price: 5, Quantity: 1},
	}
	o, err := svc.Create(buyer, items, "cash", -1)
	if err != nil {
		t.Fatal(err)
	}
	if o.Total != 25 {
		t.Fatalf("want total 25, got %v", o.Total)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("new order must be pending, got %s", o.Status)
	}
	if o.ID == "" || o.CreatedAt == "" {
		t.Fatalf("server must stamp id and createdAt: %+v", o)
	}

	// Mutating the caller's slice must not reach the stored order
	items[0].Quantity = 99
	items[0].Price = 0
	stored, err := svc.Get(o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Items[0].Quantity == 99 || stored.Total != 25 {
		t.Fatalf("stored order aliases caller items: %+v", stored)
	}
}

func TestOrderCreateRejectsBadTotalAndEmptyItems(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewOrderService(repos.NewCartRepo(db), repos.NewOrderRepo(db))

	if _, err := svc.Create(buyer, nil, "cash", -1); !errors.Is(err, services.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}

	items := []domain.OrderItem{{ProductID: "a", Name: "A", Price: 10, Quantity: 2}}
	if _, err := svc.Create(buyer, items, "cash", 31); !errors.Is(err, services.ErrTotalMismatch) {
		t.Fatalf("want ErrTotalMismatch, got %v", err)
	}
	// Matching client total is accepted
	if _, err := svc.Create(buyer, items, "cash", 20); err != nil {
		t.Fatal(err)
	}
}

func TestCheckoutFlow(t *testing.T) {
	db := memdbAll(t)
	cartRepo := repos.NewCartRepo(db)
	prodRepo := repos.NewProductRepo(db)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(cartRepo, repos.NewOrderRepo(db))

	sid := "test-session"

	// Empty cart blocks submission and leaves nothing behind
	if _, err := orderSvc.Checkout(sid, buyer, "transfer"); !errors.Is(err, services.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}

	if err := cartSvc.Add(sid, "panel-450w", 2); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add(sid, "ctrl-mppt-40a", 1); err != nil {
		t.Fatal(err)
	}

	o, err := orderSvc.Checkout(sid, buyer, "transfer")
	if err != nil {
		t.Fatal(err)
	}
	want := 2*185.00 + 95.50
	if math.Abs(o.Total-want) > 0.005 {
		t.Fatalf("want total %.2f, got %.2f", want, o.Total)
	}
	if len(o.Items) != 2 {
		t.Fatalf("want 2 line items, got %d", len(o.Items))
	}

	// Cart is cleared only on success
	cv, err := cartSvc.View(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 0 || cv.Total != 0 {
		t.Fatalf("cart not cleared after checkout: %+v", cv)
	}

	// The stored order is a snapshot; refilling the cart changes nothing
	if err := cartSvc.Add(sid, "panel-450w", 5); err != nil {
		t.Fatal(err)
	}
	stored, err := orderSvc.Get(o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(stored.Total-want) > 0.005 || len(stored.Items) != 2 {
		t.Fatalf("stored order drifted after cart mutation: %+v", stored)
	}
}

func TestOrderRoundTrip(t *testing.T) {
	db := memdbAll(t)
	repo := repos.NewOrderRepo(db)

	in := domain.Order{
		ID:           "1700000000000000001",
		CustomerInfo: buyer,
		Items: []domain.OrderItem{
			{ProductID: "panel-450w", Name: "Panel Solar 450W", Price: 185, Quantity: 2, ImageURL: "/uploads/p.jpg"},
		},
		PaymentMethod: "card",
		Total:         370,
		Status:        domain.StatusPending,
		CreatedAt:     "2026-08-30T12:00:00Z",
	}
	if err := repo.Create(in); err != nil {
		t.Fatal(err)
	}
	out, err := repo.Get(in.ID)
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != in.ID || out.CustomerInfo != in.CustomerInfo || out.PaymentMethod != in.PaymentMethod ||
		out.Total != in.Total || out.Status != in.Status || out.CreatedAt != in.CreatedAt {
		t.Fatalf("header not lossless:\n in=%+v\nout=%+v", in, out)
	}
	if len(out.Items) != 1 || out.Items[0] != in.Items[0] {
		t.Fatalf("items not lossless: %+v", out.Items)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewOrderService(repos.NewCartRepo(db), repos.NewOrderRepo(db))

	items := []domain.OrderItem{{ProductID: "a", Name: "A", Price: 10, Quantity: 1}}
	o, err := svc.Create(buyer, items, "cash", -1)
	if err != nil {
		t.Fatal(err)
	}

	// Missing id fails and touches nothing
	if _, err := svc.UpdateStatus("no-such-order", domain.StatusProcessing); !errors.Is(err, services.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}

	// pending -> completed skips processing and is rejected
	if _, err := svc.UpdateStatus(o.ID, domain.StatusCompleted); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
	unchanged, _ := svc.Get(o.ID)
	if unchanged.Status != domain.StatusPending || unchanged.UpdatedAt != "" {
		t.Fatalf("rejected transition altered the order: %+v", unchanged)
	}

	up, err := svc.UpdateStatus(o.ID, domain.StatusProcessing)
	if err != nil {
		t.Fatal(err)
	}
	if up.Status != domain.StatusProcessing || up.UpdatedAt == "" {
		t.Fatalf("want processing with updatedAt stamped, got %+v", up)
	}

	up, err = svc.UpdateStatus(o.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if up.Status != domain.StatusCompleted {
		t.Fatalf("want completed, got %s", up.Status)
	}

	// completed is terminal
	if _, err := svc.UpdateStatus(o.ID, domain.StatusPending); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("completed must be terminal, got %v", err)
	}
	if _, err := svc.UpdateStatus(o.ID, domain.StatusCancelled); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("completed must be terminal, got %v", err)
	}
}

func TestOrderCreateMergesDuplicateLines(t *testing.T) {
	db := memdbAll(t)
	svc := services.NewOrderService(repos.NewCartRepo(db), repos.NewOrderRepo(db))

	items := []domain.OrderItem{
		{ProductID: "panel-450w", Name: "Panel Solar 450W", Price: 185, Quantity: 1},
		{ProductID: "ctrl-mppt-40a", Name: "Regulador MPPT 40A", Price: 95.50, Quantity: 1},
		{ProductID: "panel-450w", Name: "Panel Solar 450W", Price: 185, Quantity: 2},
	}
	o, err := svc.Create(buyer, items, "cash", -1)
	if err != nil {
		t.Fatal(err)
	}
	stored, err := svc.Get(o.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("want 2 merged lines, got %d: %+v", len(stored.Items), stored.Items)
	}
	for _, it := range stored.Items {
		if it.ProductID == "panel-450w" && it.Quantity != 3 {
			t.Fatalf("want merged qty 3, got %d", it.Quantity)
		}
	}
	want := 3*185.00 + 95.50
	if math.Abs(stored.Total-want) > 0.005 {
		t.Fatalf("want total %.2f, got %.2f", want, stored.Total)
	}

	// The same product at two different prices cannot be merged
	bad := []domain.OrderItem{
		{ProductID: "panel-450w", Name: "Panel Solar 450W", Price: 185, Quantity: 1},
		{ProductID: "panel-450w", Name: "Panel Solar 450W", Price: 180, Quantity: 1},
	}
	if _, err := svc.Create(buyer, bad, "cash", -1); !errors.Is(err, services.ErrTotalMismatch) {
		t.Fatalf("want ErrTotalMismatch for conflicting prices, got %v", err)
	}
}

func TestCheckoutOutlivesCartClearFailure(t *testing.T) {
	db := memdbAll(t)
	cartRepo := repos.NewCartRepo(db)
	cartSvc := services.NewCartService(cartRepo, repos.NewProductRepo(db))
	orderSvc := services.NewOrderService(cartRepo, repos.NewOrderRepo(db))

	sid := "sess-clear-fail"
	if err := cartSvc.Add(sid, "panel-450w", 1); err != nil {
		t.Fatal(err)
	}
	// Make the clear fail after the order is stored
	if _, err := db.Exec(`CREATE TRIGGER cart_locked BEFORE DELETE ON cart_items
		BEGIN SELECT RAISE(ABORT, 'cart locked'); END`); err != nil {
		t.Fatal(err)
	}

	o, err := orderSvc.Checkout(sid, buyer, "cash")
	if err != nil {
		t.Fatalf("a failed cart clear must not undo the sale: %v", err)
	}
	if _, err := orderSvc.Get(o.ID); err != nil {
		t.Fatalf("order not stored: %v", err)
	}
}
