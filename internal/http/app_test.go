package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"soltienda/internal/config"
	"soltienda/internal/http/handlers"
	"soltienda/internal/repos"
	"soltienda/internal/services"
)

// newAPIApp wires the full /api surface against an in-memory database,
// mirroring the route table in cmd/soltienda.
func newAPIApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", UploadDir: t.TempDir()}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}
	deps := handlers.NewDeps(db, cfg)

	app := fiber.New()
	app.Use(requestid.New())

	admin := handlers.RequireAdmin(authSvc)
	api := app.Group("/api")

	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Get("/categories", deps.ProductHandler.Categories)
	api.Post("/products", admin, deps.ProductHandler.Create)
	api.Put("/products/:id", admin, deps.ProductHandler.Update)
	api.Delete("/products/:id", admin, deps.ProductHandler.Delete)

	api.Get("/cart", deps.CartHandler.View)
	api.Post("/cart/items", deps.CartHandler.Add)
	api.Put("/cart/items/:productId", deps.CartHandler.UpdateQuantity)
	api.Delete("/cart/items/:productId", deps.CartHandler.Remove)
	api.Delete("/cart", deps.CartHandler.Clear)
	api.Post("/checkout", deps.OrderHandler.Checkout)

	api.Post("/orders", deps.OrderHandler.Create)
	api.Get("/orders", admin, deps.OrderHandler.List)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Put("/orders/:id/status", admin, deps.OrderHandler.UpdateStatus)
	api.Get("/orders/:id/pdf", deps.OrderHandler.PDF)

	api.Get("/dashboard/stats", admin, deps.DashboardHandler.Stats)
	api.Get("/customers", admin, deps.DashboardHandler.Customers)

	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/me", authH.Me)

	return app, db
}

// jsonReq builds a request carrying a JSON body and, when sid is non-empty,
// the session cookie the cart and auth layers key on.
func jsonReq(method, target, sid string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	return req
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

var testCustomer = map[string]any{
	"name":    "Marta Suarez",
	"email":   "marta@example.com",
	"phone":   "(11) 5555-0134",
	"address": "Av. Rivadavia 1234, CABA",
}
