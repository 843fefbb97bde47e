package handlers

import (
	"github.com/jmoiron/sqlx"

	"soltienda/internal/config"
	"soltienda/internal/repos"
	"soltienda/internal/services"
)

type Deps struct {
	ProductHandler   *ProductHandler
	CartHandler      *CartHandler
	OrderHandler     *OrderHandler
	DashboardHandler *DashboardHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, cfg.UploadDir)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	orderSvc := services.NewOrderService(cartRepo, orderRepo)
	dashSvc := services.NewDashboardService(orderRepo, prodRepo)

	return &Deps{
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, UploadDir: cfg.UploadDir},
		CartHandler:      &CartHandler{Cart: cartSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc},
		DashboardHandler: &DashboardHandler{Dash: dashSvc},
	}
}
