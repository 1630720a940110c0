package server

import (
	"net/http"

	"store/internal/config"
	"store/internal/handler"
	"store/internal/metrics"
	"store/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// 全ハンドラをまとめてDIする
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	Category      *handler.CategoryHandler
	Cart          *handler.CartHandler
	Checkout      *handler.CheckoutHandler
	Sale          *handler.SaleHandler
	AdminProduct  *handler.AdminProductHandler
	AdminCategory *handler.AdminCategoryHandler
	AdminSupplier *handler.AdminSupplierHandler
	AdminSale     *handler.AdminSaleHandler
}

// New はechoを組み立てて返す。Startと分けてあるのはテストで使うため
func New(cfg config.Config, h Handlers, userRepo repository.UserRepository, promReg *prometheus.Registry) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, cfg, h, userRepo)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if promReg != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(promReg)))
	}

	return e
}

func Start(cfg config.Config, h Handlers, userRepo repository.UserRepository, promReg *prometheus.Registry) error {
	e := New(cfg, h, userRepo, promReg)
	return e.Start(":" + cfg.Port)
}
