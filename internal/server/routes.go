package server

import (
	"store/internal/config"
	"store/internal/repository"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, userRepo repository.UserRepository) {
	//公開
	h.Product.RegisterRoutes(e)
	h.Category.RegisterRoutes(e)

	//要ログイン
	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Checkout.RegisterRoutes(e, cfg, userRepo)
	h.Sale.RegisterRoutes(e, cfg, userRepo)

	//管理者のみ
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminCategory.RegisterRoutes(e, cfg, userRepo)
	h.AdminSupplier.RegisterRoutes(e, cfg, userRepo)
	h.AdminSale.RegisterRoutes(e, cfg, userRepo)
}
