package handler

import (
	"net/http"
	"time"

	"store/internal/config"
	"store/internal/metrics"
	"store/internal/middleware"
	"store/internal/repository"
	"store/internal/usecase"

	"github.com/labstack/echo/v4"
)

// POST /checkout のHTTP
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
	m  *metrics.CheckoutMetrics
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase, m *metrics.CheckoutMetrics) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, m: m}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.POST("", h.checkout)
}

// bodyは受けない。誰のカートを確定するかはトークンだけで決まる
func (h *CheckoutHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	start := time.Now()
	out, err := h.uc.Checkout(c.Request().Context(), userID)
	h.observe(err, time.Since(start))

	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *CheckoutHandler) observe(err error, d time.Duration) {
	if h.m == nil {
		return
	}

	h.m.Duration.Observe(d.Seconds())

	result := "completed"
	if err != nil {
		result = "error"
		if he, ok := usecase.AsHTTPError(err); ok {
			switch he.Code {
			case usecase.CodeEmptyCart:
				result = "empty_cart"
			case usecase.CodeInsufficientStock, usecase.CodeOutOfStock:
				result = "insufficient_stock"
			case usecase.CodeTransactionConflict:
				result = "conflict"
			case usecase.CodePaymentFailed:
				result = "payment_failed"
			}
		}
	}

	h.m.Attempts.WithLabelValues(result).Inc()
}
