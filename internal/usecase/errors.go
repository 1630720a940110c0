package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// ビジネスルール違反をクライアントが機械的に判別するためのコード。
// 文面の解析はさせない
const (
	CodeEmptyCart           = "EMPTY_CART"
	CodeOutOfStock          = "OUT_OF_STOCK"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeTransactionConflict = "TRANSACTION_CONFLICT"
	CodePaymentFailed       = "PAYMENT_FAILED"
	CodePersistence         = "PERSISTENCE"
)

type HTTPError struct {
	Status  int
	Code    string
	Message string
	//INSUFFICIENT_STOCKのproduct_id/availableなど
	Details map[string]interface{}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func NewCodedError(status int, code string, message string, details map[string]interface{}) error {
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// カートが空（無い場合も含む）
func errEmptyCart() error {
	return NewCodedError(http.StatusBadRequest, CodeEmptyCart, "cart empty", nil)
}

// どの商品が何個まで買えるかを返す
func errInsufficientStock(productID int64, available int64) error {
	return NewCodedError(http.StatusBadRequest, CodeInsufficientStock, "insufficient stock", map[string]interface{}{
		"product_id": productID,
		"available":  available,
	})
}

// 同時チェックアウトに負けた。最初からやり直せば通る可能性がある
func errTransactionConflict() error {
	return NewCodedError(http.StatusConflict, CodeTransactionConflict, "conflict, retry checkout", nil)
}

// 決済の失敗。在庫は戻してあるので即リトライしてよい
func errPaymentFailed() error {
	return NewCodedError(http.StatusBadGateway, CodePaymentFailed, "payment capture failed", nil)
}

// ストレージ障害。engineは自動リトライしない
func errPersistence() error {
	return NewCodedError(http.StatusInternalServerError, CodePersistence, "db error", nil)
}
