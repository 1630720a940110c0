package payment

import (
	"context"
	"errors"
)

// 決済プロバイダが拒否した（通信は成功）
var ErrDeclined = errors.New("payment declined")

type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
	StatusRefunded Status = "REFUNDED"
)

// capture結果。Payloadはプロバイダのレスポンスをそのまま持つ（監査用）
type CaptureResult struct {
	Status      Status
	ExternalRef string
	Payload     string
}

type RefundResult struct {
	Status      Status
	ExternalRef string
}

// 決済プロバイダとの境界。
// 実装はPayPalでもシミュレータでもよく、engineは中身を知らない
type Gateway interface {
	Authorize(ctx context.Context, amount int64, currency string) (string, error)
	Capture(ctx context.Context, token string) (CaptureResult, error)
	Refund(ctx context.Context, externalRef string, amount int64) (RefundResult, error)
}
