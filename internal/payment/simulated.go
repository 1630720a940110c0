package payment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// 常に成功する決済アダプタ。
// 開発・テストで本物のプロバイダの代わりに差し込む
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Authorize(ctx context.Context, amount int64, currency string) (string, error) {
	return "sim-auth-" + uuid.NewString(), nil
}

func (s *Simulated) Capture(ctx context.Context, token string) (CaptureResult, error) {
	ref := "sim-cap-" + uuid.NewString()

	payload, err := json.Marshal(map[string]interface{}{
		"provider":    "simulated",
		"token":       token,
		"external_id": ref,
		"captured_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return CaptureResult{}, err
	}

	return CaptureResult{
		Status:      StatusApproved,
		ExternalRef: ref,
		Payload:     string(payload),
	}, nil
}

func (s *Simulated) Refund(ctx context.Context, externalRef string, amount int64) (RefundResult, error) {
	return RefundResult{
		Status:      StatusRefunded,
		ExternalRef: "sim-ref-" + uuid.NewString(),
	}, nil
}
