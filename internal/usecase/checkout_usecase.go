package usecase

import (
	"context"
	"net/http"
	"time"

	"store/internal/domain/model"
	"store/internal/payment"
	repo "store/internal/repository"
)

// 決済の通貨。多通貨は扱わない
const saleCurrency = "USD"

// 決済失敗の補償のリトライ回数
const compensateRetries = 3

// 外部共有用の販売コードを作る約束
type IDGenerator interface {
	NewID() string
}

// CheckoutUsecase はカートを販売に変換する本体。
// 在庫の減算・販売の作成・カートのクリアを1トランザクションで行い、
// 途中で失敗したら何も起きなかったことにする。
type CheckoutUsecase struct {
	tx    repo.TransactionManager
	idGen IDGenerator

	//nilなら決済ステップ無し（COMPLETEDで確定）
	gateway payment.Gateway
}

// DI
func NewCheckoutUsecase(tx repo.TransactionManager, idGen IDGenerator, gateway payment.Gateway) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:      tx,
		idGen:   idGen,
		gateway: gateway,
	}
}

type SaleItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type SaleOutput struct {
	ID        int64            `json:"id"`
	Code      string           `json:"code"`
	UserID    int64            `json:"user_id"`
	Status    string           `json:"status"`
	Total     int64            `json:"total"`
	CreatedAt time.Time        `json:"created_at"`
	Items     []SaleItemOutput `json:"items"`
}

// Checkout はカートの全明細を検証して在庫を引き当て、販売を確定する。
//
//  1. ACTIVEカートをロックして取得（空ならEMPTY_CART）
//  2. 明細ごとにトランザクション内で在庫を再検証（足りなければINSUFFICIENT_STOCK、全部やめる）
//  3. 条件付きUPDATEで減算（2を通ったのに負けたらTRANSACTION_CONFLICT、全部やめる）
//  4. スナップショット明細で販売を作成（決済ありはPENDING、無しはCOMPLETED）
//  5. カートをCHECKED_OUTにして明細クリア
//  6. commit後、決済ありならcapture。成功でCOMPLETED、失敗なら補償（在庫戻し＋CANCELLED）
//
// 2の読み取りは速く失敗するためのもので、正しさは3の条件付きUPDATEが持つ。
func (u *CheckoutUsecase) Checkout(ctx context.Context, userID int64) (SaleOutput, error) {
	if userID <= 0 {
		return SaleOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var (
		sale      model.Sale
		saleItems []model.SaleItem
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//カートをロックして取得。同一ユーザーのカート変更と直列化する
		cart, err := r.Carts().LockActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return errEmptyCart()
		}
		if err != nil {
			return errPersistence()
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return errPersistence()
		}
		if len(cartItems) == 0 {
			return errEmptyCart()
		}

		//在庫を確定時に再チェックして減らす。
		//1明細でも失敗したら全明細分をロールバック
		saleItems = make([]model.SaleItem, 0, len(cartItems))
		var total int64 = 0

		for _, ci := range cartItems {
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}
			if err != nil {
				return errPersistence()
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid product")
			}

			//トランザクション内の再検証。追加時のスナップショットは信用しない
			if p.Stock < ci.Quantity {
				return errInsufficientStock(ci.ProductID, p.Stock)
			}

			//条件付き減算。再検証を通っていても、書き込みで同時チェックアウトに
			//負けることがある（その場合はfalse）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return errPersistence()
			}
			if !ok {
				return errTransactionConflict()
			}

			//スナップショット
			saleItems = append(saleItems, model.SaleItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				Quantity:            ci.Quantity,
				Subtotal:            ci.Subtotal,
				CreatedAt:           time.Now(),
			})

			total += ci.Subtotal
		}

		//決済ステップがあるならPENDINGで作り、captureが通ってからCOMPLETEDにする
		status := model.SaleStatusCompleted
		if u.gateway != nil {
			status = model.SaleStatusPending
		}

		now := time.Now()
		sale = model.Sale{
			Code:      u.idGen.NewID(),
			UserID:    userID,
			Total:     total,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}

		saleID, err := r.Sales().Create(ctx, sale)
		if err != nil {
			return errPersistence()
		}
		sale.ID = saleID

		if err := r.SaleItems().CreateBulk(ctx, saleID, saleItems); err != nil {
			return errPersistence()
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return errPersistence()
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return errPersistence()
		}

		return nil
	})

	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return SaleOutput{}, err
		}
		//txの開始やcommit自体の失敗
		return SaleOutput{}, errPersistence()
	}

	//決済はcommit後。DBのトランザクションに外部呼び出しを抱き込まない
	if u.gateway != nil {
		if err := u.captureAndFinalize(ctx, &sale); err != nil {
			return SaleOutput{}, err
		}
	}

	return toSaleOutput(sale, saleItems), nil
}

// capture成功でPENDING→COMPLETED、失敗なら補償してPAYMENT_FAILEDを返す
func (u *CheckoutUsecase) captureAndFinalize(ctx context.Context, sale *model.Sale) error {
	token, err := u.gateway.Authorize(ctx, sale.Total, saleCurrency)

	var result payment.CaptureResult
	if err == nil {
		result, err = u.gateway.Capture(ctx, token)
	}

	if err == nil && result.Status == payment.StatusApproved {
		txErr := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			moved, err := r.Sales().UpdateStatusIf(ctx, sale.ID, model.SaleStatusPending, model.SaleStatusCompleted)
			if err != nil {
				return errPersistence()
			}
			if !moved {
				//すでに誰かが確定（または取消）済み
				return nil
			}
			if err := r.Sales().AttachPaymentPayload(ctx, sale.ID, result.Payload); err != nil {
				return errPersistence()
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		sale.Status = model.SaleStatusCompleted
		return nil
	}

	//決済失敗。在庫を戻して販売を取消す
	if compErr := u.CompensateFailedPayment(ctx, sale.ID); compErr != nil {
		return compErr
	}

	sale.Status = model.SaleStatusCancelled
	return errPaymentFailed()
}

// CompensateFailedPayment は決済に失敗した販売の在庫を戻す。
// PENDING→CANCELLEDの条件付き遷移と在庫戻しを同じトランザクションに入れてあり、
// 遷移できたときだけ戻すので、二重に呼ばれても在庫は一度しか戻らない。
func (u *CheckoutUsecase) CompensateFailedPayment(ctx context.Context, saleID int64) error {
	var lastErr error

	//一時障害に備えて少しだけリトライ
	for attempt := 0; attempt < compensateRetries; attempt++ {
		lastErr = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			moved, err := r.Sales().UpdateStatusIf(ctx, saleID, model.SaleStatusPending, model.SaleStatusCancelled)
			if err != nil {
				return errPersistence()
			}
			if !moved {
				//補償済み。何もしない
				return nil
			}

			items, err := r.SaleItems().ListBySaleID(ctx, saleID)
			if err != nil {
				return errPersistence()
			}

			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return errPersistence()
				}
			}
			return nil
		})

		if lastErr == nil {
			return nil
		}
	}

	return lastErr
}

func toSaleOutput(s model.Sale, items []model.SaleItem) SaleOutput {
	outItems := make([]SaleItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, SaleItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}

	return SaleOutput{
		ID:        s.ID,
		Code:      s.Code,
		UserID:    s.UserID,
		Status:    string(s.Status),
		Total:     s.Total,
		CreatedAt: s.CreatedAt,
		Items:     outItems,
	}
}
