package usecase

import (
	"context"
	"net/http"

	"store/internal/domain/model"
	repo "store/internal/repository"
)

// AdminSaleUsecase は管理者向けの販売一覧とステータス変更を担当する。
// CANCELLEDへの変更時は在庫を戻し、操作は監査ログに残す
type AdminSaleUsecase struct {
	tx        repo.TransactionManager
	sales     repo.SaleRepository
	saleItems repo.SaleItemRepository
	audit     repo.AuditLogRepository
}

// DI
func NewAdminSaleUsecase(tx repo.TransactionManager, sales repo.SaleRepository, saleItems repo.SaleItemRepository, audit repo.AuditLogRepository) *AdminSaleUsecase {
	return &AdminSaleUsecase{
		tx:        tx,
		sales:     sales,
		saleItems: saleItems,
		audit:     audit,
	}
}

// ListSales は全ユーザーの販売を絞り込み付きで返す
func (u *AdminSaleUsecase) ListSales(ctx context.Context, f repo.AdminSaleListFilter) (SaleListOutput, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	sales, total, err := u.sales.ListAdmin(ctx, f)
	if err != nil {
		return SaleListOutput{}, errPersistence()
	}

	items := make([]SaleOutput, 0, len(sales))
	for _, s := range sales {
		items = append(items, toSaleOutput(s, nil))
	}

	return SaleListOutput{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}, nil
}

// GetSale は明細付きで1件返す
func (u *AdminSaleUsecase) GetSale(ctx context.Context, saleID int64) (SaleOutput, error) {
	sale, err := u.sales.FindByID(ctx, saleID)
	if err == repo.ErrNotFound {
		return SaleOutput{}, NewHTTPError(http.StatusNotFound, "sale not found")
	}
	if err != nil {
		return SaleOutput{}, errPersistence()
	}

	items, err := u.saleItems.ListBySaleID(ctx, sale.ID)
	if err != nil {
		return SaleOutput{}, errPersistence()
	}

	return toSaleOutput(sale, items), nil
}

// UpdateStatus は販売のステータスを変更する。
// COMPLETED→CANCELLEDのときだけ在庫を戻す。条件付き遷移なので
// 同じキャンセルを2回適用しても在庫は1回しか戻らない
func (u *AdminSaleUsecase) UpdateStatus(ctx context.Context, actorUserID int64, saleID int64, status string) (SaleOutput, error) {
	to := model.SaleStatus(status)
	if to != model.SaleStatusCompleted && to != model.SaleStatusCancelled {
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	sale, err := u.sales.FindByID(ctx, saleID)
	if err == repo.ErrNotFound {
		return SaleOutput{}, NewHTTPError(http.StatusNotFound, "sale not found")
	}
	if err != nil {
		return SaleOutput{}, errPersistence()
	}

	from := sale.Status
	if from == to {
		return u.GetSale(ctx, saleID)
	}

	//許す遷移だけ列挙する
	switch {
	case from == model.SaleStatusPending && to == model.SaleStatusCompleted:
	case from == model.SaleStatusPending && to == model.SaleStatusCancelled:
	case from == model.SaleStatusCompleted && to == model.SaleStatusCancelled:
	default:
		return SaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status transition")
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		moved, err := r.Sales().UpdateStatusIf(ctx, saleID, from, to)
		if err != nil {
			return errPersistence()
		}
		if !moved {
			//先に他の管理者か決済処理が動かしていた
			return errTransactionConflict()
		}

		//キャンセルは引き当て済み在庫を戻す
		if to == model.SaleStatusCancelled {
			items, err := r.SaleItems().ListBySaleID(ctx, saleID)
			if err != nil {
				return errPersistence()
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return errPersistence()
				}
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return SaleOutput{}, err
		}
		return SaleOutput{}, errPersistence()
	}

	//監査ログは本処理の成否に影響させない
	_ = u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  actorUserID,
		Action:       model.AuditActionUpdateSaleStatus,
		ResourceType: model.AuditResourceSale,
		ResourceID:   saleID,
		BeforeJSON:   `{"status":"` + string(from) + `"}`,
		AfterJSON:    `{"status":"` + string(to) + `"}`,
	})

	return u.GetSale(ctx, saleID)
}
