package usecase

import (
	"context"
	"net/http"

	repo "store/internal/repository"
)

// SaleUsecase は購入者自身の販売履歴を担当する。
// 履歴はスナップショットをそのまま返すだけで、商品マスタは見に行かない
type SaleUsecase struct {
	sales     repo.SaleRepository
	saleItems repo.SaleItemRepository
}

// DI
func NewSaleUsecase(sales repo.SaleRepository, saleItems repo.SaleItemRepository) *SaleUsecase {
	return &SaleUsecase{
		sales:     sales,
		saleItems: saleItems,
	}
}

type SaleListOutput struct {
	Items []SaleOutput `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// ListMySales は自分の販売履歴を新しい順で返す
func (u *SaleUsecase) ListMySales(ctx context.Context, userID int64, f repo.SaleListFilter) (SaleListOutput, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	sales, total, err := u.sales.ListByUserID(ctx, userID, f)
	if err != nil {
		return SaleListOutput{}, errPersistence()
	}

	items := make([]SaleOutput, 0, len(sales))
	for _, s := range sales {
		//一覧は明細なしで軽く返す
		items = append(items, toSaleOutput(s, nil))
	}

	return SaleListOutput{
		Items: items,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}, nil
}

// GetMySaleByCode はコード指定で自分の販売を明細付きで返す。
// 他人の販売コードを知っていても見せない（404で揃える）
func (u *SaleUsecase) GetMySaleByCode(ctx context.Context, userID int64, code string) (SaleOutput, error) {
	sale, err := u.sales.FindByCode(ctx, code)
	if err == repo.ErrNotFound {
		return SaleOutput{}, NewHTTPError(http.StatusNotFound, "sale not found")
	}
	if err != nil {
		return SaleOutput{}, errPersistence()
	}
	if sale.UserID != userID {
		return SaleOutput{}, NewHTTPError(http.StatusNotFound, "sale not found")
	}

	items, err := u.saleItems.ListBySaleID(ctx, sale.ID)
	if err != nil {
		return SaleOutput{}, errPersistence()
	}

	return toSaleOutput(sale, items), nil
}
