package usecase

import (
	"context"
	"net/http"
	"time"

	"store/internal/domain/model"
	repo "store/internal/repository"
)

// 1明細あたりの数量上限。業務上これ以上はまとめ買いにならない
const maxQuantityPerLine = 99

type CartItemOutput struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	ProductName       string `json:"product_name"`
	Quantity          int64  `json:"quantity"`
	UnitPriceSnapshot int64  `json:"unit_price_snapshot"`
	Subtotal          int64  `json:"subtotal"`
}

type CartOutput struct {
	ID        int64            `json:"id"`
	Status    string           `json:"status"`
	Items     []CartItemOutput `json:"items"`
	Total     int64            `json:"total"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CartUsecase はACTIVEカートの閲覧と明細の増減を担当する。
// 価格は追加時点でスナップショットし、以後の商品価格変更には追随しない。
type CartUsecase struct {
	tx       repo.TransactionManager
	carts    repo.CartRepository
	items    repo.CartItemRepository
	products repo.ProductRepository
}

// DI
func NewCartUsecase(tx repo.TransactionManager, carts repo.CartRepository, items repo.CartItemRepository, products repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		tx:       tx,
		carts:    carts,
		items:    items,
		products: products,
	}
}

// GetCart はACTIVEカートを明細・合計付きで返す。無ければ作る
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	cart, err := u.carts.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, errPersistence()
	}

	items, err := u.items.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, errPersistence()
	}

	return u.toCartOutput(ctx, cart, items)
}

// AddItem は商品をカートに入れる。同じ商品は数量加算。
// 追加時点の価格をスナップショットする。2回目以降の追加でも最初の価格のまま
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, productID int64, qty int64) (CartOutput, error) {
	if qty <= 0 || qty > maxQuantityPerLine {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}
	if err != nil {
		return CartOutput{}, errPersistence()
	}
	if !p.IsActive {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product")
	}

	//追加時点の在庫チェック。確定はチェックアウト時に再検証する
	if p.Stock <= 0 {
		return CartOutput{}, NewCodedError(http.StatusBadRequest, CodeOutOfStock, "out of stock", map[string]interface{}{
			"product_id": productID,
		})
	}
	if p.Stock < qty {
		return CartOutput{}, errInsufficientStock(productID, p.Stock)
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//チェックアウトと直列化するためロック取得
		cart, err := r.Carts().GetOrCreateActiveByUserID(ctx, userID)
		if err != nil {
			return errPersistence()
		}
		if _, err := r.Carts().LockActiveByUserID(ctx, userID); err != nil {
			return errPersistence()
		}

		//既存明細と合算した数量で在庫を見る。小分けに追加しても上限は同じ
		var existing int64
		lines, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return errPersistence()
		}
		for _, line := range lines {
			if line.ProductID == productID {
				existing = line.Quantity
				break
			}
		}

		newQty := existing + qty
		if newQty > maxQuantityPerLine {
			return NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
		if newQty > p.Stock {
			return errInsufficientStock(productID, p.Stock)
		}

		if err := r.CartItems().UpsertByCartAndProduct(ctx, cart.ID, productID, qty, p.Price); err != nil {
			return errPersistence()
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return CartOutput{}, err
		}
		return CartOutput{}, errPersistence()
	}

	return u.GetCart(ctx, userID)
}

// UpdateItemQuantity は明細の数量を置き換える。数量は1以上、削除はRemoveItemで行う
func (u *CartUsecase) UpdateItemQuantity(ctx context.Context, userID int64, cartItemID int64, qty int64) (CartOutput, error) {
	if qty < 1 || qty > maxQuantityPerLine {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := u.assertOwned(ctx, r, userID, cartItemID); err != nil {
			return err
		}

		item, err := r.CartItems().FindByID(ctx, cartItemID)
		if err != nil {
			return errPersistence()
		}

		//数量変更時も現在の商品と在庫で再検証する
		p, err := r.Products().FindByID(ctx, item.ProductID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid product")
		}
		if err != nil {
			return errPersistence()
		}
		if !p.IsActive {
			return NewHTTPError(http.StatusBadRequest, "invalid product")
		}
		if qty > p.Stock {
			return errInsufficientStock(item.ProductID, p.Stock)
		}

		if err := r.CartItems().UpdateQuantity(ctx, cartItemID, qty); err != nil {
			return errPersistence()
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return CartOutput{}, err
		}
		return CartOutput{}, errPersistence()
	}

	return u.GetCart(ctx, userID)
}

// RemoveItem は明細を削除する
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) (CartOutput, error) {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := u.assertOwned(ctx, r, userID, cartItemID); err != nil {
			return err
		}
		if err := r.CartItems().DeleteByID(ctx, cartItemID); err != nil {
			return errPersistence()
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return CartOutput{}, err
		}
		return CartOutput{}, errPersistence()
	}

	return u.GetCart(ctx, userID)
}

// ClearCart はACTIVEカートの明細を全て消す。カート自体は残る
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartOutput, error) {
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().LockActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			// 空にする対象がないだけなので成功扱い
			return nil
		}
		if err != nil {
			return errPersistence()
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return errPersistence()
		}
		return nil
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return CartOutput{}, err
		}
		return CartOutput{}, errPersistence()
	}

	return u.GetCart(ctx, userID)
}

// 他人の明細IDを触らせない。存在しない場合も404で揃える
func (u *CartUsecase) assertOwned(ctx context.Context, r repo.TxRepos, userID int64, cartItemID int64) error {
	//まずロックを取って直列化
	if _, err := r.Carts().LockActiveByUserID(ctx, userID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return errPersistence()
	}

	owned, err := r.CartItems().IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return errPersistence()
	}
	if !owned {
		return NewHTTPError(http.StatusNotFound, "cart item not found")
	}
	return nil
}

func (u *CartUsecase) toCartOutput(ctx context.Context, cart model.Cart, items []model.CartItem) (CartOutput, error) {
	outItems := make([]CartItemOutput, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		name := ""
		if p, err := u.products.FindByID(ctx, it.ProductID); err == nil {
			name = p.Name
		}

		outItems = append(outItems, CartItemOutput{
			ID:                it.ID,
			ProductID:         it.ProductID,
			ProductName:       name,
			Quantity:          it.Quantity,
			UnitPriceSnapshot: it.UnitPriceSnapshot,
			Subtotal:          it.Subtotal,
		})
		total += it.Subtotal
	}

	return CartOutput{
		ID:        cart.ID,
		Status:    string(cart.Status),
		Items:     outItems,
		Total:     total,
		UpdatedAt: cart.UpdatedAt,
	}, nil
}
