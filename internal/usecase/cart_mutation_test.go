package usecase_test

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"store/internal/domain/model"
	repo "store/internal/repository"
	"store/internal/usecase"

	"github.com/stretchr/testify/assert"
)

// =====================
// カート操作を連続で回すためのインメモリ実装。
// subtotalの再計算規則はgorm実装と同じにしてある
// =====================

const cartFakeCartID = int64(1)

type cartFakeState struct {
	products map[int64]model.Product
	items    map[int64]*model.CartItem
	nextID   int64
}

func newCartFakeState(products ...model.Product) *cartFakeState {
	st := &cartFakeState{
		products: map[int64]model.Product{},
		items:    map[int64]*model.CartItem{},
		nextID:   1,
	}
	for _, p := range products {
		st.products[p.ID] = p
	}
	return st
}

type cartFakeTx struct{ st *cartFakeState }

func (t *cartFakeTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(&cartFakeRepos{st: t.st})
}

type cartFakeRepos struct{ st *cartFakeState }

func (r *cartFakeRepos) Sales() repo.SaleRepository          { panic("not used in cart mutation tests") }
func (r *cartFakeRepos) SaleItems() repo.SaleItemRepository  { panic("not used in cart mutation tests") }
func (r *cartFakeRepos) Inventory() repo.InventoryRepository { panic("not used in cart mutation tests") }
func (r *cartFakeRepos) Carts() repo.CartRepository          { return &cartFakeCarts{st: r.st} }
func (r *cartFakeRepos) CartItems() repo.CartItemRepository  { return &cartFakeItems{st: r.st} }
func (r *cartFakeRepos) Products() repo.ProductRepository    { return &cartFakeProducts{st: r.st} }

type cartFakeCarts struct{ st *cartFakeState }

func (c *cartFakeCarts) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return model.Cart{ID: cartFakeCartID, UserID: userID, Status: model.CartStatusActive}, nil
}

func (c *cartFakeCarts) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return model.Cart{ID: cartFakeCartID, UserID: userID, Status: model.CartStatusActive}, nil
}

func (c *cartFakeCarts) LockActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return model.Cart{ID: cartFakeCartID, UserID: userID, Status: model.CartStatusActive}, nil
}

func (c *cartFakeCarts) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	return nil
}

func (c *cartFakeCarts) Clear(ctx context.Context, cartID int64) error {
	for id, it := range c.st.items {
		if it.CartID == cartID {
			delete(c.st.items, id)
		}
	}
	return nil
}

type cartFakeItems struct{ st *cartFakeState }

func (m *cartFakeItems) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	out := []model.CartItem{}
	for _, it := range m.st.items {
		if it.CartID == cartID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *cartFakeItems) UpsertByCartAndProduct(ctx context.Context, cartID, productID, addQty, unitPriceSnapshot int64) error {
	for _, it := range m.st.items {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity += addQty
			it.Subtotal = it.Quantity * it.UnitPriceSnapshot
			return nil
		}
	}

	id := m.st.nextID
	m.st.nextID++
	m.st.items[id] = &model.CartItem{
		ID:                id,
		CartID:            cartID,
		ProductID:         productID,
		Quantity:          addQty,
		UnitPriceSnapshot: unitPriceSnapshot,
		Subtotal:          addQty * unitPriceSnapshot,
	}
	return nil
}

func (m *cartFakeItems) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	it, ok := m.st.items[cartItemID]
	if !ok {
		return repo.ErrNotFound
	}
	it.Quantity = qty
	it.Subtotal = qty * it.UnitPriceSnapshot
	return nil
}

func (m *cartFakeItems) DeleteByID(ctx context.Context, cartItemID int64) error {
	if _, ok := m.st.items[cartItemID]; !ok {
		return repo.ErrNotFound
	}
	delete(m.st.items, cartItemID)
	return nil
}

func (m *cartFakeItems) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	it, ok := m.st.items[cartItemID]
	if !ok {
		return model.CartItem{}, repo.ErrNotFound
	}
	return *it, nil
}

func (m *cartFakeItems) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	_, ok := m.st.items[cartItemID]
	return ok, nil
}

type cartFakeProducts struct{ st *cartFakeState }

func (m *cartFakeProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	p, ok := m.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (m *cartFakeProducts) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in cart mutation tests")
}

func (m *cartFakeProducts) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	panic("not used in cart mutation tests")
}

func (m *cartFakeProducts) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	panic("not used in cart mutation tests")
}

func (m *cartFakeProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in cart mutation tests")
}

func (m *cartFakeProducts) Update(ctx context.Context, p model.Product) error {
	panic("not used in cart mutation tests")
}

func (m *cartFakeProducts) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in cart mutation tests")
}

// =====================
// tests
// =====================

// 追加・数量変更・削除・全消しをランダムに繰り返しても、
// 合計が常に明細小計の和と一致し、小計が数量×スナップショット単価であること
func TestCartUsecase_RandomMutations_TotalIsSumOfSubtotals(t *testing.T) {
	st := newCartFakeState(
		model.Product{ID: 100, Name: "A", Price: 500, Stock: 8, IsActive: true},
		model.Product{ID: 101, Name: "B", Price: 300, Stock: 5, IsActive: true},
		model.Product{ID: 102, Name: "C", Price: 1200, Stock: 2, IsActive: true},
	)
	uc := usecase.NewCartUsecase(
		&cartFakeTx{st: st},
		&cartFakeCarts{st: st},
		&cartFakeItems{st: st},
		&cartFakeProducts{st: st},
	)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(20260828))
	productIDs := []int64{100, 101, 102}

	for i := 0; i < 300; i++ {
		var err error

		switch rng.Intn(10) {
		case 0, 1, 2, 3:
			pid := productIDs[rng.Intn(len(productIDs))]
			_, err = uc.AddItem(ctx, 1, pid, int64(rng.Intn(4)+1))
		case 4, 5, 6:
			if id := randomCartLineID(t, ctx, uc, rng); id != 0 {
				_, err = uc.UpdateItemQuantity(ctx, 1, id, int64(rng.Intn(6)+1))
			}
		case 7, 8:
			if id := randomCartLineID(t, ctx, uc, rng); id != 0 {
				_, err = uc.RemoveItem(ctx, 1, id)
			}
		case 9:
			_, err = uc.ClearCart(ctx, 1)
		}

		//在庫不足などの業務エラーは起きてよい。起きても合計は崩れないこと
		if err != nil {
			_, ok := usecase.AsHTTPError(err)
			assert.True(t, ok, "step=%d unexpected error: %v", i, err)
		}

		got, gerr := uc.GetCart(ctx, 1)
		assert.NoError(t, gerr)

		var sum int64
		for _, line := range got.Items {
			assert.Equal(t, line.Quantity*line.UnitPriceSnapshot, line.Subtotal, "step=%d item=%d", i, line.ID)
			sum += line.Subtotal
		}
		assert.Equal(t, sum, got.Total, "step=%d", i)
	}
}

func randomCartLineID(t *testing.T, ctx context.Context, uc *usecase.CartUsecase, rng *rand.Rand) int64 {
	cur, err := uc.GetCart(ctx, 1)
	assert.NoError(t, err)
	if len(cur.Items) == 0 {
		return 0
	}
	return cur.Items[rng.Intn(len(cur.Items))].ID
}
