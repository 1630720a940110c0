package usecase_test

import (
	"context"
	"testing"

	"store/internal/domain/model"
	repo "store/internal/repository"
	"store/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

type CartTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *CartTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type CartTxReposMock struct {
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	products  repo.ProductRepository
}

func (r *CartTxReposMock) Sales() repo.SaleRepository          { panic("not used in cart tests") }
func (r *CartTxReposMock) SaleItems() repo.SaleItemRepository  { panic("not used in cart tests") }
func (r *CartTxReposMock) Inventory() repo.InventoryRepository { panic("not used in cart tests") }
func (r *CartTxReposMock) Carts() repo.CartRepository          { return r.carts }
func (r *CartTxReposMock) CartItems() repo.CartItemRepository  { return r.cartItems }
func (r *CartTxReposMock) Products() repo.ProductRepository    { return r.products }

// =====================
// Repository mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	panic("not used in cart tests")
}

func (m *CartRepoMock) LockActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	panic("not used in cart tests")
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID, productID, addQty, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	item, _ := args.Get(0).(model.CartItem)
	return item, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in cart tests")
}

func (m *CartProductRepoMock) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	panic("not used in cart tests")
}

func (m *CartProductRepoMock) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	panic("not used in cart tests")
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in cart tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in cart tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in cart tests")
}

// =====================
// tests
// =====================

func newCartFixture() (*CartTxManagerMock, *CartRepoMock, *CartItemRepoMock, *CartProductRepoMock, *usecase.CartUsecase) {
	tx := new(CartTxManagerMock)
	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	products := new(CartProductRepoMock)

	tx.Repos = &CartTxReposMock{carts: carts, cartItems: items, products: products}

	uc := usecase.NewCartUsecase(tx, carts, items, products)
	return tx, carts, items, products, uc
}

func TestCartUsecase_GetCart_SumsSubtotals(t *testing.T) {
	_, carts, items, products, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}
	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)

	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 700, Subtotal: 1400},
		{ID: 11, ProductID: 101, Quantity: 1, UnitPriceSnapshot: 300, Subtotal: 300},
	}, nil)

	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, Name: "A"}, nil)
	products.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, Name: "B"}, nil)

	out, err := uc.GetCart(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1700), out.Total)
	assert.Len(t, out.Items, 2)
}

func TestCartUsecase_AddItem_InvalidQuantity(t *testing.T) {
	_, _, _, _, uc := newCartFixture()

	_, err := uc.AddItem(context.Background(), 1, 100, 0)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 400, he.Status)
	}

	_, err = uc.AddItem(context.Background(), 1, 100, 100)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 400, he.Status)
	}
}

func TestCartUsecase_AddItem_OutOfStock(t *testing.T) {
	_, _, _, products, uc := newCartFixture()

	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "A", Price: 500, Stock: 0, IsActive: true,
	}, nil)

	_, err := uc.AddItem(context.Background(), 1, 100, 1)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, usecase.CodeOutOfStock, he.Code)
	}
}

func TestCartUsecase_AddItem_InsufficientStock(t *testing.T) {
	_, _, _, products, uc := newCartFixture()

	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "A", Price: 500, Stock: 2, IsActive: true,
	}, nil)

	_, err := uc.AddItem(context.Background(), 1, 100, 3)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, usecase.CodeInsufficientStock, he.Code)
		assert.Equal(t, int64(2), he.Details["available"])
	}
}

func TestCartUsecase_AddItem_InactiveProduct(t *testing.T) {
	_, _, _, products, uc := newCartFixture()

	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "A", Price: 500, Stock: 5, IsActive: false,
	}, nil)

	_, err := uc.AddItem(context.Background(), 1, 100, 1)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 400, he.Status)
	}
}

// 追加時の価格が保存されること（現在価格がスナップショットになる）
func TestCartUsecase_AddItem_SnapshotsCurrentPrice(t *testing.T) {
	tx, carts, items, products, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}

	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "A", Price: 500, Stock: 5, IsActive: true,
	}, nil)

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)

	//unitPriceSnapshot=500で保存されること
	items.On("UpsertByCartAndProduct", mock.Anything, int64(5), int64(100), int64(2), int64(500)).Return(nil)

	//mutate後のGetCart
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 10, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 500, Subtotal: 1000},
	}, nil)

	out, err := uc.AddItem(context.Background(), 1, 100, 2)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), out.Total)

	items.AssertExpectations(t)
}

func TestCartUsecase_UpdateItemQuantity_NotOwned(t *testing.T) {
	tx, carts, items, _, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	items.On("IsOwnedByUser", mock.Anything, int64(77), int64(1)).Return(false, nil)

	_, err := uc.UpdateItemQuantity(context.Background(), 1, 77, 2)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 404, he.Status)
	}

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// 数量0は受け付けない。削除はRemoveItem
func TestCartUsecase_UpdateItemQuantity_ZeroRejected(t *testing.T) {
	_, _, items, _, uc := newCartFixture()

	_, err := uc.UpdateItemQuantity(context.Background(), 1, 10, 0)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 400, he.Status)
	}

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
	items.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

// 数量変更も現在の在庫を超えられないこと
func TestCartUsecase_UpdateItemQuantity_ExceedsStock(t *testing.T) {
	tx, carts, items, products, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	items.On("IsOwnedByUser", mock.Anything, int64(10), int64(1)).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{
		ID: 10, CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 500,
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "A", Price: 500, Stock: 3, IsActive: true,
	}, nil)

	_, err := uc.UpdateItemQuantity(context.Background(), 1, 10, 50)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, usecase.CodeInsufficientStock, he.Code)
		assert.Equal(t, int64(3), he.Details["available"])
	}

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// 販売停止になった商品の明細は数量変更できない
func TestCartUsecase_UpdateItemQuantity_InactiveProduct(t *testing.T) {
	tx, carts, items, products, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	items.On("IsOwnedByUser", mock.Anything, int64(10), int64(1)).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(10)).Return(model.CartItem{
		ID: 10, CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 500,
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "A", Price: 500, Stock: 9, IsActive: false,
	}, nil)

	_, err := uc.UpdateItemQuantity(context.Background(), 1, 10, 3)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 400, he.Status)
	}

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

// 小分けに追加しても、明細の合計数量が在庫を超えられないこと
func TestCartUsecase_AddItem_CumulativeExceedsStock(t *testing.T) {
	tx, carts, items, products, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}

	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{
		ID: 100, Name: "A", Price: 500, Stock: 5, IsActive: true,
	}, nil)

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)

	//既に4個入っている。在庫5に対して4+4は通らない
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 10, CartID: 5, ProductID: 100, Quantity: 4, UnitPriceSnapshot: 500, Subtotal: 2000},
	}, nil)

	_, err := uc.AddItem(context.Background(), 1, 100, 4)
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, usecase.CodeInsufficientStock, he.Code)
		assert.Equal(t, int64(5), he.Details["available"])
	}

	items.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_ClearCart_EmptiesAllLines(t *testing.T) {
	tx, carts, items, _, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	carts.On("Clear", mock.Anything, int64(5)).Return(nil)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	out, err := uc.ClearCart(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Total)
	assert.Len(t, out.Items, 0)

	carts.AssertExpectations(t)
}

// ACTIVEカートが無くても空にする操作は成功する
func TestCartUsecase_ClearCart_NoActiveCart_NoError(t *testing.T) {
	tx, carts, items, _, uc := newCartFixture()

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}
	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	out, err := uc.ClearCart(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Total)

	carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCartUsecase_RemoveItem_Success(t *testing.T) {
	tx, carts, items, _, uc := newCartFixture()

	cart := model.Cart{ID: 5, UserID: 1, Status: model.CartStatusActive}

	tx.On("WithinTx", mock.Anything).Return(nil)
	carts.On("LockActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	items.On("IsOwnedByUser", mock.Anything, int64(10), int64(1)).Return(true, nil)
	items.On("DeleteByID", mock.Anything, int64(10)).Return(nil)

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(cart, nil)
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil)

	out, err := uc.RemoveItem(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)

	items.AssertExpectations(t)
}
