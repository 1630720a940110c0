package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"store/internal/domain/model"
	repo "store/internal/repository"
)

type ProductOutput struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	ImagePath   string `json:"image_path"`
	CategoryID  int64  `json:"category_id"`
	SupplierID  int64  `json:"supplier_id"`
	Featured    bool   `json:"featured"`
	Slug        string `json:"slug"`
	IsActive    bool   `json:"is_active"`
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	ImagePath   string `json:"image_path"`
	CategoryID  int64  `json:"category_id"`
	SupplierID  int64  `json:"supplier_id"`
	Featured    bool   `json:"featured"`
	IsActive    bool   `json:"is_active"`
}

// ProductUsecase は公開カタログと管理者CRUDを担当する。
// 在庫の直接設定は調整履歴と監査ログを必ず残す
type ProductUsecase struct {
	products   repo.ProductRepository
	categories repo.CategoryRepository
	suppliers  repo.SupplierRepository
	inventory  repo.InventoryRepository
	audit      repo.AuditLogRepository
}

// DI
func NewProductUsecase(products repo.ProductRepository, categories repo.CategoryRepository, suppliers repo.SupplierRepository, inventory repo.InventoryRepository, audit repo.AuditLogRepository) *ProductUsecase {
	return &ProductUsecase{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		inventory:  inventory,
		audit:      audit,
	}
}

// List は公開中の商品だけを検索・ページングして返す
func (u *ProductUsecase) List(ctx context.Context, q repo.ProductListQuery) (ProductListOutput, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	products, total, err := u.products.ListPublic(ctx, q)
	if err != nil {
		return ProductListOutput{}, errPersistence()
	}

	items := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		items = append(items, toProductOutput(p))
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
	}, nil
}

// ListFeatured はトップページ用のおすすめ商品を返す
func (u *ProductUsecase) ListFeatured(ctx context.Context, limit int) ([]ProductOutput, error) {
	if limit <= 0 || limit > 50 {
		limit = 8
	}

	products, err := u.products.ListFeatured(ctx, limit)
	if err != nil {
		return nil, errPersistence()
	}

	items := make([]ProductOutput, 0, len(products))
	for _, p := range products {
		items = append(items, toProductOutput(p))
	}
	return items, nil
}

// GetByIDOrSlug は数値ならID、それ以外はスラッグとして商品を引く。
// 非公開の商品は一般ユーザーには見せない
func (u *ProductUsecase) GetByIDOrSlug(ctx context.Context, idOrSlug string, includeInactive bool) (ProductOutput, error) {
	var (
		p   model.Product
		err error
	)

	if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil {
		p, err = u.products.FindByID(ctx, id)
	} else {
		p, err = u.products.FindBySlug(ctx, idOrSlug)
	}

	if err == repo.ErrNotFound {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, errPersistence()
	}
	if !p.IsActive && !includeInactive {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	return toProductOutput(p), nil
}

// Create は商品を登録する。スラッグは名前からここで作る
func (u *ProductUsecase) Create(ctx context.Context, in ProductInput) (ProductOutput, error) {
	if err := u.validateInput(ctx, in); err != nil {
		return ProductOutput{}, err
	}

	p := model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImagePath:   in.ImagePath,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		Featured:    in.Featured,
		Slug:        slugify(in.Name),
		IsActive:    in.IsActive,
	}

	created, err := u.products.Create(ctx, p)
	if err != nil {
		return ProductOutput{}, errPersistence()
	}
	return toProductOutput(created), nil
}

// Update は商品を更新する。名前が変わったらスラッグも作り直す。
// 在庫はここでは触らない（SetStockだけが在庫を動かす）
func (u *ProductUsecase) Update(ctx context.Context, productID int64, in ProductInput) (ProductOutput, error) {
	if err := u.validateInput(ctx, in); err != nil {
		return ProductOutput{}, err
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, errPersistence()
	}

	if p.Name != in.Name {
		p.Slug = slugify(in.Name)
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.ImagePath = in.ImagePath
	p.CategoryID = in.CategoryID
	p.SupplierID = in.SupplierID
	p.Featured = in.Featured
	p.IsActive = in.IsActive

	if err := u.products.Update(ctx, p); err != nil {
		return ProductOutput{}, errPersistence()
	}
	return toProductOutput(p), nil
}

// Delete は論理削除。既存の販売履歴からは参照され続ける
func (u *ProductUsecase) Delete(ctx context.Context, productID int64) error {
	_, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return errPersistence()
	}

	if err := u.products.SoftDelete(ctx, productID); err != nil {
		return errPersistence()
	}
	return nil
}

// SetStock は在庫の現在値を直接設定する（棚卸しなど）。
// 差分を調整履歴に、操作を監査ログに残す
func (u *ProductUsecase) SetStock(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) (ProductOutput, error) {
	if newStock < 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if reason == "" {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "reason required")
	}

	p, err := u.products.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ProductOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, errPersistence()
	}

	before := p.Stock
	if err := u.inventory.SetStock(ctx, productID, newStock); err != nil {
		return ProductOutput{}, errPersistence()
	}

	if err := u.inventory.CreateAdjustment(ctx, model.InventoryAdjustment{
		ProductID:   productID,
		AdminUserID: adminUserID,
		Delta:       newStock - before,
		StockAfter:  newStock,
		Reason:      reason,
	}); err != nil {
		return ProductOutput{}, errPersistence()
	}

	beforeJSON, _ := json.Marshal(map[string]int64{"stock": before})
	afterJSON, _ := json.Marshal(map[string]int64{"stock": newStock})
	_ = u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
	})

	p.Stock = newStock
	return toProductOutput(p), nil
}

// カテゴリ・仕入先の実在チェック込みの入力検証
func (u *ProductUsecase) validateInput(ctx context.Context, in ProductInput) error {
	if in.Name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	if _, err := u.categories.FindByID(ctx, in.CategoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		return errPersistence()
	}
	if _, err := u.suppliers.FindByID(ctx, in.SupplierID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid supplier")
		}
		return errPersistence()
	}
	return nil
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImagePath:   p.ImagePath,
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		Featured:    p.Featured,
		Slug:        p.Slug,
		IsActive:    p.IsActive,
	}
}
