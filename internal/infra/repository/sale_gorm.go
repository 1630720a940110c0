package repository

import (
	"context"
	"errors"
	"time"

	"store/internal/domain/model"
	repo "store/internal/repository"

	"gorm.io/gorm"
)

type SaleGormRepository struct {
	db *gorm.DB
}

func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

func (r *SaleGormRepository) FindByID(ctx context.Context, saleID int64) (model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Where("id = ?", saleID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Sale{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Sale{}, err
	}
	return s, nil
}

func (r *SaleGormRepository) FindByCode(ctx context.Context, code string) (model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Sale{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Sale{}, err
	}
	return s, nil
}

// 購入者の履歴。新しい順
func (r *SaleGormRepository) ListByUserID(ctx context.Context, userID int64, f repo.SaleListFilter) ([]model.Sale, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("user_id = ?", userID)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Sale{}, 0, err
	}

	var items []model.Sale
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Sale{}, 0, err
	}

	return items, total, nil
}

func (r *SaleGormRepository) Create(ctx context.Context, sale model.Sale) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&sale).Error; err != nil {
		return 0, err
	}
	return sale.ID, nil
}

// fromのときだけtoへ。遷移しなかったらfalse
func (r *SaleGormRepository) UpdateStatusIf(ctx context.Context, saleID int64, from model.SaleStatus, to model.SaleStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ? AND status = ?", saleID, from).
		Update("status", to)

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SaleGormRepository) UpdateStatus(ctx context.Context, saleID int64, status model.SaleStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ?", saleID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SaleGormRepository) AttachPaymentPayload(ctx context.Context, saleID int64, payload string) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ?", saleID).
		Update("payment_payload", payload)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SaleGormRepository) ListAdmin(ctx context.Context, f repo.AdminSaleListFilter) ([]model.Sale, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Sale{}, 0, err
	}

	var items []model.Sale
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Sale{}, 0, err
	}

	return items, total, nil
}

// 日次レポート用の集計。CANCELLEDは数えない
func (r *SaleGormRepository) DailyStats(ctx context.Context, from time.Time, to time.Time) ([]repo.DailyStat, error) {
	var rows []repo.DailyStat

	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("date_trunc('day', created_at) as day, count(*) as count, coalesce(sum(total), 0) as revenue").
		Where("status <> ?", model.SaleStatusCancelled).
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("day").
		Order("day asc").
		Scan(&rows).Error

	if err != nil {
		return []repo.DailyStat{}, err
	}
	return rows, nil
}
