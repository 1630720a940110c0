package usecase

import (
	"context"
	"net/http"

	"store/internal/domain/model"
	repo "store/internal/repository"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Featured    bool   `json:"featured"`
}

type CategoryUsecase struct {
	categories repo.CategoryRepository
}

// DI
func NewCategoryUsecase(categories repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories}
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	items, err := u.categories.List(ctx)
	if err != nil {
		return nil, errPersistence()
	}
	return items, nil
}

func (u *CategoryUsecase) ListFeatured(ctx context.Context, limit int) ([]model.Category, error) {
	if limit <= 0 || limit > 20 {
		limit = 6
	}
	items, err := u.categories.ListFeatured(ctx, limit)
	if err != nil {
		return nil, errPersistence()
	}
	return items, nil
}

func (u *CategoryUsecase) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	c, err := u.categories.FindBySlug(ctx, slug)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return model.Category{}, errPersistence()
	}
	return c, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CategoryInput) (model.Category, error) {
	if in.Name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	c := model.Category{
		Name:        in.Name,
		Description: in.Description,
		Slug:        slugify(in.Name),
		Featured:    in.Featured,
	}

	created, err := u.categories.Create(ctx, c)
	if err != nil {
		return model.Category{}, errPersistence()
	}
	return created, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id int64, in CategoryInput) (model.Category, error) {
	if in.Name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	c, err := u.categories.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "category not found")
	}
	if err != nil {
		return model.Category{}, errPersistence()
	}

	if c.Name != in.Name {
		c.Slug = slugify(in.Name)
	}
	c.Name = in.Name
	c.Description = in.Description
	c.Featured = in.Featured

	if err := u.categories.Update(ctx, c); err != nil {
		return model.Category{}, errPersistence()
	}
	return c, nil
}

func (u *CategoryUsecase) Delete(ctx context.Context, id int64) error {
	if _, err := u.categories.FindByID(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "category not found")
		}
		return errPersistence()
	}
	if err := u.categories.Delete(ctx, id); err != nil {
		return errPersistence()
	}
	return nil
}
