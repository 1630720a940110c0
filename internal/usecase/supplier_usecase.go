package usecase

import (
	"context"
	"net/http"
	"strings"

	"store/internal/domain/model"
	repo "store/internal/repository"
)

type SupplierInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

type SupplierUsecase struct {
	suppliers repo.SupplierRepository
}

// DI
func NewSupplierUsecase(suppliers repo.SupplierRepository) *SupplierUsecase {
	return &SupplierUsecase{suppliers: suppliers}
}

func (u *SupplierUsecase) List(ctx context.Context) ([]model.Supplier, error) {
	items, err := u.suppliers.List(ctx)
	if err != nil {
		return nil, errPersistence()
	}
	return items, nil
}

func (u *SupplierUsecase) Get(ctx context.Context, id int64) (model.Supplier, error) {
	s, err := u.suppliers.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Supplier{}, NewHTTPError(http.StatusNotFound, "supplier not found")
	}
	if err != nil {
		return model.Supplier{}, errPersistence()
	}
	return s, nil
}

func (u *SupplierUsecase) Create(ctx context.Context, in SupplierInput) (model.Supplier, error) {
	if err := validateSupplierInput(in); err != nil {
		return model.Supplier{}, err
	}

	s := model.Supplier{
		Name:     in.Name,
		Email:    strings.ToLower(in.Email),
		Phone:    in.Phone,
		Address:  in.Address,
		IsActive: in.IsActive,
	}

	created, err := u.suppliers.Create(ctx, s)
	if err != nil {
		return model.Supplier{}, errPersistence()
	}
	return created, nil
}

func (u *SupplierUsecase) Update(ctx context.Context, id int64, in SupplierInput) (model.Supplier, error) {
	if err := validateSupplierInput(in); err != nil {
		return model.Supplier{}, err
	}

	s, err := u.suppliers.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Supplier{}, NewHTTPError(http.StatusNotFound, "supplier not found")
	}
	if err != nil {
		return model.Supplier{}, errPersistence()
	}

	s.Name = in.Name
	s.Email = strings.ToLower(in.Email)
	s.Phone = in.Phone
	s.Address = in.Address
	s.IsActive = in.IsActive

	if err := u.suppliers.Update(ctx, s); err != nil {
		return model.Supplier{}, errPersistence()
	}
	return s, nil
}

func (u *SupplierUsecase) Delete(ctx context.Context, id int64) error {
	if _, err := u.suppliers.FindByID(ctx, id); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "supplier not found")
		}
		return errPersistence()
	}
	if err := u.suppliers.Delete(ctx, id); err != nil {
		return errPersistence()
	}
	return nil
}

func validateSupplierInput(in SupplierInput) error {
	if in.Name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return NewHTTPError(http.StatusBadRequest, "valid email required")
	}
	return nil
}
