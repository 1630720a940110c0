package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"store/internal/domain/model"
	repo "store/internal/repository"
	"store/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// テスト用の決め打ち部品
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

type fakeVerifier struct{}

func (fakeVerifier) Verify(hash string, password string) error {
	if hash == "hashed:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID int64, role string, tokenVersion int) (string, error) {
	return "token-for-user", nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newAuthFixture(users *UserRepoMock) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(users, fakeHasher{}, fakeVerifier{}, fakeIssuer{}, fixedClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)})
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthFixture(users)

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, repo.ErrUserNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "taro@example.com" &&
			u.PasswordHash == "hashed:password123" &&
			u.Role == model.RoleUser &&
			u.IsActive
	})).Return(nil)

	out, err := uc.Register(context.Background(), usecase.RegisterInput{
		Name:     "Taro",
		Email:    "Taro@Example.com",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "taro@example.com", out.Email)
	assert.Equal(t, "USER", out.Role)

	users.AssertExpectations(t)
}

func TestAuthUsecase_Register_ShortPassword(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthFixture(users)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "short",
	})
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 400, he.Status)
	}
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthFixture(users)

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{ID: 1}, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "password123",
	})
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 409, he.Status)
	}
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthFixture(users)

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 7, Email: "taro@example.com", PasswordHash: "hashed:password123",
		Role: model.RoleUser, IsActive: true,
	}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "taro@example.com",
		Password: "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "token-for-user", out.Token)
	assert.Equal(t, int64(7), out.User.ID)
}

// 存在しないメールとパスワード違いで同じレスポンスを返すこと
func TestAuthUsecase_Login_InvalidCredentials_SameMessage(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthFixture(users)

	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repo.ErrUserNotFound)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 7, Email: "taro@example.com", PasswordHash: "hashed:password123",
		Role: model.RoleUser, IsActive: true,
	}, nil)

	_, err1 := uc.Login(context.Background(), usecase.LoginInput{Email: "nobody@example.com", Password: "x"})
	_, err2 := uc.Login(context.Background(), usecase.LoginInput{Email: "taro@example.com", Password: "wrong"})

	he1, ok1 := usecase.AsHTTPError(err1)
	he2, ok2 := usecase.AsHTTPError(err2)
	if assert.True(t, ok1) && assert.True(t, ok2) {
		assert.Equal(t, 401, he1.Status)
		assert.Equal(t, he1.Message, he2.Message)
	}
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	users := new(UserRepoMock)
	uc := newAuthFixture(users)

	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 7, Email: "taro@example.com", PasswordHash: "hashed:password123",
		Role: model.RoleUser, IsActive: false,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email:    "taro@example.com",
		Password: "password123",
	})
	if he, ok := usecase.AsHTTPError(err); assert.True(t, ok) {
		assert.Equal(t, 401, he.Status)
	}
}
