package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"store/internal/domain/model"
	repo "store/internal/repository"
)

// パスワードのハッシュ化の約束（実装はbcrypt）
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// ハッシュ照合の約束
type PasswordVerifier interface {
	Verify(hash string, password string) error
}

// アクセストークン発行の約束（実装はJWT）。
// tokenVersionを入れておき、発行後の失効に使う
type TokenIssuer interface {
	Issue(userID int64, role string, tokenVersion int) (string, error)
}

// テストで時間を差し替えるための約束
type Clock interface {
	Now() time.Time
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserOutput struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type LoginOutput struct {
	Token string     `json:"token"`
	User  UserOutput `json:"user"`
}

// AuthUsecase は登録・ログイン・自分の情報取得を担当する
type AuthUsecase struct {
	users    repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	issuer   TokenIssuer
	clock    Clock
}

// DI
func NewAuthUsecase(users repo.UserRepository, hasher PasswordHasher, verifier PasswordVerifier, issuer TokenIssuer, clock Clock) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
}

// Register は新規ユーザーを作る。ロールは常にUSER
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserOutput, error) {
	if in.Name == "" {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "valid email required")
	}
	if len(in.Password) < 8 {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return UserOutput{}, NewHTTPError(http.StatusConflict, "email already registered")
	} else if err != repo.ErrUserNotFound {
		return UserOutput{}, errPersistence()
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to hash password")
	}

	user := model.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Phone:        in.Phone,
		Address:      in.Address,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, &user); err != nil {
		return UserOutput{}, errPersistence()
	}

	return toUserOutput(user), nil
}

// Login はメール・パスワードを検証してアクセストークンを返す。
// 存在しないメールとパスワード違いでレスポンスを変えない
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := u.users.FindByEmail(ctx, email)
	if err == repo.ErrUserNotFound {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		return LoginOutput{}, errPersistence()
	}
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	if err := u.verifier.Verify(user.PasswordHash, in.Password); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, err := u.issuer.Issue(user.ID, string(user.Role), user.TokenVersion)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to issue token")
	}

	now := u.clock.Now()
	user.LastLoginAt = &now
	//最終ログインの記録失敗はログイン自体を失敗にしない
	_ = u.users.Update(ctx, user)

	return LoginOutput{
		Token: token,
		User:  toUserOutput(*user),
	}, nil
}

// Me はトークンの持ち主の情報を返す
func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserOutput, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err == repo.ErrUserNotFound {
		return UserOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return UserOutput{}, errPersistence()
	}
	return toUserOutput(*user), nil
}

func toUserOutput(user model.User) UserOutput {
	return UserOutput{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    string(user.Role),
		Phone:   user.Phone,
		Address: user.Address,
	}
}
