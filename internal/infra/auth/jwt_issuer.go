package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// アクセストークンの有効期限
const accessTokenTTL = 15 * time.Minute

// HS256のJWT発行。
// tvクレームはtoken_versionで、強制ログアウトの判定に使う
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string) *JWTIssuer {
	return &JWTIssuer{
		secret: []byte(secret),
		ttl:    accessTokenTTL,
	}
}

func (i *JWTIssuer) Issue(userID int64, role string, tokenVersion int) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}
