package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"store/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

// アクセストークンから復元した本人情報
type authClaims struct {
	UserID       int64
	Role         string
	TokenVersion int
}

// Authorization: Bearer のJWTを検証してcontextに本人情報を積む
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				//HS256以外の署名は受け付けない
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			mapClaims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			ac, err := claimsFrom(mapClaims)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, ac.UserID)
			c.Set(CtxUserRoleKey, ac.Role)
			c.Set(CtxTokenVersionKey, ac.TokenVersion)

			return next(c)
		}
	}
}

// Authorizationヘッダからトークン本体だけを取り出す。形式不正は空文字
func bearerToken(c echo.Context) string {
	authz := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// sub/role/tvの3点が揃っていなければエラー
func claimsFrom(claims jwt.MapClaims) (authClaims, error) {
	userID, err := asInt64(claims["sub"])
	if err != nil || userID <= 0 {
		return authClaims{}, errors.New("invalid sub")
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return authClaims{}, errors.New("invalid role")
	}

	tv, err := asInt64(claims["tv"])
	if err != nil || tv < 0 {
		return authClaims{}, errors.New("invalid tv")
	}

	return authClaims{UserID: userID, Role: role, TokenVersion: int(tv)}, nil
}

// JSON経由のclaimはfloat64で来るのでここで吸収する
func asInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid number")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
