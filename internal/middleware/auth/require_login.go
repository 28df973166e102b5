package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/kurdotex/order-intake/internal/transport"
)

const userIDKey = "userID"

// RequireLogin resolves the authenticated principal from a bearer token and
// stores the user id in the echo context. Token issuance lives elsewhere;
// this only checks the capability and extracts the subject.
func RequireLogin(jwtSecret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := principalFromRequest(c, jwtSecret)
			if err != nil {
				return transport.Error(c, http.StatusUnauthorized, "Usuario no autenticado", nil)
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// PrincipalID returns the user id stored by RequireLogin.
func PrincipalID(c echo.Context) (uint, bool) {
	v, ok := c.Get(userIDKey).(uint)
	return v, ok
}

func principalFromRequest(c echo.Context, jwtSecret []byte) (uint, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return 0, fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	subRaw, ok := claims["sub"].(float64)
	if !ok || subRaw < 1 {
		return 0, fmt.Errorf("invalid subject claim")
	}

	return uint(subRaw), nil
}

// SignAccessToken mints a short-lived HS256 token for a user id. Used by
// operational tooling and tests; the API itself never issues tokens.
func SignAccessToken(userID uint, jwtSecret []byte, expUnix int64) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": expUnix,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(jwtSecret)
}
