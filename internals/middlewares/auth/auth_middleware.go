// file: internals/middlewares/auth/auth_middleware.go
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"bimbelku_backend/internals/features/users/auth/session"
)

type AuthJWTOpts struct {
	Secret              string
	Sessions            *session.Registry
	AllowCookieFallback bool // pakai cookie access_token jika tidak ada Bearer
}

// AuthJWT memverifikasi access token HS256, lalu mengecek registry sesi:
// token yang masih valid secara kriptografis tetap ditolak kalau sesinya
// sudah idle melewati window. Lolos → aktivitas sesi di-touch dan
// user_id + role disimpan di locals.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}
	if o.Sessions == nil {
		panic("AuthJWT: Sessions wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		// 1) Ambil token: Authorization: Bearer xxx (atau cookie jika diizinkan)
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		// 2) Parse + verifikasi algoritma
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		userIDStr := strClaim(claims, "id")
		if userIDStr == "" {
			userIDStr = strClaim(claims, "sub")
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		// 3) Sesi masih hidup? (sliding window, terpisah dari expiry token)
		if !o.Sessions.IsValid(userID) {
			return fiber.NewError(fiber.StatusUnauthorized, "Session expired. Please login again.")
		}
		o.Sessions.Touch(userID)

		c.Locals("user_id", userID.String())
		if role := strClaim(claims, "role"); role != "" {
			c.Locals("role", role)
		}
		c.Locals("jwt_claims", claims)

		return c.Next()
	}
}

// OnlyRole menolak request yang role-nya bukan salah satu dari roles.
func OnlyRole(message string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, message)
	}
}

func strClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
