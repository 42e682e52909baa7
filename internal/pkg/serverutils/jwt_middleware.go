package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	localTenantId  = "tenant_id"
	localStaffId   = "staff_id"
	localStaffName = "staff_name"
)

// StaffAuth authenticates admin-API requests. Tokens carry the tenant scope
// and the acting staff member; both land in the request locals.
func StaffAuth(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid claims"))
		}

		tenantId, err := parseClaimId(claims, "tenant_id")
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing tenant scope"))
		}
		staffId, err := parseClaimId(claims, "staff_id")
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing staff identity"))
		}

		ctx.Locals(localTenantId, tenantId)
		ctx.Locals(localStaffId, staffId)
		if name, ok := claims["staff_name"].(string); ok {
			ctx.Locals(localStaffName, name)
		}
		return ctx.Next()
	}
}

func parseClaimId(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("claim %s missing", key)
	}
	return uuid.Parse(raw)
}

func TenantId(ctx *fiber.Ctx) uuid.UUID {
	if id, ok := ctx.Locals(localTenantId).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func StaffId(ctx *fiber.Ctx) uuid.UUID {
	if id, ok := ctx.Locals(localStaffId).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func StaffName(ctx *fiber.Ctx) string {
	if name, ok := ctx.Locals(localStaffName).(string); ok {
		return name
	}
	return ""
}
