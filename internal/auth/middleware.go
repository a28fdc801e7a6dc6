package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/sla-engine/internal/domain"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

const principalKey = "auth_principal"

const internalKeyHeader = "X-Internal-Api-Key"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectID string
	Role      domain.Role
	Internal  bool
}

// AuthMiddleware validates bearer tokens and the internal service API key.
type AuthMiddleware struct {
	tokens     *TokenManager
	apiKeyHash string
}

// NewAuthMiddleware constructs middleware. apiKeyHash is the bcrypt hash of
// the shared key the ticketing subsystem authenticates with; empty disables
// the internal path.
func NewAuthMiddleware(tokens *TokenManager, apiKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, apiKeyHash: apiKeyHash}
}

// Handle enforces authentication for protected routes. Internal callers
// present the service key; everyone else presents a bearer token with a role
// claim.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if key := c.Get(internalKeyHeader); key != "" {
		if m.apiKeyHash == "" {
			return apperrors.NewUnauthorized("internal access disabled")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(m.apiKeyHash), []byte(key)); err != nil {
			return apperrors.NewUnauthorized("invalid api key")
		}
		c.Locals(principalKey, &Principal{SubjectID: "internal", Role: domain.RoleAdmin, Internal: true})
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{SubjectID: claims.SubjectID, Role: claims.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
