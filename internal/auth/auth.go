package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role is the enumerated authorization level of a platform user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

var (
	ErrMissingToken = errors.New("missing credential")
	ErrInvalidToken = errors.New("invalid credential")
	// ErrForbidden means the identity is valid but lacks the required role.
	ErrForbidden = errors.New("insufficient role")
	// ErrRoleNotFound is returned by the role store when a user has no role
	// record; the verifier downgrades this to RoleBuyer.
	ErrRoleNotFound = errors.New("role not found")
)

// Identity is a verified platform user.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

//go:generate mockgen -source=auth.go -destination=roles_mock.go -package=auth
type RoleRepository interface {
	RoleByUserID(ctx context.Context, userID uuid.UUID) (Role, error)
}

// Verifier resolves opaque bearer credentials to verified identities. Token
// signatures are checked locally (HS256); the role comes from the ledger.
type Verifier struct {
	secret []byte
	roles  RoleRepository
}

func NewVerifier(secret string, roles RoleRepository) *Verifier {
	return &Verifier{secret: []byte(secret), roles: roles}
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	if rawToken == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role, err := v.roles.RoleByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			role = RoleBuyer
		} else {
			return nil, fmt.Errorf("resolving role: %w", err)
		}
	}

	switch role {
	case RoleAdmin, RoleSeller, RoleBuyer:
	default:
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: userID, Role: role}, nil
}

// RequireAdmin gates administrator-only operations.
func RequireAdmin(id *Identity) error {
	if id == nil {
		return ErrMissingToken
	}

	if !id.IsAdmin() {
		return ErrForbidden
	}

	return nil
}
