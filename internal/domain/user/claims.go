package user

import (
	"context"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

// ClaimsFromContext reads the verified token claims placed in ctx by jwtauth.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return Claims{}, ErrCompanyIDRequired
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)

	c := Claims{
		UserID:    userID,
		CompanyID: companyID,
		Role:      Role(role),
	}

	if guardID, ok := claims["guard_id"].(string); ok && guardID != "" {
		c.GuardID = &guardID
	}
	if !c.Role.IsValid() {
		return Claims{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	if c.IsGuard() && c.GuardID == nil {
		return Claims{}, ErrGuardIDRequired
	}

	return c, nil
}
