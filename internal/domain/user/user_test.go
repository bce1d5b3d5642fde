package user

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)

func contextWithClaims(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	token, _, err := testAuth.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestClaimsFromContext_Manager(t *testing.T) {
	ctx := contextWithClaims(t, map[string]interface{}{
		"user_id":    "user-1",
		"company_id": "company-1",
		"role":       "manager",
	})

	c, err := ClaimsFromContext(ctx)

	require.NoError(t, err)
	assert.Equal(t, "company-1", c.CompanyID)
	assert.Equal(t, "user-1", c.UserID)
	assert.True(t, c.IsManager())
	assert.False(t, c.IsGuard())
	assert.True(t, c.OwnsAssignment("anyone"))
}

func TestClaimsFromContext_Guard(t *testing.T) {
	ctx := contextWithClaims(t, map[string]interface{}{
		"user_id":    "user-2",
		"company_id": "company-1",
		"role":       "guard",
		"guard_id":   "guard-7",
	})

	c, err := ClaimsFromContext(ctx)

	require.NoError(t, err)
	require.NotNil(t, c.GuardID)
	assert.True(t, c.OwnsAssignment("guard-7"))
	assert.False(t, c.OwnsAssignment("guard-8"))
}

func TestClaimsFromContext_Errors(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		_, err := ClaimsFromContext(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing company", func(t *testing.T) {
		ctx := contextWithClaims(t, map[string]interface{}{"user_id": "u", "role": "manager"})
		_, err := ClaimsFromContext(ctx)
		assert.ErrorIs(t, err, ErrCompanyIDRequired)
	})

	t.Run("unknown role", func(t *testing.T) {
		ctx := contextWithClaims(t, map[string]interface{}{"company_id": "c", "role": "pending"})
		_, err := ClaimsFromContext(ctx)
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("missing role", func(t *testing.T) {
		ctx := contextWithClaims(t, map[string]interface{}{"company_id": "c", "user_id": "u"})
		_, err := ClaimsFromContext(ctx)
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("guard without guard id", func(t *testing.T) {
		ctx := contextWithClaims(t, map[string]interface{}{"company_id": "c", "role": "guard"})
		_, err := ClaimsFromContext(ctx)
		assert.ErrorIs(t, err, ErrGuardIDRequired)
	})
}

func TestClaims_OwnsAssignment_UnknownRole(t *testing.T) {
	guardID := "guard-7"
	c := Claims{CompanyID: "c", Role: Role("auditor"), GuardID: &guardID}

	assert.False(t, c.OwnsAssignment("guard-7"))
	assert.False(t, c.OwnsAssignment("guard-8"))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleOwner, PermissionInvoiceManage))
	assert.True(t, HasPermission(RoleManager, PermissionTimesheetApprove))
	assert.True(t, HasPermission(RoleGuard, PermissionTimesheetClock))
	assert.False(t, HasPermission(RoleGuard, PermissionTimesheetViewAll))
	assert.False(t, HasPermission(Role("pending"), PermissionRulesView))
}
