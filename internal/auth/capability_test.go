package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowByRole(t *testing.T) {
	cases := []struct {
		role string
		cap  Capability
		want bool
	}{
		{RoleSuperUser, CapApproveSeller, true},
		{RoleSuperUser, CapManageShop, true},
		{RoleAdmin, CapApproveSeller, false},
		{RoleAdmin, CapManageShop, true},
		{RoleAdmin, CapApproveRefund, true},
		{RoleAdmin, CapApplyRefund, true},
		{RoleAttendant, CapRecordSale, true},
		{RoleAttendant, CapManageCatalog, false},
		{RoleAttendant, CapApplyRefund, false},
		{RoleCustomer, CapRecordSale, false},
		{RoleCustomer, CapViewReports, false},
	}

	for _, tc := range cases {
		got := Allow(Actor{Role: tc.role}, tc.cap)
		assert.Equalf(t, tc.want, got, "role %s capability %s", tc.role, tc.cap)
	}
}

func TestAllowUnknownRole(t *testing.T) {
	assert.False(t, Allow(Actor{Role: "Ghost"}, CapRecordSale))
	assert.False(t, Allow(Actor{}, CapManageShop))
}
