package auth

// Capability names a privileged action. Every operation checks Allow at its
// boundary instead of comparing role strings inline.
type Capability string

const (
	CapManageShop    Capability = "manage_shop"
	CapManageCatalog Capability = "manage_catalog"
	CapRecordSale    Capability = "record_sale"
	CapApproveSeller Capability = "approve_seller"
	CapApproveRefund Capability = "approve_refund"
	CapApplyRefund   Capability = "apply_refund"
	CapViewReports   Capability = "view_reports"
)

var roleCapabilities = map[string]map[Capability]bool{
	RoleSuperUser: {
		CapManageShop:    true,
		CapManageCatalog: true,
		CapRecordSale:    true,
		CapApproveSeller: true,
		CapApproveRefund: true,
		CapApplyRefund:   true,
		CapViewReports:   true,
	},
	RoleAdmin: {
		CapManageShop:    true,
		CapManageCatalog: true,
		CapRecordSale:    true,
		CapApproveRefund: true,
		CapApplyRefund:   true,
		CapViewReports:   true,
	},
	RoleAttendant: {
		CapRecordSale: true,
	},
	RoleCustomer: {},
}

func Allow(actor Actor, cap Capability) bool {
	caps, ok := roleCapabilities[actor.Role]
	if !ok {
		return false
	}
	return caps[cap]
}
