package user

type Permission string

const (
	// Timesheet permissions
	PermissionTimesheetViewOwn Permission = "timesheet.view_own"
	PermissionTimesheetClock   Permission = "timesheet.clock"
	PermissionTimesheetViewAll Permission = "timesheet.view_all"
	PermissionTimesheetEdit    Permission = "timesheet.edit"
	PermissionTimesheetApprove Permission = "timesheet.approve"

	// Billing permissions
	PermissionInvoiceView   Permission = "invoice.view"
	PermissionInvoiceManage Permission = "invoice.manage"
	PermissionPayrollView   Permission = "payroll.view"

	// Rules
	PermissionRulesView Permission = "rules.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionTimesheetViewOwn,
		PermissionTimesheetClock,
		PermissionTimesheetViewAll,
		PermissionTimesheetEdit,
		PermissionTimesheetApprove,
		PermissionInvoiceView,
		PermissionInvoiceManage,
		PermissionPayrollView,
		PermissionRulesView,
	},
	RoleManager: {
		PermissionTimesheetViewOwn,
		PermissionTimesheetClock,
		PermissionTimesheetViewAll,
		PermissionTimesheetEdit,
		PermissionTimesheetApprove,
		PermissionInvoiceView,
		PermissionInvoiceManage,
		PermissionPayrollView,
		PermissionRulesView,
	},
	RoleGuard: {
		PermissionTimesheetViewOwn,
		PermissionTimesheetClock,
		PermissionRulesView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
