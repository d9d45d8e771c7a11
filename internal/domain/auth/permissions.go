package auth

const (
	RoleViewer  = "viewer"
	RoleAuditor = "auditor"
	RoleAdmin   = "admin"
)

const (
	PermAuditAnalyze   = "audit.analyze"
	PermAuditRun       = "audit.run"
	PermAuditRead      = "audit.read"
	PermEmployeesWrite = "org.employees.write"
	PermMetricsRead    = "metrics.read"
)

var DefaultPermissions = []string{
	PermAuditAnalyze,
	PermAuditRun,
	PermAuditRead,
	PermEmployeesWrite,
	PermMetricsRead,
}

var RolePermissions = map[string][]string{
	RoleViewer: {
		PermAuditAnalyze,
		PermAuditRead,
	},
	RoleAuditor: {
		PermAuditAnalyze,
		PermAuditRun,
		PermAuditRead,
	},
	RoleAdmin: {
		PermAuditAnalyze,
		PermAuditRun,
		PermAuditRead,
		PermEmployeesWrite,
		PermMetricsRead,
	},
}

func RoleHasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
