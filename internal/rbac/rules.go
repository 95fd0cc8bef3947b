package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"assistant": {
		"rubric:view",
		"assessment:view",
	},
	"instructor": {
		"rubric:view",
		"rubric:preview",
		"assessment:create",
		"assessment:view",
		"assessment:export",
	},
	"admin": {
		"*", // everything
	},
}
