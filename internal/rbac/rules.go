package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"course:view",
		"course:start",
		"lesson:start",
		"lesson:complete",
		"quiz:view",
		"quiz:submit",
		"progress:view-own",
		"grade:view-own",
	},
	"teacher": {
		"course:view",
		"content:author",
		"quiz:view",
		"quiz:grade",
		"grade:view-all",
		"progress:view-all",
		"reports:view",
		"assets:write",
	},
	"admin": {
		"*", // everything
	},
}
