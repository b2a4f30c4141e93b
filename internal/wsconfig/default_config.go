package wsconfig

// defaultGlobalConfigTemplate is a commented starting point for a global
// config file. No command in this module writes it out; `config set`
// writes the encoded GlobalConfig instead.
const defaultGlobalConfigTemplate = `# workstack global configuration

# Root directory holding every worktree this tool manages, one
# subdirectory per repository, one subdirectory per worktree within that.
# Required.
workstacks_root = "~/worktrees"

# Integrate with the stacked-branch tool (gt). When true, "create" uses
# "gt create" instead of a bare "git branch", and "list --stacks" and
# "switch --up/--down" become available.
use_graphite = false

# Show pull-request info/checks columns in "list" and "status" output.
show_pr_info = false
show_pr_checks = false

# Directory name prefix used for rebase-stack worktrees, created as a
# sibling of the repository root.
rebase_stack_location = ".rebase-stack"
`

// DefaultGlobalConfigTemplate returns the commented template written for a
// first-time global config file.
func DefaultGlobalConfigTemplate() string {
	return defaultGlobalConfigTemplate
}

const defaultPerRepoConfigTemplate = `# per-repository workstack configuration

[env]
# KEY = "template with {worktree_path}, {repo_root}, or {name}"

[post_create]
# shell = "bash"
# commands = ["npm install"]
`

// DefaultPerRepoConfigTemplate returns the commented template written for
// a first-time per-repo config file.
func DefaultPerRepoConfigTemplate() string {
	return defaultPerRepoConfigTemplate
}
