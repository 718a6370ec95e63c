package scopes

// Action classifies a host-reported package change.
type Action string

const (
	PackageAdded   Action = "added"
	PackageUpdated Action = "updated"
	PackageRemoved Action = "removed"
)

// PackageEvent is the host's notification that a package changed on disk.
// Files lists the paths the host saw change, relative to the package;
// reindexing works at package granularity, so they are informational.
type PackageEvent struct {
	Action  Action
	Package string
	Files   []string
}
