package ports

// Workspace translates between user-facing paths and file identities
type Workspace interface {
	// Resolve turns a path argument into a file identity
	Resolve(arg string) (string, error)

	// Display renders an identity for output, relative to the root when possible
	Display(id string) string
}

// PathFilter decides whether a displayed path is in scope
type PathFilter interface {
	IsAllowed(path string) bool
}
