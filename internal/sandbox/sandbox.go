// Package sandbox implements the environment lifecycle manager: given the
// current container and data-directory state plus the operator's intent, it
// decides whether to create, resume, or refuse a sandbox, then delegates to
// the container runtime and the snapshot fetcher.
package sandbox

// ContainerDataDir is where the data directory is mounted inside the container.
const ContainerDataDir = "/opt/data"

// LaunchRequest is the operator's intent for `up`. An empty Network means
// "no network named": resume or default, never conflict.
type LaunchRequest struct {
	Network     string
	UseSnapshot bool
}

// Explicit reports whether the operator named a network.
func (r LaunchRequest) Explicit() bool { return r.Network != "" }

// State is the sandbox's derived state. It is recomputed from the container
// runtime and the filesystem on every invocation and never cached: both
// resources can change between runs.
type State struct {
	ContainerExists  bool
	ContainerRunning bool
	DataDirExists    bool
}
