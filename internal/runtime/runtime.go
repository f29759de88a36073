// Package runtime abstracts the container runtime the sandbox delegates to.
// The real implementation shells out to the docker binary; tests use Mock.
package runtime

import (
	"io"
	"os/exec"
)

// BuildOptions describe an image build.
type BuildOptions struct {
	Tag        string
	Dockerfile string
	ContextDir string
	BuildArgs  map[string]string
}

// RunOptions describe a detached container run.
type RunOptions struct {
	Name    string
	Image   string
	Publish []string // "hostPort:containerPort"
	Mounts  []string // "hostPath:containerPath"
	User    string   // "uid:gid"
}

// Runtime is the container runtime surface the lifecycle manager needs.
type Runtime interface {
	// ContainerExists reports whether a container of that name exists in
	// any state.
	ContainerExists(name string) bool
	// ContainerRunning reports whether the named container is running.
	ContainerRunning(name string) bool

	StartContainer(name string) error
	StopContainer(name string) error
	RemoveContainer(name string) error

	BuildImage(opts BuildOptions) error
	// RunContainer starts a new detached container and returns its ID.
	RunContainer(opts RunOptions) (string, error)

	// Exec runs a command inside the container and returns combined output.
	Exec(container string, args ...string) (string, error)
	// ExecStdio runs a command inside the container wired to the caller's
	// stdout/stderr; the returned error carries the command's exit status.
	ExecStdio(container string, args ...string) error
	// InteractiveCmd returns a command attaching an interactive session.
	InteractiveCmd(container string, args ...string) *exec.Cmd
	// TailFile follows a file inside the container. Closing the reader
	// stops the tail.
	TailFile(container, path string) (io.ReadCloser, error)

	// RemoveImages removes all images of the given repository.
	RemoveImages(repository string) error
	// PruneDanglingImages removes dangling images.
	PruneDanglingImages() error
}
