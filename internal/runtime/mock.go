package runtime

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Container states tracked by the mock.
const (
	StateRunning = "running"
	StateExited  = "exited"
)

// Call records one runtime invocation for later assertion.
type Call struct {
	Method string
	Args   []string
}

// Mock is an in-memory Runtime used by lifecycle tests. It tracks container
// and image state, records every call, and can inject per-method errors.
type Mock struct {
	mu         sync.Mutex
	containers map[string]string // name -> state
	images     map[string]bool   // tag -> exists
	calls      []Call
	errs       map[string]error
	execOutput string
	tailOutput string
}

// NewMock returns an empty mock runtime.
func NewMock() *Mock {
	return &Mock{
		containers: make(map[string]string),
		images:     make(map[string]bool),
		errs:       make(map[string]error),
	}
}

// SetError makes the named method fail with err.
func (m *Mock) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
}

// AddContainer seeds a container in the given state.
func (m *Mock) AddContainer(name, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers[name] = state
}

// SetExecOutput sets the canned output returned by Exec.
func (m *Mock) SetExecOutput(out string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execOutput = out
}

// SetTailOutput sets the content returned by TailFile.
func (m *Mock) SetTailOutput(out string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tailOutput = out
}

// CallsFor returns all recorded calls to the named method.
func (m *Mock) CallsFor(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Calls returns the full call log in order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Mock) record(method string, args ...string) error {
	m.calls = append(m.calls, Call{Method: method, Args: args})
	return m.errs[method]
}

func (m *Mock) ContainerExists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ContainerExists", name)
	_, ok := m.containers[name]
	return ok
}

func (m *Mock) ContainerRunning(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ContainerRunning", name)
	return m.containers[name] == StateRunning
}

func (m *Mock) StartContainer(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("StartContainer", name); err != nil {
		return err
	}
	if _, ok := m.containers[name]; !ok {
		return fmt.Errorf("no such container: %s", name)
	}
	m.containers[name] = StateRunning
	return nil
}

func (m *Mock) StopContainer(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("StopContainer", name); err != nil {
		return err
	}
	if _, ok := m.containers[name]; !ok {
		return fmt.Errorf("no such container: %s", name)
	}
	m.containers[name] = StateExited
	return nil
}

func (m *Mock) RemoveContainer(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveContainer", name); err != nil {
		return err
	}
	if _, ok := m.containers[name]; !ok {
		return fmt.Errorf("no such container: %s", name)
	}
	delete(m.containers, name)
	return nil
}

func (m *Mock) BuildImage(opts BuildOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("BuildImage", opts.Tag); err != nil {
		return err
	}
	m.images[opts.Tag] = true
	return nil
}

func (m *Mock) RunContainer(opts RunOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RunContainer", opts.Name, opts.Image); err != nil {
		return "", err
	}
	m.containers[opts.Name] = StateRunning
	return "deadbeef0000", nil
}

func (m *Mock) Exec(container string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := append([]string{container}, args...)
	if err := m.record("Exec", rec...); err != nil {
		return "", err
	}
	if m.containers[container] != StateRunning {
		return "", fmt.Errorf("container %s is not running", container)
	}
	return m.execOutput, nil
}

func (m *Mock) ExecStdio(container string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := append([]string{container}, args...)
	if err := m.record("ExecStdio", rec...); err != nil {
		return err
	}
	if m.containers[container] != StateRunning {
		return fmt.Errorf("container %s is not running", container)
	}
	return nil
}

func (m *Mock) InteractiveCmd(container string, args ...string) *exec.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("InteractiveCmd", append([]string{container}, args...)...)
	return exec.Command("true")
}

func (m *Mock) TailFile(container, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("TailFile", container, path); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(m.tailOutput)), nil
}

func (m *Mock) RemoveImages(repository string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("RemoveImages", repository); err != nil {
		return err
	}
	for tag := range m.images {
		if strings.HasPrefix(tag, repository+":") || tag == repository {
			delete(m.images, tag)
		}
	}
	return nil
}

func (m *Mock) PruneDanglingImages() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record("PruneDanglingImages")
}

// HasImage reports whether the mock currently holds the image tag.
func (m *Mock) HasImage(tag string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.images[tag]
}
