package runtime

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Docker drives the docker binary on the host.
type Docker struct{}

// NewDocker returns a Runtime backed by the docker CLI.
func NewDocker() *Docker { return &Docker{} }

// inspectStatus returns the container's docker status, or "" if the
// container does not exist.
func (d *Docker) inspectStatus(name string) string {
	out, err := exec.Command("docker", "inspect", "-f", "{{.State.Status}}", name).CombinedOutput()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (d *Docker) ContainerExists(name string) bool {
	return d.inspectStatus(name) != ""
}

func (d *Docker) ContainerRunning(name string) bool {
	return d.inspectStatus(name) == "running"
}

func (d *Docker) StartContainer(name string) error {
	out, err := exec.Command("docker", "start", name).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker start failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (d *Docker) StopContainer(name string) error {
	out, err := exec.Command("docker", "stop", name).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker stop failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (d *Docker) RemoveContainer(name string) error {
	out, err := exec.Command("docker", "rm", name).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker rm failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func (d *Docker) BuildImage(opts BuildOptions) error {
	args := []string{"build", "-t", opts.Tag}
	if opts.Dockerfile != "" {
		args = append(args, "-f", opts.Dockerfile)
	}
	for k, v := range opts.BuildArgs {
		args = append(args, "--build-arg", fmt.Sprintf("%s=%s", k, v))
	}
	args = append(args, opts.ContextDir)

	// Build output goes straight to the terminal; first builds take a while
	// and a silent docker build looks hung.
	cmd := exec.Command("docker", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("docker build failed: %w", err)
	}
	return nil
}

func (d *Docker) RunContainer(opts RunOptions) (string, error) {
	args := []string{"run", "-d", "--name", opts.Name}
	for _, p := range opts.Publish {
		args = append(args, "-p", p)
	}
	for _, m := range opts.Mounts {
		args = append(args, "-v", m)
	}
	if opts.User != "" {
		args = append(args, "--user", opts.User)
	}
	args = append(args, opts.Image)

	out, err := exec.Command("docker", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker run failed: %s: %w", strings.TrimSpace(string(out)), err)
	}

	id := strings.TrimSpace(string(out))
	if len(id) > 12 {
		id = id[:12]
	}
	return id, nil
}

func (d *Docker) Exec(container string, args ...string) (string, error) {
	full := append([]string{"exec", container}, args...)
	out, err := exec.Command("docker", full...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker exec failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

func (d *Docker) ExecStdio(container string, args ...string) error {
	full := append([]string{"exec", container}, args...)
	cmd := exec.Command("docker", full...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (d *Docker) InteractiveCmd(container string, args ...string) *exec.Cmd {
	full := append([]string{"exec", "-it", container}, args...)
	return exec.Command("docker", full...)
}

func (d *Docker) TailFile(container, path string) (io.ReadCloser, error) {
	cmd := exec.Command("docker", "exec", container, "tail", "-n", "100", "-f", path)
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("tail pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("docker exec tail failed: %w", err)
	}
	return &tailReader{pipe: pipe, cmd: cmd}, nil
}

// tailReader wraps the tail pipe so Close also reaps the child process.
type tailReader struct {
	pipe io.ReadCloser
	cmd  *exec.Cmd
}

func (t *tailReader) Read(p []byte) (int, error) { return t.pipe.Read(p) }

func (t *tailReader) Close() error {
	t.pipe.Close()
	if t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	t.cmd.Wait()
	return nil
}

func (d *Docker) RemoveImages(repository string) error {
	// Resolve all tags of the repository first; rmi wants explicit refs.
	out, err := exec.Command("docker", "images", "-q", repository).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker images failed: %s: %w", strings.TrimSpace(string(out)), err)
	}

	ids := strings.Fields(string(out))
	if len(ids) == 0 {
		return nil
	}
	args := append([]string{"rmi", "-f"}, ids...)
	rmOut, err := exec.Command("docker", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker rmi failed: %s: %w", strings.TrimSpace(string(rmOut)), err)
	}
	return nil
}

func (d *Docker) PruneDanglingImages() error {
	out, err := exec.Command("docker", "image", "prune", "-f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("docker image prune failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}
