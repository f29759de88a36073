package sandbox

import (
	"os"
	"path/filepath"

	"github.com/nodebox-sh/nodebox/internal/config"
)

// dockerfile is the sandbox image definition. CHANNEL selects the node
// release track; USER_ID/GROUP_ID make files in the bind-mounted data
// directory come out owned by the invoking host user.
const dockerfile = `FROM ubuntu:24.04

ARG CHANNEL=stable
ARG USER_ID=1000
ARG GROUP_ID=1000

RUN apt-get update && apt-get install -y \
    curl \
    ca-certificates \
    && rm -rf /var/lib/apt/lists/*

RUN curl -fsSL https://raw.githubusercontent.com/algorand/go-algorand/rel/stable/cmd/updater/update.sh -o /tmp/update.sh && \
    chmod +x /tmp/update.sh && \
    /tmp/update.sh -i -c ${CHANNEL} -p /opt/node -n && \
    rm /tmp/update.sh

RUN groupadd -g ${GROUP_ID} node && \
    useradd -u ${USER_ID} -g node -m -s /bin/bash node && \
    mkdir -p /opt/data && chown node:node /opt/data

USER node
ENV PATH="/opt/node:${PATH}"

EXPOSE 4001

CMD ["/opt/node/algod", "-d", "/opt/data"]
`

// writeDockerfile materializes the embedded Dockerfile under .nodebox/ so
// docker build has a context directory. An existing file is left alone so
// operators can customize the image.
func writeDockerfile(rootDir string) (dockerfilePath, contextDir string, err error) {
	contextDir = filepath.Join(rootDir, config.Dir)
	dockerfilePath = filepath.Join(contextDir, config.Dockerfile)

	if _, statErr := os.Stat(dockerfilePath); statErr == nil {
		return dockerfilePath, contextDir, nil
	}
	if err = os.MkdirAll(contextDir, 0o755); err != nil {
		return "", "", err
	}
	if err = os.WriteFile(dockerfilePath, []byte(dockerfile), 0o644); err != nil {
		return "", "", err
	}
	return dockerfilePath, contextDir, nil
}
