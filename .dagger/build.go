package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/ragbot/internal/dagger"
)

const versionPkg = "github.com/jskoiz/llama3-chatbot-with-rag/pkg/utils"

// Build returns a directory of ragbot binaries for linux/amd64 and linux/arm64.
func (r *Ragbot) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	outputs := dag.Directory()

	for _, goarch := range []string{"amd64", "arm64"} {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := r.goContainerFor(dagger.Platform("linux/" + goarch)).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/ragbot"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned binaries with embedded version info.
func (r *Ragbot) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X '%s.Version=%s'", versionPkg, version),
		fmt.Sprintf("-X '%s.Sha=%s'", versionPkg, commit),
		fmt.Sprintf("-X '%s.Buildtime=%s'", versionPkg, time.Now().UTC().Format(time.RFC3339)),
	}

	return r.Build(ctx, strings.Join(ldflags, " "))
}
