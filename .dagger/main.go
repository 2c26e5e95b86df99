// Ragbot CI
//
// Package main provides reproducible builds and tests locally and in CI.
package main

import (
	"context"

	"dagger/ragbot/internal/dagger"
)

// Ragbot is the CI module for the ragbot repository.
type Ragbot struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Ragbot CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "tmp", "logs", ".ragbot"]
	source *dagger.Directory,
) *Ragbot {
	return &Ragbot{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc and
// CGO enabled for the sqlite-vec vector store.
func (r *Ragbot) goContainer() *dagger.Container {
	return r.goContainerFor("")
}

// goContainerFor is goContainer on the given platform. CGO rules out
// cross-compiling, so release builds run natively per platform.
func (r *Ragbot) goContainerFor(platform dagger.Platform) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", r.Source)
}

// Test runs the unit tests with ginkgo.
func (r *Ragbot) Test(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"go", "run", "github.com/onsi/ginkgo/v2/ginkgo", "-r", "--race", "--randomize-all"}).
		Stdout(ctx)
}

// Vet runs go vet over the module.
func (r *Ragbot) Vet(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
