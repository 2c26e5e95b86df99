package main

import (
	"context"
	"errors"
	"fmt"

	"dagger/ragbot/internal/dagger"
)

// CheckTidy fails when go.mod or go.sum would change under "go mod tidy".
// The diff is included in the error.
//
// +check
func (r *Ragbot) CheckTidy(ctx context.Context) (string, error) {
	_, err := r.goContainer().
		WithExec([]string{"go", "mod", "tidy", "-diff"}).
		Stdout(ctx)

	var execErr *dagger.ExecError
	switch {
	case errors.As(err, &execErr):
		return "", fmt.Errorf("module is not tidy, run 'go mod tidy':\n\n%s", execErr.Stdout)
	case err != nil:
		return "", fmt.Errorf("running go mod tidy: %w", err)
	}

	return "go.mod and go.sum are tidy", nil
}
