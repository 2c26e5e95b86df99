package index

import (
	"errors"
	"fmt"
)

// ErrNoValidDocuments is the cause of a NoValidDocuments failure.
var ErrNoValidDocuments = errors.New("no valid documents with non-empty body found")

// FailureKind discriminates why a build did not produce a generation.
type FailureKind int

const (
	// NoValidDocuments means the build was given nothing to index.
	NoValidDocuments FailureKind = iota + 1

	// BuildError means embedding, logging or index construction failed.
	BuildError
)

func (k FailureKind) String() string {
	switch k {
	case NoValidDocuments:
		return "no valid documents"
	case BuildError:
		return "build error"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// BuildFailure is returned by Build when no generation was produced. The
// previously active generation must be left in place.
type BuildFailure struct {
	Kind FailureKind
	Err  error
}

func (f *BuildFailure) Error() string {
	if f.Err == nil {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *BuildFailure) Unwrap() error {
	return f.Err
}

// IsKind reports whether err is a BuildFailure of kind k.
func IsKind(err error, k FailureKind) bool {
	var f *BuildFailure
	return errors.As(err, &f) && f.Kind == k
}

func buildError(format string, err error) *BuildFailure {
	return &BuildFailure{Kind: BuildError, Err: fmt.Errorf(format+": %w", err)}
}
