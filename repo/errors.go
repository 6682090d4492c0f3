package repo

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	platformerrors "github.com/jmgilman/go/errors"
)

// ErrFileNotFound is returned by FileNode when the path is not committed at
// the requested revision.
var ErrFileNotFound = platformerrors.New(platformerrors.CodeNotFound, "file not found at revision")

// wrapError wraps an error with context, classifying it as a platform error type.
// It preserves the original error chain for errors.Is/errors.As compatibility.
// If err is nil, returns nil.
func wrapError(err error, context string) error {
	if err == nil {
		return nil
	}

	classified := classifyError(err)

	return fmt.Errorf("%s: %w", context, classified)
}

// classifyError maps go-git errors to platform error types.
// Unknown errors are passed through unchanged to preserve their original
// information.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	// Already classified (e.g. ErrFileNotFound)
	var pe platformerrors.PlatformError
	if errors.As(err, &pe) {
		return err
	}

	// Repository not found errors → ErrNotFound
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "repository does not exist")
	}

	// Missing references and objects → ErrNotFound
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "reference not found")
	}
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "object not found")
	}
	if errors.Is(err, object.ErrFileNotFound) {
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "file not found")
	}

	// Repository already exists errors → ErrAlreadyExists
	if errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
		return platformerrors.Wrap(err, platformerrors.CodeAlreadyExists, "repository already exists")
	}

	// Malformed objects → ErrDatabase (the object store itself is damaged)
	if errors.Is(err, plumbing.ErrInvalidType) {
		return platformerrors.Wrap(err, platformerrors.CodeDatabase, "invalid object type")
	}

	return err
}
