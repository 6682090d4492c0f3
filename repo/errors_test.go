package repo

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode platformerrors.ErrorCode
	}{
		{name: "reference not found", err: plumbing.ErrReferenceNotFound, wantCode: platformerrors.CodeNotFound},
		{name: "object not found", err: plumbing.ErrObjectNotFound, wantCode: platformerrors.CodeNotFound},
		{name: "invalid type", err: plumbing.ErrInvalidType, wantCode: platformerrors.CodeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := wrapError(tt.err, "context")

			assert.Equal(t, tt.wantCode, platformerrors.GetCode(result))
			assert.True(t, errors.Is(result, tt.err), "original error must stay in the chain")
			assert.Contains(t, result.Error(), "context")
		})
	}
}

func TestClassifyError_PassThrough(t *testing.T) {
	plain := errors.New("something else")
	assert.Same(t, plain, classifyError(plain))

	assert.True(t, errors.Is(classifyError(ErrFileNotFound), ErrFileNotFound))
	assert.Nil(t, wrapError(nil, "context"))
}
