package repo

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// isMemoryFilesystem checks if the given filesystem is memory-based.
// Cache artifacts of a memory-based repository cannot be placed next to its
// Git directory on disk, so callers use this to pick an in-memory cache
// filesystem instead.
//
// Chrooted filesystems (including the one memfs.New returns) hide the
// concrete type, so the check follows Underlying() until it reaches it.
func isMemoryFilesystem(fs billy.Basic) bool {
	typeName := fmt.Sprintf("%T", fs)
	if strings.Contains(strings.ToLower(typeName), "mem") {
		return true
	}

	if u, ok := fs.(interface{ Underlying() billy.Basic }); ok {
		return isMemoryFilesystem(u.Underlying())
	}

	return false
}
