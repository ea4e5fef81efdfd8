package library

import (
	"path"
	"path/filepath"
	"strings"
)

// relativePath returns full relative to root. Both may use either path
// separator. Degenerate input yields "", and a path outside root yields
// its base name.
func relativePath(root, full string) string {
	if root == "" || full == "" {
		return ""
	}
	r := strings.TrimRight(toSlash(root), "/")
	f := toSlash(full)
	if strings.EqualFold(strings.TrimRight(f, "/"), r) {
		return ""
	}
	if len(f) > len(r) && f[len(r)] == '/' && strings.EqualFold(f[:len(r)], r) {
		return filepath.FromSlash(strings.TrimLeft(f[len(r)+1:], "/"))
	}
	return path.Base(f)
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// sameRoot compares two source roots ignoring case and trailing separators.
func sameRoot(a, b string) bool {
	return strings.EqualFold(
		strings.TrimRight(toSlash(filepath.Clean(a)), "/"),
		strings.TrimRight(toSlash(filepath.Clean(b)), "/"),
	)
}
