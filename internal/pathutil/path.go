// Package pathutil provides path manipulation for slash-separated member paths.
package pathutil

import "strings"

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// CommonDir returns the directory shared by all paths, with a trailing
// slash, or "" when they share none. The common prefix is computed byte by
// byte and then cut back to its last slash, so "a/bc" and "a/bd" share "a/".
func CommonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := paths[0]
	for _, p := range paths[1:] {
		n := min(len(prefix), len(p))
		i := 0
		for i < n && prefix[i] == p[i] {
			i++
		}
		prefix = prefix[:i]
	}
	i := strings.LastIndex(prefix, "/")
	if i < 0 {
		return ""
	}
	return prefix[:i+1]
}

// Rel strips dir from path. Paths outside dir are returned unchanged.
func Rel(path, dir string) string {
	return strings.TrimPrefix(path, dir)
}
