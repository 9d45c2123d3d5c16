package utils

import "path/filepath"

// GetAbsolutePath returns path if it was absolute, otherwise joins it with baseDir
func GetAbsolutePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}

// SiblingPath returns the path of a companion file next to path, e.g. "list.csv" -> "list.csv.lock".
func SiblingPath(path, suffix string) string {
	return path + suffix
}
