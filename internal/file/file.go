package file

import "os"

// Exists returns a bool indicating if the specified file exists. Any stat
// failure, not just ENOENT, counts as the file not existing; a path that
// cannot be statted cannot be opened either.
func Exists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
