package file

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir, err := ioutil.TempDir("", "file-exists-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	regular := filepath.Join(dir, "cert.pem")
	require.NoError(t, ioutil.WriteFile(regular, []byte("x"), 0600))

	testCases := []struct {
		name     string
		filename string
		expected bool
	}{
		{
			name:     "regular file",
			filename: regular,
			expected: true,
		},
		{
			name:     "directory",
			filename: dir,
			expected: false,
		},
		{
			name:     "missing file",
			filename: filepath.Join(dir, "nope.pem"),
			expected: false,
		},
		{
			// Stat fails with ENOTDIR here, not ENOENT. This must report
			// false rather than blow up.
			name:     "path component is a regular file",
			filename: filepath.Join(regular, "child"),
			expected: false,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.Equal(t, testCase.expected, Exists(testCase.filename))
			})
		})
	}
}
