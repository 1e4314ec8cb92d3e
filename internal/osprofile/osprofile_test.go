package osprofile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectFrom(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		kernel string
		want   Profile
	}{
		{name: "plain linux", goos: "linux", kernel: "Linux version 6.8.0-generic", want: Linux},
		{name: "wsl still linux", goos: "linux", kernel: "Linux version 5.15.153.1-microsoft-standard-WSL2", want: Linux},
		{name: "darwin", goos: "darwin", kernel: "", want: MacOS},
		{name: "windows", goos: "windows", kernel: "", want: Windows},
		{name: "bsd falls through", goos: "freebsd", kernel: "", want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DetectFrom(tt.goos, tt.kernel))
		})
	}
}

func TestIsWSL(t *testing.T) {
	require.True(t, IsWSL("Linux version 5.15.153.1-Microsoft-standard-WSL2"))
	require.False(t, IsWSL("Linux version 6.8.0-generic"))
	require.False(t, IsWSL(""))
}

func TestDefaultCloneDir(t *testing.T) {
	home := filepath.Join("home", "dev")

	require.Equal(t, filepath.Join(home, "Projects"), Linux.DefaultCloneDir(home))
	require.Equal(t, filepath.Join(home, "Development"), MacOS.DefaultCloneDir(home))
	require.Equal(t, filepath.Join(home, "Documents", "Git"), Windows.DefaultCloneDir(home))
	require.Equal(t, filepath.Join(home, "repositories"), Unknown.DefaultCloneDir(home))
}

func TestProfileString(t *testing.T) {
	require.Equal(t, "linux", Linux.String())
	require.Equal(t, "macos", MacOS.String())
	require.Equal(t, "windows", Windows.String())
	require.Equal(t, "unknown", Unknown.String())
}
