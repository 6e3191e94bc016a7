package system

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProperties(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.prop")
	content := "# begin build properties\n" +
		"ro.build.fingerprint=slim/bacon/bacon:6.0.1/MOB31E/1:user/release-keys\n" +
		"\n" +
		"ro.product.model = A0001\n" +
		"not a property\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	props, err := readProperties(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ro.build.fingerprint": "slim/bacon/bacon:6.0.1/MOB31E/1:user/release-keys",
		"ro.product.model":     "A0001",
	}, props)
}

func TestDescribe_FirstUsableFileWins(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "build.prop")
	require.NoError(t, os.WriteFile(empty, []byte("persist.sys.usb=mtp\n"), 0o600))
	osRelease := filepath.Join(dir, "os-release")
	require.NoError(t, os.WriteFile(osRelease, []byte("ID=debian\nPRETTY_NAME=\"Debian GNU/Linux 12\"\nHOME_URL=x\n"), 0o600))

	info := describe([]string{filepath.Join(dir, "missing"), empty, osRelease})
	assert.Equal(t, runtime.GOOS, info.GOOS)
	assert.Equal(t, runtime.GOARCH, info.GOARCH)
	assert.Equal(t, map[string]string{"ID": "debian", "PRETTY_NAME": "Debian GNU/Linux 12"}, info.Build)
}

func TestDescribe_NoFiles(t *testing.T) {
	info := describe([]string{filepath.Join(t.TempDir(), "missing")})
	assert.Nil(t, info.Build)
	assert.Equal(t, runtime.GOOS, info.GOOS)
}

func TestDescribe_Host(t *testing.T) {
	dir := t.TempDir()
	info := Describe(dir)

	assert.Equal(t, runtime.GOOS, info.GOOS)
	if runtime.GOOS == "linux" {
		assert.NotEmpty(t, info.KernelVersion)
		assert.Positive(t, info.MemTotalMB)
		assert.Positive(t, info.StorageFreeMB)
	}
}
