// Package xdg resolves the per-user directories exteditor reads and
// writes, following the XDG base directory layout on every OS except
// macOS, where the native locations are used unless overridden.
package xdg

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"git.sr.ht/~exteditor/exteditor/log"
)

// baseDir is one of the XDG base directories.
type baseDir struct {
	env    string
	darwin string
	other  string
}

var (
	configHome = baseDir{"XDG_CONFIG_HOME", "~/Library/Preferences", "~/.config"}
	dataHome   = baseDir{"XDG_DATA_HOME", "~/Library/Application Support", "~/.local/share"}
)

func (b baseDir) join(paths []string) string {
	res := filepath.Join(paths...)
	if filepath.IsAbs(res) {
		return res
	}
	root := os.Getenv(b.env)
	if root == "" {
		root = b.other
		if runtime.GOOS == "darwin" {
			root = b.darwin
		}
		root = ExpandHome(root)
	}
	return filepath.Join(root, res)
}

// ConfigPath returns paths below the user configuration directory.
// Absolute paths are returned as is.
func ConfigPath(paths ...string) string {
	return configHome.join(paths)
}

// DataPath returns paths below the user data directory.
func DataPath(paths ...string) string {
	return dataHome.join(paths)
}

// RuntimePath returns paths below the user runtime directory. Documents
// being edited live there: it is private to the user and usually backed
// by tmpfs.
func RuntimePath(paths ...string) string {
	res := filepath.Join(paths...)
	if filepath.IsAbs(res) {
		return res
	}
	run := os.Getenv("XDG_RUNTIME_DIR")
	if run == "" {
		run = userRuntimePath()
	}
	return filepath.Join(run, res)
}

// replaced in tests
var userRuntimePath = func() string {
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	uid := strconv.Itoa(os.Getuid())
	if fi, err := os.Stat(filepath.Join("/run/user", uid)); err == nil && fi.IsDir() {
		return filepath.Join("/run/user", uid)
	}
	// no logind: fall back to a private directory in /tmp like tmux does
	dir := filepath.Join(os.TempDir(), "exteditor-"+uid)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Warnf("runtime dir: %v", err)
		return os.TempDir()
	}
	return dir
}

// replaced in tests
var lookupUser = user.Current

// HomeDir is $HOME, or the home directory of the passwd entry when HOME is
// not set. It is empty when neither is available.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	u, err := lookupUser()
	if err != nil {
		log.Errorf("home directory: %v", err)
		return ""
	}
	return u.HomeDir
}

// ExpandHome joins the fragments and replaces a leading ~ with the home
// directory.
func ExpandHome(fragments ...string) string {
	res := filepath.Join(fragments...)
	if res != "~" && !strings.HasPrefix(res, "~"+string(filepath.Separator)) {
		return res
	}
	return HomeDir() + strings.TrimPrefix(res, "~")
}
