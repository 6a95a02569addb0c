package utils

import (
	"os"
	"os/user"
	"path/filepath"
)

const (
	// HomeEnv overrides the tool home directory.
	HomeEnv = "TOOL5_HOME"

	homeDirName = ".tool5"
)

// UserHomeDir returns the user's home, $HOME first.
func UserHomeDir() string {
	if v := os.Getenv("HOME"); v != "" {
		return v
	}
	currentUser, err := user.Current()
	if err != nil {
		panic(err)
	}
	return currentUser.HomeDir
}

// ToolHome returns the root directory of everything the tool writes:
// $TOOL5_HOME if set, otherwise ~/.tool5.
func ToolHome() string {
	if v := os.Getenv(HomeEnv); v != "" {
		return v
	}
	return filepath.Join(UserHomeDir(), homeDirName)
}
