// Package platform locates strand's on-disk artifacts: the TOML config
// file, the data directory, and the sqlite database inside it.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Paths holds the resolved artifact locations for one app name.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options selects the directory name used for the layout. DevMode
// appends a -dev suffix so development state never touches real data.
type Options struct {
	AppName string
	DevMode bool
}

// DefaultPathsWithOptions resolves the artifact paths from the process
// environment, following each platform's directory conventions.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}

	dataBase := configBase
	switch runtime.GOOS {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataBase = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataBase = v
		}
	}

	env := map[string]string{
		"XDG_CONFIG_HOME": os.Getenv("XDG_CONFIG_HOME"),
		"XDG_DATA_HOME":   os.Getenv("XDG_DATA_HOME"),
		"APPDATA":         os.Getenv("APPDATA"),
		"LOCALAPPDATA":    os.Getenv("LOCALAPPDATA"),
	}
	return Resolve(runtime.GOOS, env, configBase, dataBase, appDirName(opts))
}

// appDirName applies the dev-mode suffix to the directory name.
func appDirName(opts Options) string {
	name := strings.TrimSpace(opts.AppName)
	if name == "" {
		name = "strand"
	}
	if opts.DevMode {
		name += "-dev"
	}
	return name
}

// Resolve computes the artifact paths under the given base directories.
// XDG variables win on linux and APPDATA/LOCALAPPDATA on windows;
// darwin and everything else use the supplied bases as-is.
func Resolve(goos string, env map[string]string, configBase, dataBase, appName string) (Paths, error) {
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("app name is required")
	}
	if configBase == "" || dataBase == "" {
		return Paths{}, errors.New("base directories are required")
	}

	switch goos {
	case "linux":
		if v := env["XDG_CONFIG_HOME"]; v != "" {
			configBase = v
		}
		if v := env["XDG_DATA_HOME"]; v != "" {
			dataBase = v
		}
	case "windows":
		if v := env["APPDATA"]; v != "" {
			configBase = v
		}
		if v := env["LOCALAPPDATA"]; v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, appName)
	return Paths{
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
	}, nil
}
