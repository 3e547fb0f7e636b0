package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultAppName names the config and data directories.
const DefaultAppName = "tick"

// Paths holds the per-user locations tick reads and writes.
type Paths struct {
	ConfigPath string
	DataDir    string
	// DBPath is the SQLite database; FilePath is the JSON store used by the file backend.
	DBPath   string
	FilePath string
}

// Env is the process state path resolution depends on.
type Env struct {
	GOOS          string
	UserConfigDir string
	UserDataDir   string
	Getenv        func(string) string
}

// baseOverrides lists the variables that relocate the config and data bases per OS.
// Other systems keep the os.UserConfigDir layout.
var baseOverrides = map[string]struct{ config, data string }{
	"linux":   {config: "XDG_CONFIG_HOME", data: "XDG_DATA_HOME"},
	"windows": {config: "APPDATA", data: "LOCALAPPDATA"},
}

// CurrentEnv captures Env for the running process. Linux data lives under
// ~/.local/share; every other OS shares the config base.
func CurrentEnv() (Env, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Env{}, fmt.Errorf("user config dir: %w", err)
	}
	env := Env{
		GOOS:          runtime.GOOS,
		UserConfigDir: configDir,
		UserDataDir:   configDir,
		Getenv:        os.Getenv,
	}
	if env.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Env{}, fmt.Errorf("user home dir: %w", err)
		}
		env.UserDataDir = filepath.Join(home, ".local", "share")
	}
	return env, nil
}

// Resolve lays out tick's files for appName under env. Dev mode appends "-dev" so
// development runs never touch the real list.
func Resolve(env Env, appName string, devMode bool) (Paths, error) {
	if env.UserConfigDir == "" || env.UserDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	name := strings.TrimSpace(appName)
	if name == "" {
		return Paths{}, errors.New("empty app name")
	}
	if devMode {
		name += "-dev"
	}

	configBase, dataBase := env.UserConfigDir, env.UserDataDir
	if vars, ok := baseOverrides[env.GOOS]; ok && env.Getenv != nil {
		if v := env.Getenv(vars.config); v != "" {
			configBase = v
		}
		if v := env.Getenv(vars.data); v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, name)
	return Paths{
		ConfigPath: filepath.Join(configBase, name, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, name+".db"),
		FilePath:   filepath.Join(dataDir, name+".json"),
	}, nil
}

// ForProcess resolves paths from the running process environment. A blank appName
// falls back to DefaultAppName.
func ForProcess(appName string, devMode bool) (Paths, error) {
	env, err := CurrentEnv()
	if err != nil {
		return Paths{}, err
	}
	if strings.TrimSpace(appName) == "" {
		appName = DefaultAppName
	}
	return Resolve(env, appName, devMode)
}
