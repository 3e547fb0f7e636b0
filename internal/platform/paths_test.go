package platform

import (
	"path/filepath"
	"testing"
)

func fakeEnv(goos, configDir, dataDir string, vars map[string]string) Env {
	return Env{
		GOOS:          goos,
		UserConfigDir: configDir,
		UserDataDir:   dataDir,
		Getenv:        func(k string) string { return vars[k] },
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		env        Env
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux xdg",
			env:        fakeEnv("linux", "/fallback/config", "/fallback/data", map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"}),
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux without xdg",
			env:        fakeEnv("linux", "/home/me/.config", "/home/me/.local/share", nil),
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.local/share",
		},
		{
			name:       "windows appdata",
			env:        fakeEnv("windows", `C:\fallback\config`, `C:\fallback\data`, map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`}),
			wantConfig: `C:\Roaming`,
			wantData:   `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			env:        fakeEnv("darwin", "/Users/me/Library/Application Support", "/Users/me/Library/Application Support", map[string]string{"XDG_CONFIG_HOME": "/ignored"}),
			wantConfig: "/Users/me/Library/Application Support",
			wantData:   "/Users/me/Library/Application Support",
		},
		{
			name:       "nil getenv keeps bases",
			env:        Env{GOOS: "linux", UserConfigDir: "/cfg", UserDataDir: "/data"},
			wantConfig: "/cfg",
			wantData:   "/data",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Resolve(tc.env, "tick", false)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			want := Paths{
				ConfigPath: filepath.Join(tc.wantConfig, "tick", "config.toml"),
				DataDir:    filepath.Join(tc.wantData, "tick"),
				DBPath:     filepath.Join(tc.wantData, "tick", "tick.db"),
				FilePath:   filepath.Join(tc.wantData, "tick", "tick.json"),
			}
			if p != want {
				t.Fatalf("Resolve() = %#v, want %#v", p, want)
			}
		})
	}
}

func TestResolveRejectsEmptyInputs(t *testing.T) {
	if _, err := Resolve(fakeEnv("darwin", "", "/tmp/data", nil), "tick", false); err == nil {
		t.Fatal("expected error for empty dirs")
	}
	if _, err := Resolve(fakeEnv("linux", "/cfg", "/data", nil), "  ", false); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

func TestResolveDevModeSeparatesFiles(t *testing.T) {
	p, err := Resolve(fakeEnv("linux", "/cfg", "/data", nil), "tick", true)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.ConfigPath != filepath.Join("/cfg", "tick-dev", "config.toml") {
		t.Fatalf("unexpected config path %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "tick-dev.db" || filepath.Base(p.FilePath) != "tick-dev.json" {
		t.Fatalf("expected dev store names, got %q and %q", p.DBPath, p.FilePath)
	}
}

func TestForProcessDefaultsAppName(t *testing.T) {
	p, err := ForProcess(" ", true)
	if err != nil {
		t.Fatalf("ForProcess() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != DefaultAppName+"-dev" {
		t.Fatalf("expected default dev app dir, got %q", p.ConfigPath)
	}
}
