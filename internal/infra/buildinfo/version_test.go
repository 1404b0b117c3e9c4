package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestResolve_Ldflags(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
	Version, Commit = "v1.2.0", "abc123"

	bi := &debug.BuildInfo{
		GoVersion: "go1.24.4",
		Main:      debug.Module{Version: "v0.9.0"},
		Settings:  []debug.BuildSetting{{Key: "vcs.revision", Value: "fff"}},
	}
	info := resolve(bi, true)
	if info.Version != "v1.2.0" {
		t.Errorf("Version = %q, ldflags value should win", info.Version)
	}
	if info.Commit != "abc123" {
		t.Errorf("Commit = %q, ldflags value should win", info.Commit)
	}
	if info.GoVersion != "go1.24.4" {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, "go1.24.4")
	}
}

func TestResolve_EmbeddedBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	info := resolve(bi, true)

	want := "v0.3.1 (0123456789ab-dirty) built at 2026-01-02T03:04:05Z with " + info.GoVersion
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestResolve_DevelBuild(t *testing.T) {
	info := resolve(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)
	if info.Version != "dev" {
		t.Errorf("Version = %q, want %q", info.Version, "dev")
	}

	info = resolve(nil, false)
	if info.Commit != "unknown" || info.GoVersion == "" {
		t.Errorf("resolve(nil) = %+v", info)
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version == "" || info.GoVersion == "" {
		t.Errorf("Get() = %+v, fields should be populated", info)
	}
	if String() != info.String() {
		t.Errorf("String() = %q, want %q", String(), info.String())
	}
}
