package version

import (
	"testing"
	"time"
)

func stamp(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, GitCommit, BuildTime = version, commit, buildTime
}

func TestGetDevDefaults(t *testing.T) {
	stamp(t, "dev", "", "")

	info := Get()
	if info.Version != "dev" {
		t.Errorf("Version = %q, want dev", info.Version)
	}
	if info.IsRelease {
		t.Error("dev must never be a release")
	}
	if info.BuildTime == "" {
		t.Error("BuildTime should be backfilled")
	}
	if _, err := time.Parse(time.RFC3339, info.BuildTime); err != nil {
		t.Errorf("BuildTime %q is not RFC3339: %v", info.BuildTime, err)
	}
}

func TestGetStampedValues(t *testing.T) {
	stamp(t, "1.2.0", "abc1234", "2026-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("Version = %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("GitCommit = %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
}

func TestGetDirtyVersionNotRelease(t *testing.T) {
	stamp(t, "1.2.0-dirty", "", "")

	if Get().IsRelease {
		t.Error("dirty version must not be a release")
	}
}

func TestStringForms(t *testing.T) {
	cases := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.2.0", GitCommit: "abc1234"}, "1.2.0-abc1234"},
		{Info{Version: "1.2.0", GitCommit: "abc1234", IsDirty: true}, "1.2.0-abc1234-dirty"},
	}
	for _, c := range cases {
		if got := c.info.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
