package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFrom(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	tests := []struct {
		name                  string
		version, commit, date string
		info                  debug.BuildInfo
		want                  [3]string
	}{
		{
			name:    "go install",
			version: "dev", commit: "none", date: "unknown",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "v0.3.1"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
				},
			},
			want: [3]string{"v0.3.1", "abc123", "2026-01-02T03:04:05Z"},
		},
		{
			name:    "local build",
			version: "dev", commit: "none", date: "unknown",
			info: debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: [3]string{"dev", "none", "unknown"},
		},
		{
			name:    "ldflags win",
			version: "v1.0.0", commit: "fff", date: "2026-05-01",
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "v0.3.1"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
			},
			want: [3]string{"v1.0.0", "fff", "2026-05-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.version, tt.commit, tt.date
			fillFrom(&tt.info)
			if got := [3]string{Version, Commit, Date}; got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "clawdsign/") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(Template(), "{{.Name}} version") {
		t.Error("Template() missing cobra name placeholder")
	}
}
