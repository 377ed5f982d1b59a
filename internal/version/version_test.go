package version

import "testing"

func TestCurrent(t *testing.T) {
	info := Current()
	if info.Version != Version || info.Commit != Commit || info.BuildTime != BuildTime {
		t.Errorf("Current() = %+v, want the stamped package variables", info)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.2.3", Commit: "abc1234", BuildTime: "2026-08-29T00:00:00Z"}
	want := "1.2.3 (abc1234) built 2026-08-29T00:00:00Z"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
