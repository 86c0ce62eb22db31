package capability

import "testing"

func TestIsGwtHookCommandStandard(t *testing.T) {
	if !IsGwtHookCommand("gwt hook PreToolUse") {
		t.Error("expected standard gwt hook command to match")
	}
	if !IsGwtHookCommand("/usr/bin/gwt hook UserPromptSubmit") {
		t.Error("expected absolute-path gwt hook command to match")
	}
}

func TestIsGwtHookCommandBuildBinary(t *testing.T) {
	if !IsGwtHookCommand("/gwt/target/release/deps/gwt-614ba193345891eb hook PreToolUse") {
		t.Error("expected build-artifact binary name to match")
	}
}

func TestIsGwtHookCommandWindowsExe(t *testing.T) {
	if !IsGwtHookCommand(`C:\Users\user\AppData\Local\gwt\gwt.exe hook PreToolUse`) {
		t.Error("expected windows .exe path to match")
	}
	if !IsGwtHookCommand(`"C:\Program Files\gwt\gwt.exe" hook Stop`) {
		t.Error("expected quoted windows .exe path to match")
	}
}

func TestIsGwtHookCommandRejectsOtherTools(t *testing.T) {
	cases := []string{
		"echo hello",
		"other-tool hook PreToolUse",
		"/some/path hook something",
	}
	for _, c := range cases {
		if IsGwtHookCommand(c) {
			t.Errorf("expected %q not to match", c)
		}
	}
}

func TestIsExpectedGwtHookCommandMatchesNormalizedPath(t *testing.T) {
	cmd := `C:\Program Files\gwt\gwt.exe hook PreToolUse`
	if !IsExpectedGwtHookCommand(cmd, "PreToolUse", "C:/Program Files/gwt/gwt") {
		t.Error("expected normalized windows path to match posix-style equivalent")
	}
}

func TestIsExpectedGwtHookCommandRejectsWrongEvent(t *testing.T) {
	if IsExpectedGwtHookCommand("gwt hook PreToolUse", "Stop", "gwt") {
		t.Error("expected event mismatch to reject")
	}
}

func TestIsExpectedGwtHookCommandRejectsDifferentPath(t *testing.T) {
	if IsExpectedGwtHookCommand("/path/to/gwt-old hook Stop", "Stop", "/path/to/gwt-new") {
		t.Error("expected differing executable identity to reject")
	}
}

func TestIsTemporaryExecutionPathDetectsKnownPatterns(t *testing.T) {
	cases := []string{
		"/home/user/.bun/install/cache/@scope/gwt@1.0.0/gwt",
		"/home/user/.npm/_npx/12345/node_modules/gwt/gwt",
		"/tmp/bunx-abc123/gwt",
		"/project/node_modules/.cache/gwt/gwt",
		`C:\Users\user\.bun\install\cache\gwt@1.0.0\gwt.exe`,
	}
	for _, c := range cases {
		if _, ok := IsTemporaryExecutionPath(c); !ok {
			t.Errorf("expected %q to be flagged temporary", c)
		}
	}
}

func TestIsTemporaryExecutionPathIgnoresStableInstalls(t *testing.T) {
	cases := []string{
		"/usr/local/bin/gwt",
		"/home/user/projects/gwt/target/release/gwt",
	}
	for _, c := range cases {
		if _, ok := IsTemporaryExecutionPath(c); ok {
			t.Errorf("expected %q not to be flagged temporary", c)
		}
	}
}

func TestNormalizeExecutablePathStripsQuotesAndExeSuffix(t *testing.T) {
	got := NormalizeExecutablePath(`"C:\Program Files\gwt\gwt.exe"`)
	want := "C:/Program Files/gwt/gwt"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeExecutablePathEmpty(t *testing.T) {
	if got := NormalizeExecutablePath(""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := NormalizeExecutablePath("///"); got != "" {
		t.Errorf("got %q, want empty for all-slash input", got)
	}
}
