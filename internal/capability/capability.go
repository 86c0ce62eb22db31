// Package capability holds the pure predicate functions used to recognize
// gwt's own hook commands and its own temporary execution environments,
// per §4.E/§4.I of the hook/bridge registrar design.
package capability

import "strings"

const hookCommandDelimiter = " hook "

// temporaryExecutionPatterns flag package-manager cache paths that won't
// survive a cache purge, so registering hooks from them is unreliable.
var temporaryExecutionPatterns = []string{
	".bun/install/cache/",
	"/tmp/bunx-",
	"/.npm/_npx/",
	"node_modules/.cache/",
}

// ParsedHookCommand is a hook command string split into the executable
// identity it names and the event it was registered for.
type ParsedHookCommand struct {
	ExecutableIdentity string
	Event              string
}

// NormalizeExecutablePath strips wrapping quotes, converts backslashes to
// forward slashes, trims a trailing slash, and case-folds a trailing
// ".exe" suffix off the path's final component. Two paths that name the
// same binary on different platforms normalize to the same string.
func NormalizeExecutablePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if len(trimmed) >= 2 && trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"' {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	normalized := strings.ReplaceAll(trimmed, `\`, "/")
	normalized = strings.TrimRight(normalized, "/")
	if normalized == "" {
		return ""
	}

	dir, file := "", normalized
	if idx := strings.LastIndex(normalized, "/"); idx >= 0 {
		dir, file = normalized[:idx], normalized[idx+1:]
	}
	file = stripExeSuffix(file)
	if dir == "" {
		return file
	}
	return dir + "/" + file
}

func stripExeSuffix(name string) string {
	if len(name) >= 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		return name[:len(name)-4]
	}
	return name
}

func executableName(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// isGwtExecutableName reports whether a (already .exe-stripped) final path
// component names the gwt binary or one of its build-artifact variants
// (".../deps/gwt-a1b2c3d4").
func isGwtExecutableName(name string) bool {
	lower := strings.ToLower(stripExeSuffix(name))
	if lower == "gwt" {
		return true
	}
	suffix, ok := strings.CutPrefix(lower, "gwt-")
	return ok && suffix != ""
}

// ParseHookCommand splits a hook command string into its executable
// identity and event, returning ok=false if it isn't shaped like
// "<path> hook <Event>" or its executable doesn't resolve to gwt.
func ParseHookCommand(command string) (ParsedHookCommand, bool) {
	exe, event, found := strings.Cut(strings.TrimSpace(command), hookCommandDelimiter)
	if !found {
		return ParsedHookCommand{}, false
	}
	event = strings.TrimSpace(event)
	if event == "" {
		return ParsedHookCommand{}, false
	}

	identity := NormalizeExecutablePath(exe)
	name := executableName(identity)
	if name == "" || !isGwtExecutableName(name) {
		return ParsedHookCommand{}, false
	}

	return ParsedHookCommand{ExecutableIdentity: identity, Event: event}, true
}

// IsGwtHookCommand reports whether command matches the gwt hook command
// grammar of §4.E, regardless of which event or executable path it names.
func IsGwtHookCommand(command string) bool {
	_, ok := ParseHookCommand(command)
	return ok
}

// IsExpectedGwtHookCommand reports whether command is a gwt hook command
// for the given event whose executable identity matches exePath, used only
// to decide whether re-registration is necessary.
func IsExpectedGwtHookCommand(command, event, exePath string) bool {
	parsed, ok := ParseHookCommand(command)
	if !ok || parsed.Event != event {
		return false
	}
	return parsed.ExecutableIdentity == NormalizeExecutablePath(exePath)
}

// IsTemporaryExecutionPath reports whether exePath looks like it is running
// out of a package-manager cache directory (bunx, npx, node_modules/.cache)
// that will not survive a cache purge. It returns the original path and
// true when so, for use in a user-facing warning.
func IsTemporaryExecutionPath(exePath string) (string, bool) {
	normalized := strings.ReplaceAll(exePath, `\`, "/")
	for _, pattern := range temporaryExecutionPatterns {
		if strings.Contains(normalized, pattern) {
			return exePath, true
		}
	}
	return "", false
}
