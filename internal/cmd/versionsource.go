package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/xcawolfe/gwt/internal/tools"
	"github.com/xcawolfe/gwt/internal/wizard"
)

// cliVersionSource implements wizard.VersionSource against the real world:
// it shells out to the agent's own --version flag and, best-effort, queries
// the npm registry for recent published versions. Network failures leave
// the wizard with only "installed"+"latest", per §4.G.
type cliVersionSource struct {
	httpClient *http.Client
}

func newCLIVersionSource() *cliVersionSource {
	return &cliVersionSource{httpClient: &http.Client{Timeout: 3 * time.Second}}
}

var semverToken = regexp.MustCompile(`\d+\.\d+\.\d+[-\w.]*`)

func (s *cliVersionSource) DetectInstalled(a tools.CustomAgent) (*wizard.InstalledVersion, error) {
	path, err := exec.LookPath(a.Command)
	if err != nil {
		return nil, err
	}

	versionCmd := a.VersionCommand
	args := []string{"--version"}
	if versionCmd != "" {
		parts := strings.Fields(versionCmd)
		if len(parts) > 0 {
			args = parts[1:]
		}
	}

	out, err := exec.Command(a.Command, args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("running %s --version: %w", a.Command, err)
	}
	match := semverToken.FindString(string(out))
	if match == "" {
		return nil, fmt.Errorf("no semver token in %s --version output", a.Command)
	}
	return &wizard.InstalledVersion{Version: match, Path: path}, nil
}

// registryResponse is the subset of an npm-style registry payload this
// reads: `versions` keys and their publish timestamps in `time`.
type registryResponse struct {
	Versions map[string]json.RawMessage `json:"versions"`
	Time     map[string]string          `json:"time"`
}

var prereleaseMarkers = []string{"-alpha", "-beta", "-rc", "-canary", "-next", "-dev", "-pre"}

func (s *cliVersionSource) FetchRegistryVersions(a tools.CustomAgent) ([]wizard.RegistryVersion, error) {
	if a.RegistryURL == "" {
		return nil, nil
	}

	resp, err := s.httpClient.Get(a.RegistryURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed registryResponse
	if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(&parsed); err != nil {
		return nil, err
	}

	versions := make([]wizard.RegistryVersion, 0, len(parsed.Versions))
	for v := range parsed.Versions {
		versions = append(versions, wizard.RegistryVersion{
			Version:      v,
			IsPrerelease: isPrerelease(v),
			PublishedAt:  parsed.Time[v],
		})
	}
	return versions, nil
}

func isPrerelease(version string) bool {
	lower := strings.ToLower(version)
	for _, marker := range prereleaseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
