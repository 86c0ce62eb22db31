package tools

import "encoding/json"

// legacyModeArgs mirrors the legacy JSON's camelCase modeArgs shape.
type legacyModeArgs struct {
	Normal   []string `json:"normal,omitempty"`
	Continue []string `json:"continue,omitempty"`
	Resume   []string `json:"resume,omitempty"`
}

type legacyAgent struct {
	ID                 string            `json:"id"`
	DisplayName        string            `json:"displayName"`
	Type               string            `json:"type"`
	Command            string            `json:"command"`
	DefaultArgs        []string          `json:"defaultArgs,omitempty"`
	ModeArgs           legacyModeArgs    `json:"modeArgs"`
	PermissionSkipArgs []string          `json:"permissionSkipArgs,omitempty"`
	Env                map[string]string `json:"env,omitempty"`
	Models             []Model           `json:"models,omitempty"`
	ReasoningArgs      map[string][]string `json:"reasoningArgs,omitempty"`
	VersionCommand     string            `json:"versionCommand,omitempty"`
	RegistryURL        string            `json:"registryUrl,omitempty"`
}

type legacyConfig struct {
	Version string        `json:"version"`
	Agents  []legacyAgent `json:"customCodingAgents"`
}

// decodeLegacyJSON parses the legacy camelCase tools.json shape and converts
// it into the canonical Config, preserving every field's semantics.
func decodeLegacyJSON(data []byte) (*Config, error) {
	var raw legacyConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	cfg := &Config{Version: raw.Version}
	for _, a := range raw.Agents {
		cfg.Agents = append(cfg.Agents, CustomAgent{
			ID:                 a.ID,
			DisplayName:        a.DisplayName,
			Type:               a.Type,
			Command:            a.Command,
			DefaultArgs:        a.DefaultArgs,
			ModeArgs:           ModeArgs(a.ModeArgs),
			PermissionSkipArgs: a.PermissionSkipArgs,
			Env:                a.Env,
			Models:             a.Models,
			ReasoningArgs:      a.ReasoningArgs,
			VersionCommand:     a.VersionCommand,
			RegistryURL:        a.RegistryURL,
		})
	}
	return cfg, nil
}
