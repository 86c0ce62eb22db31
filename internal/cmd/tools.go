package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/tools"
)

var (
	toolsAddDisplayName string
	toolsAddCommand     string
	toolsAddType        string
	toolsLocal          bool
)

var toolsCmd = &cobra.Command{
	Use:     "tools",
	GroupID: GroupWorkspace,
	Short:   "Manage custom agent definitions (~/.gwt/tools.toml and <repo>/.gwt/tools.toml)",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the merged set of custom agent definitions",
	RunE:  runToolsList,
}

var toolsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a custom agent definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsAdd,
}

var toolsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a custom agent definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runToolsRemove,
}

func init() {
	toolsAddCmd.Flags().StringVar(&toolsAddDisplayName, "display-name", "", "Human-readable agent name (defaults to the id, title-cased with dashes as spaces)")
	toolsAddCmd.Flags().StringVar(&toolsAddCommand, "command", "", "Executable or argv[0] to launch (required)")
	toolsAddCmd.Flags().StringVar(&toolsAddType, "type", "command", "Execution kind: command|path|bunx")
	toolsAddCmd.MarkFlagRequired("command")

	for _, c := range []*cobra.Command{toolsAddCmd, toolsRemoveCmd} {
		c.Flags().BoolVar(&toolsLocal, "local", false, "Operate on the repo-local store instead of the global store")
	}

	toolsCmd.AddCommand(toolsListCmd, toolsAddCmd, toolsRemoveCmd)
	rootCmd.AddCommand(toolsCmd)
}

// toolsStoreDir resolves which of the two §4.F locations a mutating
// subcommand targets: the repo-local `.gwt` directory with --local, the
// user's global `~/.gwt` directory otherwise.
func toolsStoreDir(local bool) (string, error) {
	if local {
		root, err := repoRoot()
		if err != nil {
			return "", err
		}
		return tools.LocalDir(root), nil
	}
	return tools.GlobalDir()
}

func runToolsList(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	cfg := &tools.Config{}
	if err == nil {
		cfg, err = tools.LoadMerged(root)
	} else {
		dir, gerr := tools.GlobalDir()
		if gerr != nil {
			return gerr
		}
		cfg, err = tools.Load(dir)
	}
	if err != nil {
		return fmt.Errorf("loading tools config: %w", err)
	}

	if len(cfg.Agents) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no custom agents defined)")
		return nil
	}
	for _, a := range cfg.Agents {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", a.ID, a.DisplayName, a.Command)
	}
	return nil
}

func runToolsAdd(cmd *cobra.Command, args []string) error {
	id := args[0]
	dir, err := toolsStoreDir(toolsLocal)
	if err != nil {
		return err
	}

	cfg, err := tools.Load(dir)
	if err != nil {
		return fmt.Errorf("loading tools config: %w", err)
	}

	displayName := toolsAddDisplayName
	if displayName == "" {
		displayName = strings.Title(strings.ReplaceAll(id, "-", " "))
	}

	a := tools.CustomAgent{
		ID:          id,
		DisplayName: displayName,
		Type:        toolsAddType,
		Command:     toolsAddCommand,
	}
	if err := cfg.Add(a); err != nil {
		return err
	}
	if err := tools.Save(dir, cfg); err != nil {
		return fmt.Errorf("saving tools config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", id)
	return nil
}

func runToolsRemove(cmd *cobra.Command, args []string) error {
	id := args[0]
	dir, err := toolsStoreDir(toolsLocal)
	if err != nil {
		return err
	}

	cfg, err := tools.Load(dir)
	if err != nil {
		return fmt.Errorf("loading tools config: %w", err)
	}
	cfg.Remove(id)
	if err := tools.Save(dir, cfg); err != nil {
		return fmt.Errorf("saving tools config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
	return nil
}
