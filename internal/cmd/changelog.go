package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcawolfe/gwt/internal/gitx"
	"github.com/xcawolfe/gwt/internal/history"
)

var changelogCache = history.NewChangelogCache()

var changelogCmd = &cobra.Command{
	Use:     "changelog [version]",
	GroupID: GroupWorkspace,
	Short:   "Print the grouped conventional-commit changelog for a tagged version or \"unreleased\"",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runChangelog,
}

func init() {
	rootCmd.AddCommand(changelogCmd)
}

func runChangelog(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	git := gitx.NewGit(root)
	branch, _ := git.CurrentBranch()

	versionID := history.UnreleasedID
	if len(args) == 1 {
		versionID = args[0]
	}

	versions, err := history.ListProjectVersions(git, 100)
	if err != nil {
		return fmt.Errorf("listing versions: %w", err)
	}

	for _, v := range versions {
		if v.ID != versionID {
			continue
		}
		out, err := history.Changelog(git, changelogCache, branch, v.ID, v.RangeFrom, v.RangeTo)
		if err != nil {
			return fmt.Errorf("building changelog: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	return fmt.Errorf("no such version %q", versionID)
}
