// gwt runs one coding agent per git branch, side by side in tmux panes.
package main

import (
	"os"

	"github.com/xcawolfe/gwt/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
