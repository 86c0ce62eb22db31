package doctor

import (
	"fmt"

	"github.com/xcawolfe/gwt/internal/mux"
	"github.com/xcawolfe/gwt/internal/util"
)

// OrphanPaneCheck detects multiplexer panes whose process has already
// exited but whose pane was never torn down (e.g. the supervisor crashed
// before DestroyAll ran). Fixable by killing the dead pane.
type OrphanPaneCheck struct {
	session string
	dead    []mux.Pane
}

// NewOrphanPaneCheck builds a check against the given tmux session name.
func NewOrphanPaneCheck(session string) *OrphanPaneCheck {
	return &OrphanPaneCheck{session: session}
}

func (c *OrphanPaneCheck) Name() string { return "orphan-panes" }

func (c *OrphanPaneCheck) Description() string {
	return "Detect multiplexer panes whose process has already exited"
}

func (c *OrphanPaneCheck) Run(ctx *Context) *Result {
	m := mux.New(c.session)
	panes, err := m.ListPanes()
	if err != nil {
		return &Result{Name: c.Name(), Status: StatusError, Message: fmt.Sprintf("listing panes: %v", err)}
	}

	c.dead = nil
	for _, p := range panes {
		if p.PID > 0 && !util.ProcessAlive(p.PID) {
			c.dead = append(c.dead, p)
		}
	}

	if len(c.dead) == 0 {
		return &Result{Name: c.Name(), Status: StatusOK, Message: "no orphaned panes"}
	}

	var ids []string
	for _, p := range c.dead {
		ids = append(ids, fmt.Sprintf("%s (pid %d, %s)", p.ID, p.PID, p.CurrentCommand))
	}
	return &Result{
		Name:    c.Name(),
		Status:  StatusWarning,
		Message: fmt.Sprintf("%d orphaned pane(s) found", len(c.dead)),
		Details: ids,
	}
}

func (c *OrphanPaneCheck) Fix(ctx *Context) error {
	m := mux.New(c.session)
	for _, p := range c.dead {
		if err := m.KillPane(p.ID); err != nil {
			return fmt.Errorf("killing pane %s: %w", p.ID, err)
		}
	}
	return nil
}
