// Package doctor implements a pluggable health-check registry: each Check
// inspects one facet of the workspace (orphaned worktrees, orphaned
// multiplexer panes, drifted hook registrations, stale tools schema
// versions) and reports a Status, optionally fixable with --fix.
package doctor

import (
	"fmt"
	"io"

	"github.com/xcawolfe/gwt/internal/style"
)

// Status is a check's outcome.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
	StatusFixed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Context carries the environment a Check runs against: the repository
// root and the directories a Check should consult.
type Context struct {
	RepoRoot string
	Verbose  bool
}

// Result is one check's outcome.
type Result struct {
	Name    string
	Status  Status
	Message string
	Details []string
}

// Check is one health check. Checks that can self-repair also implement
// Fixer; Checks that cannot leave users to act on the reported Message.
type Check interface {
	Name() string
	Description() string
	Run(ctx *Context) *Result
}

// Fixer is implemented by checks that support --fix.
type Fixer interface {
	Fix(ctx *Context) error
}

// Doctor holds a registered set of checks and runs them in registration
// order.
type Doctor struct {
	checks []Check
}

// NewDoctor returns an empty registry.
func NewDoctor() *Doctor {
	return &Doctor{}
}

// Register adds one check.
func (d *Doctor) Register(c Check) {
	d.checks = append(d.checks, c)
}

// RegisterAll adds every check in cs.
func (d *Doctor) RegisterAll(cs ...Check) {
	d.checks = append(d.checks, cs...)
}

// Summary tallies a Report's results by status.
type Summary struct {
	OK       int
	Warnings int
	Errors   int
	Fixed    int
}

// Report is the outcome of running every registered check once.
type Report struct {
	Results []*Result
	Summary Summary
}

// HasErrors reports whether any check reported StatusError.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

func tally(s *Summary, status Status) {
	switch status {
	case StatusOK:
		s.OK++
	case StatusWarning:
		s.Warnings++
	case StatusError:
		s.Errors++
	case StatusFixed:
		s.Fixed++
	}
}

// Run executes every registered check and returns the aggregate report.
func (d *Doctor) Run(ctx *Context) *Report {
	report := &Report{}
	for _, c := range d.checks {
		result := c.Run(ctx)
		report.Results = append(report.Results, result)
		tally(&report.Summary, result.Status)
	}
	return report
}

// Fix runs every check; for any check reporting Warning or Error that also
// implements Fixer, it calls Fix and re-runs the check, recording
// StatusFixed if the re-run now reports StatusOK.
func (d *Doctor) Fix(ctx *Context) *Report {
	report := &Report{}
	for _, c := range d.checks {
		result := c.Run(ctx)
		if result.Status == StatusWarning || result.Status == StatusError {
			if fixer, ok := c.(Fixer); ok {
				if err := fixer.Fix(ctx); err != nil {
					result.Details = append(result.Details, fmt.Sprintf("fix failed: %v", err))
				} else {
					rerun := c.Run(ctx)
					if rerun.Status == StatusOK {
						rerun.Status = StatusFixed
					}
					result = rerun
				}
			}
		}
		report.Results = append(report.Results, result)
		tally(&report.Summary, result.Status)
	}
	return report
}

// PrintSummary writes one line per result followed by a tally line.
func (r *Report) PrintSummary(w io.Writer, verbose bool) {
	for _, res := range r.Results {
		icon := statusIcon(res.Status)
		fmt.Fprintf(w, "%s %s: %s\n", icon, res.Name, res.Message)
		if verbose {
			for _, d := range res.Details {
				fmt.Fprintf(w, "    %s\n", d)
			}
		}
	}
	fmt.Fprintf(w, "\n%d ok, %d warning(s), %d error(s), %d fixed\n",
		r.Summary.OK, r.Summary.Warnings, r.Summary.Errors, r.Summary.Fixed)
}

func statusIcon(s Status) string {
	switch s {
	case StatusOK:
		return style.Success.Render("✓")
	case StatusFixed:
		return style.Success.Render("✓")
	case StatusWarning:
		return style.Warning.Render("!")
	case StatusError:
		return style.Red.Render("✗")
	default:
		return "?"
	}
}
