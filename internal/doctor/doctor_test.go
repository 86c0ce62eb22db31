package doctor

import (
	"bytes"
	"strings"
	"testing"
)

type fakeCheck struct {
	name    string
	result  *Result
	fixErr  error
	fixed   bool
	nextRun *Result
}

func (f *fakeCheck) Name() string        { return f.name }
func (f *fakeCheck) Description() string { return f.name + " description" }
func (f *fakeCheck) Run(ctx *Context) *Result {
	if f.fixed && f.nextRun != nil {
		return f.nextRun
	}
	return f.result
}
func (f *fakeCheck) Fix(ctx *Context) error {
	f.fixed = true
	return f.fixErr
}

func TestDoctorRunTallies(t *testing.T) {
	d := NewDoctor()
	d.RegisterAll(
		&fakeCheck{name: "a", result: &Result{Name: "a", Status: StatusOK}},
		&fakeCheck{name: "b", result: &Result{Name: "b", Status: StatusWarning}},
		&fakeCheck{name: "c", result: &Result{Name: "c", Status: StatusError}},
	)

	report := d.Run(&Context{})
	if report.Summary.OK != 1 || report.Summary.Warnings != 1 || report.Summary.Errors != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if !report.HasErrors() {
		t.Fatal("expected HasErrors true")
	}
}

func TestDoctorFixPromotesToFixed(t *testing.T) {
	d := NewDoctor()
	check := &fakeCheck{
		name:    "orphan",
		result:  &Result{Name: "orphan", Status: StatusWarning},
		nextRun: &Result{Name: "orphan", Status: StatusOK},
	}
	d.Register(check)

	report := d.Fix(&Context{})
	if report.Summary.Fixed != 1 {
		t.Fatalf("expected fixed count 1, got %+v", report.Summary)
	}
	if report.Results[0].Status != StatusFixed {
		t.Fatalf("expected StatusFixed, got %v", report.Results[0].Status)
	}
}

func TestDoctorFixLeavesFailedFixAsIs(t *testing.T) {
	d := NewDoctor()
	check := &fakeCheck{
		name:   "stubborn",
		result: &Result{Name: "stubborn", Status: StatusError},
		fixErr: errBoom,
	}
	d.Register(check)

	report := d.Fix(&Context{})
	if report.Results[0].Status != StatusError {
		t.Fatalf("expected status to remain error, got %v", report.Results[0].Status)
	}
	if len(report.Results[0].Details) == 0 {
		t.Fatal("expected fix failure detail to be recorded")
	}
}

func TestPrintSummaryIncludesTally(t *testing.T) {
	report := &Report{
		Results: []*Result{
			{Name: "a", Status: StatusOK, Message: "fine"},
			{Name: "b", Status: StatusWarning, Message: "meh", Details: []string{"detail"}},
		},
		Summary: Summary{OK: 1, Warnings: 1},
	}

	var buf bytes.Buffer
	report.PrintSummary(&buf, true)
	out := buf.String()
	if !strings.Contains(out, "a: fine") || !strings.Contains(out, "b: meh") {
		t.Fatalf("missing result lines: %s", out)
	}
	if !strings.Contains(out, "detail") {
		t.Fatalf("expected verbose detail line: %s", out)
	}
	if !strings.Contains(out, "1 ok, 1 warning(s), 0 error(s), 0 fixed") {
		t.Fatalf("missing tally line: %s", out)
	}
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
