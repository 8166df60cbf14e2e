package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"partworks/meshport/pkg/export"
	"partworks/meshport/pkg/history"
	"partworks/meshport/pkg/plan"
)

// RenderReport writes a human-readable run report.
func RenderReport(w io.Writer, report *export.Report) error {
	for _, r := range report.Committed {
		if _, err := fmt.Fprintf(w, "exported %s (%s, %s)\n", r.Action.Path, r.Action.Reason, r.Duration.Round(time.Millisecond)); err != nil {
			return err
		}
	}
	for _, r := range report.Failed {
		if _, err := fmt.Fprintf(w, "FAILED  %s: %v\n", r.Action.Path, r.Err); err != nil {
			return err
		}
	}
	for _, warning := range report.Warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning.Message); err != nil {
			return err
		}
	}

	elapsed := report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
	_, err := fmt.Fprintf(w, "%d exported, %d failed, %d warnings in %s\n",
		len(report.Committed), len(report.Failed), len(report.Warnings), elapsed)
	return err
}

// jsonReport is the JSON view of a run report. Errors are flattened to
// strings because error values don't marshal.
type jsonReport struct {
	RunID           string           `json:"runId"`
	DocumentVersion string           `json:"documentVersion"`
	StartedAt       time.Time        `json:"startedAt"`
	FinishedAt      time.Time        `json:"finishedAt"`
	Committed       []jsonFileResult `json:"committed"`
	Failed          []jsonFileResult `json:"failed"`
	Warnings        []plan.Warning   `json:"warnings"`
	LedgerSaved     bool             `json:"ledgerSaved"`
}

type jsonFileResult struct {
	Path       string `json:"path"`
	Component  string `json:"component"`
	Reason     string `json:"reason"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// RenderReportJSON writes the run report as indented JSON.
func RenderReportJSON(w io.Writer, report *export.Report) error {
	view := jsonReport{
		RunID:           report.RunID,
		DocumentVersion: report.DocumentVersion,
		StartedAt:       report.StartedAt,
		FinishedAt:      report.FinishedAt,
		Committed:       []jsonFileResult{},
		Failed:          []jsonFileResult{},
		Warnings:        report.Warnings,
		LedgerSaved:     report.LedgerSaved,
	}
	if view.Warnings == nil {
		view.Warnings = []plan.Warning{}
	}

	for _, r := range report.Committed {
		view.Committed = append(view.Committed, jsonFileResult{
			Path:       r.Action.Path,
			Component:  r.Action.Component,
			Reason:     string(r.Action.Reason),
			DurationMS: r.Duration.Milliseconds(),
		})
	}
	for _, r := range report.Failed {
		result := jsonFileResult{
			Path:       r.Action.Path,
			Component:  r.Action.Component,
			Reason:     string(r.Action.Reason),
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			result.Error = r.Err.Error()
		}
		view.Failed = append(view.Failed, result)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}

// RenderPlan writes a dry-run plan: what would be exported and why, plus
// warnings, without touching the host.
func RenderPlan(w io.Writer, actions []plan.Action, warnings []plan.Warning) error {
	for _, a := range actions {
		if _, err := fmt.Fprintf(w, "would export %s (%s, component %q, %d instance(s))\n",
			a.Path, a.Reason, a.Component, a.InstanceCount); err != nil {
			return err
		}
	}
	for _, warning := range warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning.Message); err != nil {
			return err
		}
	}
	if len(actions) == 0 {
		if _, err := fmt.Fprintln(w, "everything up to date"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d to export, %d warnings\n", len(actions), len(warnings))
	return err
}

// jsonPlan is the JSON view of a dry-run plan.
type jsonPlan struct {
	Actions  []jsonPlanAction `json:"actions"`
	Warnings []plan.Warning   `json:"warnings"`
}

type jsonPlanAction struct {
	Path          string `json:"path"`
	Component     string `json:"component"`
	Reason        string `json:"reason"`
	Format        string `json:"format"`
	InstanceCount int    `json:"instanceCount"`
}

// RenderPlanJSON writes the dry-run plan as indented JSON.
func RenderPlanJSON(w io.Writer, actions []plan.Action, warnings []plan.Warning) error {
	view := jsonPlan{Actions: []jsonPlanAction{}, Warnings: warnings}
	if view.Warnings == nil {
		view.Warnings = []plan.Warning{}
	}
	for _, a := range actions {
		view.Actions = append(view.Actions, jsonPlanAction{
			Path:          a.Path,
			Component:     a.Component,
			Reason:        string(a.Reason),
			Format:        a.Format,
			InstanceCount: a.InstanceCount,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(view)
}

// RenderRuns writes a table of recorded runs, newest first.
func RenderRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no recorded runs")
		return err
	}

	for _, r := range runs {
		line := fmt.Sprintf("%s  %s  %d exported, %d failed, %d warnings",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.ID,
			r.Committed, r.Failed, r.Warnings)
		if r.CommitSHA != "" {
			line += "  commit " + shortSHA(r.CommitSHA)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRunFiles writes the per-file records of a run.
func RenderRunFiles(w io.Writer, files []history.FileRecord) error {
	for _, f := range files {
		if f.Result == "failed" {
			if _, err := fmt.Fprintf(w, "  FAILED  %s (%s): %s\n", f.Path, f.Reason, f.Error); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s  %s (%s, %s)\n", f.Result, f.Path, f.Reason, f.Duration.Round(time.Millisecond)); err != nil {
			return err
		}
	}
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
