package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pmezard/go-difflib/difflib"

	"dirdoc/internal/compare"
	"dirdoc/internal/docsync"
	"dirdoc/internal/tree"
	"dirdoc/internal/validate"
)

type row struct {
	kind tree.Kind
	path string
	rest []string
}

// sortRows puts directories before files, each by case-insensitive path.
func sortRows(rows []row) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].kind == tree.Directory, rows[j].kind == tree.Directory
		if di != dj {
			return di
		}
		return strings.ToLower(rows[i].path) < strings.ToLower(rows[j].path)
	})
}

func renderTable(headers []string, rows []row) string {
	sortRows(rows)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(r, _ int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(append([]string{string(r.kind), r.path}, r.rest...)...)
	}
	return t.String()
}

func itemRows(items []compare.Item) []row {
	rows := make([]row, 0, len(items))
	for _, item := range items {
		rows = append(rows, row{kind: item.Kind, path: item.Path})
	}
	return rows
}

func issueRows(issues []validate.Issue, withDetail bool) []row {
	rows := make([]row, 0, len(issues))
	for _, issue := range issues {
		r := row{kind: issue.Kind, path: issue.Path}
		if withDetail {
			r.rest = []string{issue.Description, fmt.Sprintf("at least %d characters", issue.MinLength)}
		}
		rows = append(rows, r)
	}
	return rows
}

func printSyncReport(w io.Writer, result *docsync.Result) {
	if result.PriorInvalid {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("[WARNING] %s could not be parsed, creating a new document.", result.Output)))
	}

	if diff := result.Diff; diff != nil {
		if n := len(diff.MissingInActual); n > 0 {
			fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("[NOTE] %d items removed from %s", n, result.Output)))
			fmt.Fprintln(w, renderTable([]string{"Type", "Path"}, itemRows(diff.MissingInActual)))
		}
		if n := len(diff.MissingInRecorded); n > 0 {
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("[WARNING] %d items exist on disk but not in %s", n, result.Output)))
			fmt.Fprintln(w, renderTable([]string{"Type", "Path"}, itemRows(diff.MissingInRecorded)))
		}
	}

	if result.Validation != nil && !result.Validation.Pass {
		printDescriptionIssues(w, result.Validation)
	}

	switch result.Status {
	case docsync.Created:
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("[OK] Created %s", result.Output)))
	case docsync.Updated:
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("[OK] Updated %s", result.Output)))
	default:
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("[OK] No changes in %s", result.Output)))
	}
}

func printDescriptionIssues(w io.Writer, result *validate.Result) {
	if n := len(result.WithoutDescription); n > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("[WARNING] %d items have no description", n)))
		fmt.Fprintln(w, renderTable([]string{"Type", "Path"}, issueRows(result.WithoutDescription, false)))
	}
	if n := len(result.WithShortDescription); n > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("[WARNING] %d items have a description that is too short", n)))
		fmt.Fprintln(w, renderTable([]string{"Type", "Path", "Description", "Requirement"}, issueRows(result.WithShortDescription, true)))
	}
}

// unifiedDiff renders the change between two document versions.
func unifiedDiff(name string, before, after []byte) (string, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: name + " (current)",
		ToFile:   name + " (new)",
		Context:  3,
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func printDiff(w io.Writer, text string) {
	for _, line := range difflib.SplitLines(text) {
		line = strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
			fmt.Fprintln(w, diffHunkStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(w, diffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(w, diffDelStyle.Render(line))
		default:
			fmt.Fprintln(w, line)
		}
	}
}
