package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	createdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	updatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

func styleFor(outcome string) lipgloss.Style {
	switch outcome {
	case "created", "wrote", "ok":
		return createdStyle
	case "updated":
		return updatedStyle
	case "failed", "invalid":
		return failedStyle
	case "warn":
		return warnStyle
	}
	return faintStyle
}

// ResultLine prints one upload outcome. key may be empty.
func ResultLine(w io.Writer, outcome, name, key string) {
	line := styleFor(outcome).Render(fmt.Sprintf("%-7s", outcome)) + "  " + name
	if key != "" {
		line += "  " + faintStyle.Render(key)
	}
	fmt.Fprintln(w, line)
}

func WarnLine(w io.Writer, msg string) {
	fmt.Fprintln(w, warnStyle.Render("warn")+"     "+msg)
}

func UploadSummary(w io.Writer, created, updated, failed int) {
	fmt.Fprintf(w, "%s created, %s updated, %s failed\n",
		createdStyle.Render(fmt.Sprint(created)),
		updatedStyle.Render(fmt.Sprint(updated)),
		failedStyle.Render(fmt.Sprint(failed)))
}

// PlanLine prints a dry-run entry.
func PlanLine(w io.Writer, name, priority, status string, labels []string) {
	line := faintStyle.Render("plan") + "     " + name + "  " + faintStyle.Render(priority+" / "+status)
	if len(labels) > 0 {
		line += "  " + faintStyle.Render("@"+strings.Join(labels, " @"))
	}
	fmt.Fprintln(w, line)
}

func Header(w io.Writer, text string) {
	fmt.Fprintln(w, boldStyle.Render(text))
}

// FolderLine prints one node of the folder tree indented by depth.
func FolderLine(w io.Writer, depth int, name string, id int64) {
	fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", depth), name, faintStyle.Render(fmt.Sprintf("(%d)", id)))
}

func WroteLine(w io.Writer, path string, count int) {
	fmt.Fprintf(w, "%s    %s (%d test cases)\n", createdStyle.Render("wrote"), path, count)
}

func IssueLine(w io.Writer, field, description string) {
	fmt.Fprintln(w, "  "+failedStyle.Render(field)+"  "+description)
}

// ValidLine prints the verdict for one file.
func ValidLine(w io.Writer, path string, ok bool) {
	if ok {
		fmt.Fprintln(w, createdStyle.Render("ok")+"       "+path)
		return
	}
	fmt.Fprintln(w, failedStyle.Render("invalid")+"  "+path)
}

// ListRow prints an aligned row of the list command.
func ListRow(w io.Writer, file, name, priority, status string, fileWidth, nameWidth, priorityWidth int) {
	fmt.Fprintf(w, "%s  %-*s  %-*s  %s\n",
		faintStyle.Render(fmt.Sprintf("%-*s", fileWidth, file)),
		nameWidth, name,
		priorityWidth, priority,
		styleFor(strings.ToLower(status)).Render(status))
}

func KeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", boldStyle.Render(key+":"), value)
}
