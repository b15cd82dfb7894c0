// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskstream/internal/service"
)

// Status marks shown in front of each task.
var statusMarks = map[service.Status]string{
	service.StatusTodo:       "[ ]",
	service.StatusInProgress: "[~]",
	service.StatusDone:       "[x]",
}

// FormatTask formats a task line.
// Format: "{N:>4}  {MARK} {TEXT}\n" (4-wide right-aligned number, two spaces, status mark, text)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, StatusMark(task.Status), taskText(task))
}

// FormatTaskWithID is FormatTask followed by the task ID.
// Format: "{N:>4}  {MARK} {TEXT}  (id:{ID})\n"
func FormatTaskWithID(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s  (id:%s)\n", num, StatusMark(task.Status), taskText(task), task.ID)
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalize(task.Title))
	fmt.Fprintf(w, "description: %s\n", normalize(task.Description))
	fmt.Fprintf(w, "status:      %s\n", task.Status)
}

// StatusMark returns the mark for a status; unknown statuses get "[?]".
func StatusMark(s service.Status) string {
	if m, ok := statusMarks[s]; ok {
		return m
	}
	return "[?]"
}

// taskText is "title: description", or whichever of the two is set.
// Empty or whitespace-only text becomes "(untitled)".
func taskText(task service.Task) string {
	title := strings.TrimSpace(normalize(task.Title))
	desc := strings.TrimSpace(normalize(task.Description))

	switch {
	case title != "" && desc != "" && title != desc:
		return title + ": " + desc
	case title != "":
		return title
	case desc != "":
		return desc
	}
	return "(untitled)"
}

// normalize replaces newlines with spaces.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
