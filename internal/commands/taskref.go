package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"taskstream/internal/service"
)

// idPrefix marks a reference by task ID rather than by position.
const idPrefix = "id:"

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the listing; 0 if ID is set
	ID  string // task ID; empty if Num is set
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from the first arg.
//
// Parsing rules:
// 1. All digits → position in the listing (1-based)
// 2. "id:<id>" → task ID
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	ref := strings.TrimSpace(args[0])

	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		return TaskRef{Num: num}, nil
	}

	if id, ok := strings.CutPrefix(ref, idPrefix); ok && id != "" {
		return TaskRef{ID: id}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// errOutOfRange and errUnknownID are user errors from ResolveTaskRef.
var (
	errOutOfRange = errors.New("task number out of range")
	errUnknownID  = errors.New("task not found")
)

// ResolveTaskRef finds the referenced task in a listing.
func ResolveTaskRef(tasks []service.Task, ref TaskRef) (service.Task, error) {
	if ref.ID != "" {
		for _, t := range tasks {
			if t.ID == ref.ID {
				return t, nil
			}
		}
		return service.Task{}, fmt.Errorf("%w: %s", errUnknownID, ref.ID)
	}

	if ref.Num < 1 || ref.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", errOutOfRange, ref.Num)
	}
	return tasks[ref.Num-1], nil
}
