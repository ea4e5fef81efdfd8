// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/mediapick/internal/library"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryLoad  Op = "load library"
	OpLibrarySave  Op = "save library"
	OpLibraryScan  Op = "scan library"
	OpItemUpdate   Op = "update item"
	OpItemFavorite Op = "update favorites"

	// Source operations
	OpSourceImport  Op = "import folder"
	OpSourceRefresh Op = "refresh library source"
	OpSourceRemove  Op = "remove library source"
	OpSourceToggle  Op = "enable or disable library source"

	// Tag catalog
	OpTagList Op = "list tags"

	// Filter operations
	OpFilterCount Op = "count eligible items"
	OpFilterPick  Op = "pick a random item"

	// Presets
	OpPresetLoad   Op = "load filter presets"
	OpPresetSave   Op = "save filter preset"
	OpPresetDelete Op = "delete filter preset"

	// Backups
	OpBackupList Op = "list library backups"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Error is a failed operation. Its message is the FormatWith rendering
// and it unwraps to the cause.
type Error struct {
	Op      Op
	Context string
	Err     error
}

func (e *Error) Error() string { return FormatWith(e.Op, e.Context, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as an *Error for op, or nil when err is nil.
func Wrap(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Context: context, Err: err}
}

// Hint suggests what the user can do about a library error.
// It returns an empty string when there is nothing useful to add.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, library.ErrNotFound):
		return "check the path or id; run \"sources\" to list imported folders"
	case errors.Is(err, library.ErrInvalidArgument):
		return "a required argument is missing or malformed"
	case errors.Is(err, library.ErrCorruptData):
		return "the file could not be parsed; restore one of the backups"
	case errors.Is(err, library.ErrIO):
		return "check disk space and permissions"
	}
	return ""
}
