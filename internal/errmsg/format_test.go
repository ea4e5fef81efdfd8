//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/llehouerou/mediapick/internal/library"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLibrarySave,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpLibrarySave,
			err:      errors.New("disk full"),
			expected: "Failed to save library: disk full",
		},
		{
			name:     "source operation",
			op:       OpSourceImport,
			err:      errors.New("permission denied"),
			expected: "Failed to import folder: permission denied",
		},
		{
			name:     "preset operation",
			op:       OpPresetSave,
			err:      errors.New("already exists"),
			expected: "Failed to save filter preset: already exists",
		},
		{
			name:     "filter operation",
			op:       OpFilterPick,
			err:      errors.New("no eligible items"),
			expected: "Failed to pick a random item: no eligible items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSourceRefresh,
			context:  "Trips",
			err:      nil,
			expected: "",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpSourceRefresh,
			context:  "",
			err:      errors.New("not found"),
			expected: "Failed to refresh library source: not found",
		},
		{
			name:     "formats with context",
			op:       OpSourceRemove,
			context:  "Trips",
			err:      errors.New("in use"),
			expected: "Failed to remove library source 'Trips': in use",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		empty bool
	}{
		{name: "nil", err: nil, empty: true},
		{name: "plain error", err: errors.New("boom"), empty: true},
		{name: "not found", err: fmt.Errorf("source %q: %w", "x", library.ErrNotFound)},
		{name: "invalid argument", err: library.ErrInvalidArgument},
		{name: "corrupt", err: fmt.Errorf("%w: bad", library.ErrCorruptData)},
		{name: "io", err: fmt.Errorf("%w: write", library.ErrIO)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hint(tt.err); (got == "") != tt.empty {
				t.Errorf("Hint(%v) = %q, want empty=%v", tt.err, got, tt.empty)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(OpLibrarySave, "", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}

	cause := fmt.Errorf("source %q: %w", "abc", library.ErrNotFound)
	err := Wrap(OpSourceRefresh, "abc", cause)
	if want := `Failed to refresh library source 'abc': source "abc": not found`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, library.ErrNotFound) {
		t.Error("wrapped error should match ErrNotFound")
	}
	var e *Error
	if !errors.As(err, &e) || e.Op != OpSourceRefresh {
		t.Errorf("errors.As failed: %v", err)
	}
}
