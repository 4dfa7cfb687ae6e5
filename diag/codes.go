package diag

// Severity classifies diagnostics by how a monitoring host should treat them.
type Severity string

// Severities define how diagnostics map onto log levels.
const (
	// SeverityWarn indicates a rejected operation. The registry is intact;
	// the caller's request was refused by a guard.
	SeverityWarn Severity = "warn"

	// SeverityError indicates a fault inside user-supplied code, such as a
	// panicking change callback. The registry recovered and continued.
	SeverityError Severity = "error"
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Code identifies the specific condition a diagnostic reports.
type Code string

// Codes for conditions the registry reports through its diagnostic sink.
const (
	CodeDuplicateCreate Code = "DUPLICATE_CREATE" // Create on a name that already exists
	CodeNotFound        Code = "NOT_FOUND"        // Operation on a name that does not exist
	CodeLockedWrite     Code = "LOCKED_WRITE"     // Change on a locked state
	CodeLockedDelete    Code = "LOCKED_DELETE"    // Delete on a locked state
	CodeWatcherPanic    Code = "WATCHER_PANIC"    // Recovered panic inside a change callback
)

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// DefaultSeverity returns the severity a code carries unless overridden.
func (c Code) DefaultSeverity() Severity {
	switch c {
	case CodeWatcherPanic:
		return SeverityError
	default:
		return SeverityWarn
	}
}

// codeDescriptions provides human-readable descriptions for codes.
var codeDescriptions = map[Code]string{
	CodeDuplicateCreate: "state already exists",
	CodeNotFound:        "state not found",
	CodeLockedWrite:     "state is locked against writes",
	CodeLockedDelete:    "state is locked against deletion",
	CodeWatcherPanic:    "change callback panicked",
}

// Description returns a human-readable description for the code.
func (c Code) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown condition"
}
