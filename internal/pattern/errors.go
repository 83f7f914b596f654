package pattern

import "fmt"

// ConfigError reports a missing or malformed pattern configuration file.
// It is always fatal for the load that raised it.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pattern configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ShapeError reports a pattern file that does not contain exactly one
// new-side and one old-side function.
type ShapeError struct {
	Path   string
	Prefix string
	Count  int // number of candidate functions found for Prefix
}

func (e *ShapeError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("pattern %s: no function with prefix %q", e.Path, e.Prefix)
	}
	return fmt.Sprintf("pattern %s: %d functions with prefix %q, want exactly one", e.Path, e.Count, e.Prefix)
}

// InitError reports a pattern that could not be initialized: an unreadable
// or unparsable module, or a side with no instructions.
type InitError struct {
	Pattern string // pattern name if known, else the file path
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("pattern %s: %v", e.Pattern, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }
