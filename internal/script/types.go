package script

import "time"

// Config defines engine limits
type Config struct {
	Timeout       time.Duration // Execution timeout
	MaxCallStack  int           // Maximum call stack depth
	EnableConsole bool          // Expose console.log/warn/error/info
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		MaxCallStack:  1024,
		EnableConsole: true,
	}
}

// Result holds the outcome of one evaluation
type Result struct {
	Value     any           // Exported value, nil for undefined and null
	Text      string        // String conversion of the value
	Undefined bool          // The script produced undefined
	Console   []LogEntry    // Console output
	Duration  time.Duration // Execution time
}

// LogEntry is one console call
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}
