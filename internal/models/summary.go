package models

import "time"

// RunSummary is the outcome of one CLI command, used for the closing log lines
type RunSummary struct {
	Command        string        // create, validate, add, ...
	Project        string        // project name, empty when not applicable
	Changes        int           // rewrites applied by adjustment
	HardViolations int           // violations that rejected the configuration
	SoftViolations int           // warnings
	Output         string        // file written, empty on dry runs or failures
	Duration       time.Duration // wall time of the command
}

// OK reports whether the run ended without hard violations
func (s RunSummary) OK() bool {
	return s.HardViolations == 0
}
