// Package deps reports whether the external archive tools altnames shells
// out to are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names one external binary. Command may be a bare name looked
// up on PATH or a path to the executable.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement after the PATH lookup. Path is set when the
// binary was found; Detail explains why it was not.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// CheckBinaries looks up every requirement, in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

func check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = resolved
	return status
}

// MissingRequired filters statuses down to unavailable, non-optional tools.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

// DescribeMissing renders missing tools for one error line, adding the
// command when it differs from the display name.
func DescribeMissing(missing []Status) string {
	names := make([]string, 0, len(missing))
	for _, status := range missing {
		if status.Command == "" || status.Command == status.Name {
			names = append(names, status.Name)
			continue
		}
		names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Command))
	}
	return strings.Join(names, ", ")
}
