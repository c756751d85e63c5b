package processcmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/survey-automation/routebatch/internal/report"
)

func executeReport(w io.Writer, path, format string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to open run record: %w", err)
	}
	if info.IsDir() {
		if path, err = latestRun(path); err != nil {
			return err
		}
	}

	run, err := report.LoadYAML(path)
	if err != nil {
		return err
	}
	return report.Print(w, run, format)
}

// latestRun returns the newest run record in dir. Record names start with
// the run timestamp, so the last name in order is the newest.
func latestRun(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "run-*.yaml"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no run records in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
