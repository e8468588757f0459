package hostmon

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// NormalizeReportPath applies the default .csv extension to a destination
// that has none
func NormalizeReportPath(dst string) string {
	dst = strings.TrimSpace(dst)
	if dst == "" {
		return ""
	}
	if filepath.Ext(dst) == "" {
		return dst + ".csv"
	}
	return dst
}

// ExportReport writes the log at logPath to dst. An .html destination gets a
// chart report, anything else a copy of the CSV log. It returns the path
// actually written.
func ExportReport(logPath, dst, sessionID string) (string, error) {
	dst = NormalizeReportPath(dst)
	if dst == "" {
		return "", fmt.Errorf("no export path given")
	}

	if strings.EqualFold(filepath.Ext(dst), ".html") {
		readings, err := ReadLog(logPath)
		if err != nil {
			return "", err
		}
		if err := WriteHTMLReport(dst, readings, sessionID); err != nil {
			return "", err
		}
		return dst, nil
	}

	if err := copyFile(logPath, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	srcAbs, _ := filepath.Abs(src)
	dstAbs, _ := filepath.Abs(dst)
	if srcAbs == dstAbs {
		return fmt.Errorf("export path %s is the log file itself", dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy log to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
