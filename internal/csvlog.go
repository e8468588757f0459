package hostmon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

// csvHeader is the first row of every log file
var csvHeader = []string{"Timestamp", "CPU (%)", "Memory (%)", "Disk (%)"}

// CSVLog appends readings to a CSV file, flushing after every row
type CSVLog struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// OpenCSVLog opens the log at path. The file is truncated and a header is
// written unless appendMode is set and the file already has content.
func OpenCSVLog(path string, appendMode bool) (*CSVLog, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file %s: %w", path, err)
	}

	l := &CSVLog{
		path:   path,
		file:   f,
		writer: csv.NewWriter(f),
	}

	if info.Size() == 0 {
		if err := l.writeRow(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

// Path returns the file the log writes to
func (l *CSVLog) Path() string {
	return l.path
}

// Append writes one reading and flushes it to disk
func (l *CSVLog) Append(r Reading) error {
	return l.writeRow([]string{
		r.Clock(),
		formatValue(r.CPU),
		formatValue(r.Memory),
		formatValue(r.Disk),
	})
}

func (l *CSVLog) writeRow(row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("log file %s is closed", l.path)
	}
	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush log: %w", err)
	}
	return nil
}

func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	l.writer.Flush()
	err := errors.Join(l.writer.Error(), l.file.Close())
	l.file = nil
	return err
}

// ReadLog parses a log written by CSVLog back into readings. Timestamps only
// carry the time of day.
func ReadLog(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer f.Close()

	return parseLog(f)
}

func parseLog(src io.Reader) ([]Reading, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = len(csvHeader)

	var readings []Reading
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read log line %d: %w", line, err)
		}
		// header rows can repeat when several sessions appended to one file
		if record[0] == csvHeader[0] {
			continue
		}

		t, err := time.Parse(CLOCK_FORMAT, record[0])
		if err != nil {
			return nil, fmt.Errorf("bad timestamp on line %d: %w", line, err)
		}
		r := Reading{Time: t}
		values := []*float64{&r.CPU, &r.Memory, &r.Disk}
		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("bad %s value on line %d: %w", csvHeader[i+1], line, err)
			}
			*values[i] = v
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
