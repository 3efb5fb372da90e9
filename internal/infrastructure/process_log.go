package infrastructure

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ProcessLogPath returns the daily log file that receives raw subprocess output
func ProcessLogPath(logsDir string, day time.Time) string {
	return filepath.Join(logsDir, "process-"+day.Format("20060102")+".log")
}

// processLog wraps one run's section of the daily process log
type processLog struct {
	file *os.File
}

// openProcessLog opens today's process log in append mode. An empty
// logsDir discards the output.
func openProcessLog(logsDir string) (*processLog, error) {
	if logsDir == "" {
		return &processLog{}, nil
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	file, err := os.OpenFile(ProcessLogPath(logsDir, time.Now()), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open process log: %w", err)
	}
	return &processLog{file: file}, nil
}

// Writer returns the destination for subprocess stdout/stderr
func (l *processLog) Writer() io.Writer {
	if l.file == nil {
		return io.Discard
	}
	return l.file
}

// Header writes the start marker and the shell-escaped command line
func (l *processLog) Header(title, cmdLine string) {
	if l.file == nil {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.file, "\n=== [%s] %s ===\n", timestamp, title)
	fmt.Fprintf(l.file, "$ %s\n", cmdLine)
}

// Footer writes the end marker with the run's outcome
func (l *processLog) Footer(success bool, message string) {
	if l.file == nil {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(l.file, "[%s] %s: %s\n", timestamp, status, message)
	fmt.Fprint(l.file, "=== END ===\n\n")
}

func (l *processLog) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
