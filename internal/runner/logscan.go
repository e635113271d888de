package runner

import (
	"bufio"
	"os"
	"strings"
)

// maxLogLine bounds a single transport log line.
const maxLogLine = 1 << 20

// LogScan is the result of scraping the transport log.
type LogScan struct {
	Lines []string // first matching lines, up to the limit
	Total int      // every matching line
}

// ScanLog reads path and collects lines containing ERROR or WARN. At most
// limit lines are kept; Total counts all of them.
func ScanLog(path string, limit int) (*LogScan, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scan := &LogScan{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "ERROR") && !strings.Contains(line, "WARN") {
			continue
		}
		scan.Total++
		if len(scan.Lines) < limit {
			scan.Lines = append(scan.Lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return scan, err
	}
	return scan, nil
}
