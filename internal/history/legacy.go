package history

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/devops-autopost/internal/models"
)

const legacyTimeLayout = "2006-01-02 15:04:05"

var (
	legacyHeader    = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}): (.*?)(?: \(Score: (-?\d+)\))?$`)
	legacyDelimiter = strings.Repeat("-", 40)
)

// ParseLegacyLog reads the plain-text log format
//
//	2025-01-02 09:00:00: Title (Score: 85)
//	----------------------------------------
//	body...
//
// An entry starts only where a header line is directly followed by the
// dash delimiter, so bodies containing dash lines stay intact. Timestamps
// are interpreted in loc.
func ParseLegacyLog(r io.Reader, loc *time.Location) ([]models.HistoryEntry, error) {
	if loc == nil {
		loc = time.Local
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read legacy log: %w", err)
	}

	isStart := func(i int) bool {
		return i+1 < len(lines) && lines[i+1] == legacyDelimiter && legacyHeader.MatchString(lines[i])
	}

	var entries []models.HistoryEntry
	for i := 0; i < len(lines); {
		if !isStart(i) {
			i++
			continue
		}

		m := legacyHeader.FindStringSubmatch(lines[i])
		ts, err := time.ParseInLocation(legacyTimeLayout, m[1], loc)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp on line %d: %w", i+1, err)
		}

		entry := models.HistoryEntry{Timestamp: ts, Title: strings.TrimSpace(m[2])}
		if m[3] != "" {
			score, err := strconv.Atoi(m[3])
			if err == nil {
				entry.Score = models.IntPtr(score)
			}
		}

		j := i + 2
		for j < len(lines) && !isStart(j) {
			j++
		}
		entry.Body = strings.TrimRight(strings.Join(lines[i+2:j], "\n"), "\n ")
		entries = append(entries, entry)
		i = j
	}

	return entries, nil
}
