package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/nxadm/tail"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// FollowOptions control where Follow starts and how it watches.
type FollowOptions struct {
	// FromStart replays the existing file before following. Otherwise only
	// lines written after Follow opens the file are emitted.
	FromStart bool
	// Poll uses stat polling instead of inotify.
	Poll bool
}

// Follow emits every new line appended to path until ctx is cancelled. The
// file may not exist yet and may be rotated while followed.
func Follow(ctx context.Context, path string, opts FollowOptions, emit func(string)) error {
	whence := io.SeekEnd
	if opts.FromStart {
		whence = io.SeekStart
	}
	t, err := tail.TailFile(path, tail.Config{
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      opts.Poll,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("tail %s: %w", path, err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return fmt.Errorf("tail %s: %w", path, line.Err)
			}
			emit(line.Text)
		}
	}
}

// Record is one parsed "[timestamp] LEVEL: message" line.
type Record struct {
	Time    time.Time
	Level   string
	Message string
}

var recordPattern = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\] ([A-Z]+): ?(.*)$`)

// Parse splits a watchdog log line. Continuation lines and foreign formats
// report ok=false.
func Parse(line string) (Record, bool) {
	m := recordPattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", m[1], time.Local)
	if err != nil {
		return Record{}, false
	}
	return Record{Time: ts, Level: m[2], Message: m[3]}, true
}
