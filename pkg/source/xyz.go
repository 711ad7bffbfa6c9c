package source

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// framePayload is the raw result of parsing one trajectory frame. Workers
// return payloads instead of graph nodes; the point set nodes are built on
// the model thread when the result is delivered.
type framePayload struct {
	positions [][3]float64
}

// parseXYZ reads an XYZ trajectory file: each frame is a point count line,
// a comment line, then one "element x y z" line per point. Cancellation is
// checked between frames.
func parseXYZ(ctx context.Context, path string) ([]framePayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trajectory: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var frames []framePayload

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, ok := nextLine(scanner)
		if !ok {
			break
		}

		count, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return nil, fmt.Errorf("frame %d: bad point count %q", len(frames), strings.TrimSpace(line))
		}

		// Comment line.
		if _, ok := nextLine(scanner); !ok {
			return nil, fmt.Errorf("frame %d: truncated header", len(frames))
		}

		frame := framePayload{positions: make([][3]float64, 0, count)}

		for i := 0; i < count; i++ {
			line, ok := nextLine(scanner)
			if !ok {
				return nil, fmt.Errorf("frame %d: expected %d points, got %d", len(frames), count, i)
			}

			pos, err := parsePointLine(line)
			if err != nil {
				return nil, fmt.Errorf("frame %d, point %d: %w", len(frames), i, err)
			}

			frame.positions = append(frame.positions, pos)
		}

		frames = append(frames, frame)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trajectory: %w", err)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("trajectory %s contains no frames", path)
	}

	return frames, nil
}

func nextLine(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}

	return "", false
}

func parsePointLine(line string) ([3]float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return [3]float64{}, fmt.Errorf("expected 'element x y z', got %q", line)
	}

	var pos [3]float64

	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("bad coordinate %q", fields[i+1])
		}

		pos[i] = v
	}

	return pos, nil
}
