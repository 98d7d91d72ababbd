package corpus

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Points-file grammar. Two layouts are accepted:
//
//  1. A single bare number. The value applies to the one implicit task,
//     keyed "Aufgabe".
//  2. Line-oriented entries:
//     "Nr.<N>"          opens numbered task <N>; following sub-task lines
//     attach to it.
//     "Nr.<N>: <pts>"   assigns points to task "Aufgabe<N>" directly and
//     leaves task <N> open for following sub-task lines.
//     "<letter>: <pts>" assigns points to sub-task "Aufgabe<N><letter>"
//     of the most recently opened numbered task.
//
// Lines matching none of these forms are ignored. An empty result map means
// the file was missing or carried no parseable entries; callers treat that
// as a skip signal, not an error.
var (
	taskHeaderRe = regexp.MustCompile(`^Nr\.(\d+)\s*$`)
	taskPointsRe = regexp.MustCompile(`^Nr\.(\d+):\s*([\d.]+)`)
	subTaskRe    = regexp.MustCompile(`^([a-zA-Z]):\s*([\d.]+)`)
)

// ImplicitTaskKey is the task key used by the single-number layout.
const ImplicitTaskKey = "Aufgabe"

// ParsePoints parses points-file content into a task-key → points map.
func ParsePoints(content string) map[string]float64 {
	points := make(map[string]float64)
	content = strings.TrimSpace(content)
	if content == "" {
		return points
	}

	if v, err := strconv.ParseFloat(content, 64); err == nil {
		points[ImplicitTaskKey] = v
		return points
	}

	var openTask string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := taskHeaderRe.FindStringSubmatch(line); m != nil {
			openTask = ImplicitTaskKey + m[1]
			continue
		}

		if m := taskPointsRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[2], 64); err == nil {
				points[ImplicitTaskKey+m[1]] = v
			}
			openTask = ImplicitTaskKey + m[1]
			continue
		}

		if m := subTaskRe.FindStringSubmatch(line); m != nil && openTask != "" {
			if v, err := strconv.ParseFloat(m[2], 64); err == nil {
				points[openTask+m[1]] = v
			}
		}
	}

	return points
}

// ParsePointsFile reads and parses a points file.
//
// A missing file yields an empty map, matching the skip semantics of
// ParsePoints; read errors other than absence are returned.
func ParsePointsFile(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	return ParsePoints(string(data)), nil
}
