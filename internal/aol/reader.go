package aol

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/tonycui/spatio/internal/geometry"
)

// RecoveryError records one line the Reader could not apply: a
// decode failure, a schema violation, or ill-formed GeoJSON text on
// an INSERT.
type RecoveryError struct {
	LineNumber int
	RawLine    string
	Reason     string
}

// RecoveryResult is everything the Reader recovered plus everything it
// could not, so startup can report a summary without failing (§4.4,
// §7's AofRecoveryError disposition).
type RecoveryResult struct {
	Commands    []Command
	Errors      []RecoveryError
	SuccessRate float64
}

// ReadFile opens path and replays it line by line. An absent file is
// not an error — it means empty recovery, success. Any one bad line
// (corrupt JSON, missing field, unparsable GeoJSON) is recorded and
// skipped; every other line still recovers (§8 invariant 9).
func ReadFile(path string) (RecoveryResult, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return RecoveryResult{SuccessRate: 1}, nil
	}
	if err != nil {
		return RecoveryResult{}, err
	}
	defer f.Close()

	var result RecoveryResult
	total := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		total++

		cmd, err := decodeLine(raw)
		if err != nil {
			result.Errors = append(result.Errors, RecoveryError{
				LineNumber: lineNo,
				RawLine:    raw,
				Reason:     err.Error(),
			})
			continue
		}
		result.Commands = append(result.Commands, cmd)
	}
	if err := scanner.Err(); err != nil {
		result.Errors = append(result.Errors, RecoveryError{
			LineNumber: lineNo + 1,
			Reason:     "truncated line: " + err.Error(),
		})
	}

	if total == 0 {
		result.SuccessRate = 1
	} else {
		result.SuccessRate = float64(len(result.Commands)) / float64(total)
	}
	return result, nil
}

func decodeLine(raw string) (Command, error) {
	var cmd Command
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		return Command{}, err
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	if cmd.Cmd == CmdInsert {
		if _, err := geometry.Parse([]byte(cmd.GeoJSON)); err != nil {
			return Command{}, err
		}
	}
	return cmd, nil
}
