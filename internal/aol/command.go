// Package aol implements the append-only command log: a schema, a
// Writer with three fsync policies, and a fault-tolerant line-by-line
// Reader for startup recovery (§4.4).
package aol

import "errors"

// CommandType tags one of the four recognized AOL command kinds: the
// three per-collection kinds plus FLUSHALL for dropping every collection.
type CommandType string

const (
	CmdInsert   CommandType = "INSERT"
	CmdDelete   CommandType = "DELETE"
	CmdDrop     CommandType = "DROP"
	CmdFlushAll CommandType = "FLUSHALL"
)

// Command is one line of the append-only log: self-contained JSON with
// a monotonic nanosecond timestamp kept only for diagnostics — ordering
// in the file, not Ts, defines semantics (§4.4).
type Command struct {
	Ts         uint64      `json:"ts"`
	Cmd        CommandType `json:"cmd"`
	Collection string      `json:"collection"`
	Key        string      `json:"key,omitempty"`
	GeoJSON    string      `json:"geojson,omitempty"`
}

// Validate checks the per-command-type required fields (§4.4's schema
// validation table). It does not check GeoJSON well-formedness — the
// Reader does that separately since it needs the geometry package.
func (c Command) Validate() error {
	switch c.Cmd {
	case CmdInsert:
		if c.Collection == "" {
			return errors.New("INSERT requires \"collection\"")
		}
		if c.Key == "" {
			return errors.New("INSERT requires \"key\"")
		}
		if c.GeoJSON == "" {
			return errors.New("INSERT requires \"geojson\"")
		}
		return nil
	case CmdDelete:
		if c.Collection == "" {
			return errors.New("DELETE requires \"collection\"")
		}
		if c.Key == "" {
			return errors.New("DELETE requires \"key\"")
		}
		return nil
	case CmdDrop:
		if c.Collection == "" {
			return errors.New("DROP requires \"collection\"")
		}
		return nil
	case CmdFlushAll:
		return nil
	default:
		return errors.New("unrecognized AOL command \"" + string(c.Cmd) + "\"")
	}
}

func NewInsert(ts uint64, collection, key, geojson string) Command {
	return Command{Ts: ts, Cmd: CmdInsert, Collection: collection, Key: key, GeoJSON: geojson}
}

func NewDelete(ts uint64, collection, key string) Command {
	return Command{Ts: ts, Cmd: CmdDelete, Collection: collection, Key: key}
}

func NewDrop(ts uint64, collection string) Command {
	return Command{Ts: ts, Cmd: CmdDrop, Collection: collection}
}

func NewFlushAll(ts uint64) Command {
	return Command{Ts: ts, Cmd: CmdFlushAll}
}
