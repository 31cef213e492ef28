package aol

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/tonycui/spatio/internal/logging"
	"github.com/tonycui/spatio/internal/spatioerr"
)

// SyncPolicy selects when the Writer asks the OS to fsync the file,
// trading durability for throughput (§4.4, §6's data-loss table).
type SyncPolicy int

const (
	SyncAlways SyncPolicy = iota
	SyncEverySecond
	SyncNo
)

func ParseSyncPolicy(s string) SyncPolicy {
	switch s {
	case "Always", "always":
		return SyncAlways
	case "No", "no", "none":
		return SyncNo
	default:
		return SyncEverySecond
	}
}

// noSyncFlushThreshold is the "~1 MiB of accumulated writes" §4.4
// names as the flush trigger under SyncNo.
const noSyncFlushThreshold = 1 << 20

// Writer appends Commands to the log file, one self-contained JSON
// object per line, honoring its SyncPolicy. It owns exclusive access
// to the file handle; callers reach it through a single shared handle
// (§5's shared-resource policy).
type Writer struct {
	mu             sync.Mutex
	file           *os.File
	buf            *bufio.Writer
	policy         SyncPolicy
	lastSync       time.Time
	sinceLastSync  int
	log            *logging.Logger
}

// OpenWriter opens path in append mode, creating it if absent.
func OpenWriter(path string, policy SyncPolicy) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, spatioerr.Wrap(spatioerr.KindAofWrite, "open AOL file", err)
	}
	return &Writer{
		file:     f,
		buf:      bufio.NewWriter(f),
		policy:   policy,
		lastSync: time.Now(),
		log:      logging.New("aol"),
	}, nil
}

// Append serializes cmd as one JSON line and applies the Writer's sync
// policy. A write failure is logged and returned as *spatioerr.Error
// with Kind AofWrite; per §7 the caller does not roll back an
// already-applied in-memory mutation because of it.
func (w *Writer) Append(cmd Command) error {
	line, err := json.Marshal(cmd)
	if err != nil {
		return spatioerr.Wrap(spatioerr.KindAofWrite, "marshal AOL command", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.buf.Write(line)
	if err == nil {
		_, err = w.buf.WriteString("\n")
		n++
	}
	if err != nil {
		w.log.Errorf("append failed: %v", err)
		return spatioerr.Wrap(spatioerr.KindAofWrite, "write AOL line", err)
	}
	w.sinceLastSync += n + 1

	switch w.policy {
	case SyncAlways:
		if err := w.flushAndSync(); err != nil {
			return err
		}
	case SyncEverySecond:
		if err := w.buf.Flush(); err != nil {
			w.log.Errorf("flush failed: %v", err)
			return spatioerr.Wrap(spatioerr.KindAofWrite, "flush AOL buffer", err)
		}
		if time.Since(w.lastSync) >= time.Second {
			if err := w.file.Sync(); err != nil {
				w.log.Errorf("sync failed: %v", err)
				return spatioerr.Wrap(spatioerr.KindAofWrite, "sync AOL file", err)
			}
			w.lastSync = time.Now()
		}
	case SyncNo:
		if w.sinceLastSync >= noSyncFlushThreshold {
			if err := w.buf.Flush(); err != nil {
				w.log.Errorf("flush failed: %v", err)
				return spatioerr.Wrap(spatioerr.KindAofWrite, "flush AOL buffer", err)
			}
			w.sinceLastSync = 0
		}
	}
	return nil
}

func (w *Writer) flushAndSync() error {
	if err := w.buf.Flush(); err != nil {
		w.log.Errorf("flush failed: %v", err)
		return spatioerr.Wrap(spatioerr.KindAofWrite, "flush AOL buffer", err)
	}
	if err := w.file.Sync(); err != nil {
		w.log.Errorf("sync failed: %v", err)
		return spatioerr.Wrap(spatioerr.KindAofWrite, "sync AOL file", err)
	}
	w.lastSync = time.Now()
	w.sinceLastSync = 0
	return nil
}

// Close flushes the user buffer (no forced fsync) and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.buf.Flush()
	return w.file.Close()
}
