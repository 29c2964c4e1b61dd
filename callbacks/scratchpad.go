package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/toolbelt/tools"
)

var TimeNowFn = time.Now

// Stats provides the counters of tool calls
type Stats struct {
	Duration      time.Duration
	Calls         uint32
	Succeeded     uint32
	Failed        uint32
	NotFound      uint32
	BytesReturned uint64
}

// Scratchpad is a callback handler that records the tool events
// and collects the stats of tool calls.
type Scratchpad struct {
	mode    Mode
	started time.Time
	stats   Stats

	w    bytes.Buffer
	lock sync.Mutex
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		mode:    mode,
		started: TimeNowFn(),
	}
}

// End returns the stats and the recorded output
func (l *Scratchpad) End() (*Stats, []byte) {
	stats := Stats{
		Duration:      TimeNowFn().Sub(l.started),
		Calls:         atomic.LoadUint32(&l.stats.Calls),
		Succeeded:     atomic.LoadUint32(&l.stats.Succeeded),
		Failed:        atomic.LoadUint32(&l.stats.Failed),
		NotFound:      atomic.LoadUint32(&l.stats.NotFound),
		BytesReturned: atomic.LoadUint64(&l.stats.BytesReturned),
	}

	l.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d, Bytes: %d",
		stats.Calls,
		stats.Failed,
		stats.NotFound,
		stats.BytesReturned,
	))

	l.lock.Lock()
	defer l.lock.Unlock()
	return &stats, bytes.Clone(l.w.Bytes())
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	atomic.AddUint32(&l.stats.Calls, 1)
	l.print(tool.Name(), "*** Tool Start ***")
	l.print(tool.Name(), "Input:", input)
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	atomic.AddUint32(&l.stats.Succeeded, 1)
	atomic.AddUint64(&l.stats.BytesReturned, uint64(len(output)))
	if l.mode == ModeVerbose {
		l.print(tool.Name(), "Output:", output)
	}
	l.print(tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	atomic.AddUint32(&l.stats.Failed, 1)
	l.print(tool.Name(), "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnToolNotFound(ctx context.Context, name string) {
	atomic.AddUint32(&l.stats.NotFound, 1)
	l.print("*** Tool Not Found ***", name)
}

// print writes the entries in the following format:
// timestamp entry entry\n
func (l *Scratchpad) print(entries ...string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	ts := TimeNowFn().Format("2006-01-02 15:04:05")
	_, _ = l.w.WriteString(ts)

	for _, entry := range entries {
		_, _ = l.w.WriteString(" ")
		_, _ = l.w.WriteString(entry)
	}
	_, _ = l.w.WriteString("\n")
}
