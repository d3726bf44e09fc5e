package inbox

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	settleDelay  = 200 * time.Millisecond
	workerCount  = 5
	queueDepth   = 200 // must exceed workerCount so a burst never stalls the event loop
	pollInterval = 5 * time.Second
)

// Watcher hands new request files in the inbox to a handler. Events are
// coalesced until the directory has been quiet for settleDelay, then the
// batch is fanned out to a fixed pool of workers.
type Watcher struct {
	dir     string
	handler func(path string)
	settle  time.Duration
	log     *slog.Logger
}

// NewWatcher returns an fsnotify-backed watcher for dir.
func NewWatcher(dir string, handler func(path string), log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{dir: dir, handler: handler, settle: settleDelay, log: log}
}

// pending is the set of paths seen since the last flush.
type pending struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func (p *pending) add(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paths == nil {
		p.paths = make(map[string]struct{})
	}
	p.paths[path] = struct{}{}
}

func (p *pending) drain() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.paths))
	for path := range p.paths {
		out = append(out, path)
	}
	p.paths = nil
	sort.Strings(out)
	return out
}

// Run blocks until ctx is cancelled or the notifier shuts down. Requests
// still pending at shutdown are handed off before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = notifier.Close() }()
	if err := notifier.Add(w.dir); err != nil {
		return err
	}

	jobs := make(chan string, queueDepth)
	var wg sync.WaitGroup
	for range workerCount {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				w.handle(path)
			}
		}()
	}

	var batch pending
	dispatch := func() {
		for _, path := range batch.drain() {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}

	quiet := time.NewTimer(w.settle)
	quiet.Stop()
	defer func() {
		quiet.Stop()
		dispatch()
		close(jobs)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-quiet.C:
			dispatch()
		case ev, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isRequestFile(ev.Name) {
				batch.add(ev.Name)
				quiet.Reset(w.settle)
			}
		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("inbox notifier error", "dir", w.dir, "error", err)
		}
	}
}

// handle keeps one bad request from taking down a worker.
func (w *Watcher) handle(path string) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("request handler panicked", "path", path, "panic", r)
		}
	}()
	w.handler(path)
}

// PollWatcher lists the inbox on a fixed interval. It is the fallback for
// filesystems without change notification, such as NFS mounts.
type PollWatcher struct {
	dir      string
	handler  func(path string)
	interval time.Duration
	seen     map[string]bool
}

// NewPollWatcher returns a polling watcher; a zero interval means 5s.
func NewPollWatcher(dir string, handler func(path string), interval time.Duration) *PollWatcher {
	if interval <= 0 {
		interval = pollInterval
	}
	return &PollWatcher{dir: dir, handler: handler, interval: interval, seen: map[string]bool{}}
}

// Run blocks until ctx is cancelled.
func (w *PollWatcher) Run(ctx context.Context) error {
	tick := time.NewTicker(w.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			w.scan()
		}
	}
}

// scan handles files not seen before and forgets files that have left the
// inbox, so a request resubmitted under the same name is picked up again.
func (w *PollWatcher) scan() {
	paths, err := requestFiles(w.dir)
	if err != nil {
		return
	}
	present := make(map[string]bool, len(paths))
	for _, path := range paths {
		present[path] = true
		if w.seen[path] {
			continue
		}
		w.seen[path] = true
		w.handler(path)
	}
	for path := range w.seen {
		if !present[path] {
			delete(w.seen, path)
		}
	}
}

// ScanExisting hands every request file already in dir to handler. A
// missing dir is not an error.
func ScanExisting(dir string, handler func(path string)) error {
	paths, err := requestFiles(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, path := range paths {
		handler(path)
	}
	return nil
}

// requestFiles lists request files in dir in name order.
func requestFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && isRequestFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// isRequestFile accepts JSON and YAML requests. Producers write to a .tmp
// name first, so those are partial and skipped.
func isRequestFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".tmp") {
		return false
	}
	switch filepath.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
