// Package watch rebuilds a digest whenever files under its input directories change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tyemirov/digest/internal/output"
	"github.com/tyemirov/digest/internal/patterns"
	"github.com/tyemirov/digest/internal/utils"
)

const (
	// DefaultDebounce coalesces bursts of change events into one rebuild.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultPollInterval is the WaitIdle polling period used on shutdown.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultMaxWait bounds WaitIdle on shutdown.
	DefaultMaxWait = 5 * time.Second

	errorCreateWatcherFormat  = "create file watcher: %w"
	errorWatchDirectoryFormat = "watch %s: %w"
	errorResolveRootFormat    = "resolve root %s: %w"

	infoWatching          = "Watching for changes"
	infoChangeDetected    = "Change detected, rebuilding"
	warningWatcherError   = "File watcher error"
	warningWatchDirectory = "Could not watch directory"
	errorRebuildFailed    = "Rebuild failed"
)

// ErrNoRebuild is returned by Run when the session has no rebuild callback.
var ErrNoRebuild = errors.New("watch session requires a rebuild callback")

// State is the rebuild state of a Session.
type State int

const (
	// StateIdle means no rebuild is running.
	StateIdle State = iota
	// StateWriting means a rebuild, including its atomic write, is in progress.
	StateWriting
)

// String returns the state name.
func (state State) String() string {
	if state == StateWriting {
		return "writing"
	}
	return "idle"
}

// RebuildFunc assembles and writes the digest once.
type RebuildFunc func(ctx context.Context) error

// Config defines the inputs of a watch session.
type Config struct {
	Roots []string
	// OutputPath is the digest file; events on it and its temporary siblings are ignored.
	OutputPath string
	// UseDefaultIgnores skips events inside default-ignored directories such as .git.
	UseDefaultIgnores bool
	Debounce          time.Duration
	Rebuild           RebuildFunc
	Logger            *zap.Logger
}

// Session watches input directories and serializes rebuilds. At most one rebuild runs at a
// time; a change that arrives during a rebuild queues exactly one follow-up rebuild.
type Session struct {
	config     Config
	logger     *zap.Logger
	outputPath string
	roots      []string
	ignores    map[string]*patterns.Matcher

	mutex   sync.Mutex
	state   State
	pending bool
	stopped bool
	work    chan struct{}
}

// NewSession creates a Session with defaults applied.
func NewSession(config Config) (*Session, error) {
	normalized := config
	if normalized.Debounce <= 0 {
		normalized.Debounce = DefaultDebounce
	}
	session := &Session{
		config:  normalized,
		logger:  utils.LoggerOrNop(normalized.Logger),
		ignores: make(map[string]*patterns.Matcher, len(normalized.Roots)),
		work:    make(chan struct{}, 1),
	}
	if normalized.OutputPath != "" {
		absoluteOutput, absoluteError := filepath.Abs(normalized.OutputPath)
		if absoluteError != nil {
			return nil, fmt.Errorf(errorResolveRootFormat, normalized.OutputPath, absoluteError)
		}
		session.outputPath = absoluteOutput
	}
	for _, root := range normalized.Roots {
		absoluteRoot, absoluteError := filepath.Abs(root)
		if absoluteError != nil {
			return nil, fmt.Errorf(errorResolveRootFormat, root, absoluteError)
		}
		session.roots = append(session.roots, absoluteRoot)
		if normalized.UseDefaultIgnores {
			session.ignores[absoluteRoot] = patterns.Compile(patterns.DefaultIgnorePatterns)
		}
	}
	return session, nil
}

// State returns the current rebuild state.
func (session *Session) State() State {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.state
}

// Run performs an initial rebuild, then rebuilds after every debounced burst of relevant
// changes until ctx is canceled. Rebuild errors are logged and do not stop the session.
func (session *Session) Run(ctx context.Context) error {
	if session.config.Rebuild == nil {
		return ErrNoRebuild
	}
	watcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return fmt.Errorf(errorCreateWatcherFormat, watcherError)
	}
	defer watcher.Close()

	for _, root := range session.roots {
		if addError := session.addTree(watcher, root); addError != nil {
			return addError
		}
	}
	session.logger.Info(infoWatching, zap.Strings("roots", session.roots))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return session.rebuildLoop(groupCtx)
	})
	group.Go(func() error {
		return session.eventLoop(groupCtx, watcher)
	})
	session.schedule()
	return group.Wait()
}

// WaitIdle polls until no rebuild is running or maxWait elapses. It reports whether the
// session became idle.
func (session *Session) WaitIdle(pollInterval, maxWait time.Duration) bool {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	deadline := time.Now().Add(maxWait)
	for {
		if session.State() == StateIdle {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// schedule requests a rebuild. From Idle it moves to Writing and hands work to the rebuild
// loop; from Writing it records a single pending rebuild.
func (session *Session) schedule() {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	if session.stopped {
		return
	}
	if session.state == StateWriting {
		session.pending = true
		return
	}
	session.state = StateWriting
	select {
	case session.work <- struct{}{}:
	default:
	}
}

// finish ends a rebuild. It reports true, staying in Writing, when a pending rebuild must run next.
func (session *Session) finish() bool {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	if session.pending {
		session.pending = false
		return true
	}
	session.state = StateIdle
	return false
}

// abandon drops queued work and returns to Idle for good; later schedules are ignored.
func (session *Session) abandon() {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.stopped = true
	session.pending = false
	session.state = StateIdle
	select {
	case <-session.work:
	default:
	}
}

func (session *Session) rebuildLoop(ctx context.Context) error {
	defer session.abandon()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-session.work:
		}
		for {
			if rebuildError := session.config.Rebuild(ctx); rebuildError != nil {
				session.logger.Error(errorRebuildFailed, zap.Error(rebuildError))
			}
			if ctx.Err() != nil {
				return nil
			}
			if !session.finish() {
				break
			}
		}
	}
}

func (session *Session) eventLoop(ctx context.Context, watcher *fsnotify.Watcher) error {
	timer := time.NewTimer(session.config.Debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if !session.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, statError := os.Stat(event.Name); statError == nil && info.IsDir() {
					if addError := session.addTree(watcher, event.Name); addError != nil {
						session.logger.Warn(warningWatchDirectory, zap.String("path", event.Name), zap.Error(addError))
					}
				}
			}
			session.logger.Debug(infoChangeDetected, zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(session.config.Debounce)
		case <-timer.C:
			session.schedule()
		case watchError, open := <-watcher.Errors:
			if !open {
				return nil
			}
			session.logger.Warn(warningWatcherError, zap.Error(watchError))
		}
	}
}

// relevant filters out chmod-only events, the output file with its temporary siblings,
// and paths inside default-ignored directories.
func (session *Session) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return session.relevantPath(event.Name)
}

func (session *Session) relevantPath(changedPath string) bool {
	if session.outputPath != "" {
		if utils.SamePath(changedPath, session.outputPath) || output.IsTemporaryFile(changedPath, session.outputPath) {
			return false
		}
	}
	root, relativePath, found := session.rootOf(changedPath)
	if !found {
		return true
	}
	matcher := session.ignores[root]
	if matcher.Empty() {
		return true
	}
	if info, statError := os.Stat(changedPath); statError == nil && info.IsDir() {
		return !matcher.MatchesDirectory(relativePath)
	}
	return !matcher.Matches(relativePath)
}

func (session *Session) rootOf(changedPath string) (string, string, bool) {
	for _, root := range session.roots {
		relativePath, relativeError := filepath.Rel(root, changedPath)
		if relativeError != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
			continue
		}
		return root, filepath.ToSlash(relativePath), true
	}
	return "", "", false
}

// addTree watches directory and every directory below it that is not default-ignored.
func (session *Session) addTree(watcher *fsnotify.Watcher, directory string) error {
	return filepath.WalkDir(directory, func(walkedPath string, entry fs.DirEntry, accessError error) error {
		if accessError != nil {
			if walkedPath == directory {
				return fmt.Errorf(errorWatchDirectoryFormat, walkedPath, accessError)
			}
			session.logger.Warn(warningWatchDirectory, zap.String("path", walkedPath), zap.Error(accessError))
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if walkedPath != directory && !session.relevantPath(walkedPath) {
			return filepath.SkipDir
		}
		if addError := watcher.Add(walkedPath); addError != nil {
			return fmt.Errorf(errorWatchDirectoryFormat, walkedPath, addError)
		}
		return nil
	})
}
