package logging

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Service is the logging facade. It normalizes every entry into a record,
// resolves correlation identifiers, and forwards the result to the
// configured Engine. All logging methods are safe on a nil, uninitialized
// or closed Service, never panic, and never return errors.
type Service struct {
	// WorkingDir anchors the relative log directory for file logging.
	// Optional; set it before Initialize.
	WorkingDir string

	cfg    Config
	hasCfg bool
	engine Engine

	isInitialized atomic.Bool
	activeOps     atomic.Int32
	wg            sync.WaitGroup
	mu            sync.RWMutex
	initOnce      sync.Once
	initErr       error

	minLevel    Level
	traceHeader string
	ignore      patternList
	maxBody     int64
	stamps      map[string]string
	pairs       pairTable
}

// ServiceOption configures a Service at construction time.
type ServiceOption func(*Service)

// WithConfig supplies the configuration. Without it, Initialize falls back
// to DefaultConfig.
func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) {
		s.cfg = cfg
		s.hasCfg = true
	}
}

// WithEngine injects the backend engine. Without it, Initialize builds a
// ZerologEngine from the configuration.
func WithEngine(e Engine) ServiceOption {
	return func(s *Service) { s.engine = e }
}

// WithWorkingDir anchors relative log paths.
func WithWorkingDir(dir string) ServiceOption {
	return func(s *Service) { s.WorkingDir = dir }
}

// New constructs an unarmed Service. Call Initialize before logging;
// every method no-ops until then.
func New(opts ...ServiceOption) *Service {
	s := &Service{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Initialize validates the configuration, builds the default engine when
// none was injected, and arms the facade. Only the first call does the
// work; later calls return the first result.
func (s *Service) Initialize() error {
	if s == nil {
		return errors.New(errMsgNilService)
	}
	s.initOnce.Do(func() { s.initErr = s.initialize() })
	return s.initErr
}

func (s *Service) initialize() error {
	cfg := s.cfg
	if !s.hasCfg {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	cfg.applyEnv()

	if err := validateConfig(&cfg); err != nil {
		return err
	}

	if cfg.FileLogging && s.WorkingDir != emptyString {
		cfg.RelLogFileDir = filepath.Join(s.WorkingDir, cfg.RelLogFileDir)
	}

	if s.engine == nil {
		eng, err := NewZerologEngine(cfg)
		if err != nil {
			return err
		}
		s.engine = eng
	}

	ignore, err := compilePatterns(cfg.IgnorePatterns)
	if err != nil {
		return err
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	s.cfg = cfg
	s.minLevel = level
	s.traceHeader = cfg.TraceHeader
	s.ignore = ignore
	s.maxBody = cfg.MaxBodyBytes
	s.stamps = buildStamps(cfg)

	s.isInitialized.Store(true)
	return nil
}

// buildStamps collects the static metadata stamped onto every record.
func buildStamps(cfg Config) map[string]string {
	stamps := make(map[string]string, 5)
	if cfg.ServiceName != emptyString {
		stamps[fieldService] = cfg.ServiceName
	}
	if cfg.Environment != emptyString {
		stamps[fieldEnvironment] = cfg.Environment
	}
	if v := os.Getenv(EnvWorkflowID); v != emptyString {
		stamps[fieldWorkflowID] = v
	}
	if v := os.Getenv(EnvServiceID); v != emptyString {
		stamps[fieldServiceID] = v
	}
	if v := os.Getenv(EnvDeploymentID); v != emptyString {
		stamps[fieldDeploymentID] = v
	}
	if len(stamps) == 0 {
		return nil
	}
	return stamps
}

// Close disarms the facade, waits up to ShutdownTimeoutMS for in-flight
// records to finish, then releases the engine. Safe to call repeatedly.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	if !s.isInitialized.CompareAndSwap(true, false) {
		return nil
	}

	timeout := time.Duration(s.cfg.ShutdownTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultShutdownTimeout * time.Millisecond
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		if s.cfg.ShutdownTimeoutWarning && s.engine != nil {
			s.engine.Warn("Logger shutdown timeout exceeded", map[string]any{
				"activeOperations": s.activeOps.Load(),
			})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eng := s.engine
	s.engine = NopEngine{}
	if c, ok := eng.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ActiveOperations reports how many records are mid-emit. Useful for
// shutdown diagnostics; safe to call at any time.
func (s *Service) ActiveOperations() int32 {
	if s == nil {
		return 0
	}
	return s.activeOps.Load()
}

// emit forwards one record to the engine. The counter and read lock give
// Close what it needs: it can wait for emits already in flight, and no
// engine teardown can run while a write is in progress.
func (s *Service) emit(rec record) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	if !levelEnabled(s.minLevel, rec.level) {
		return
	}

	s.activeOps.Add(1)
	s.wg.Add(1)
	defer func() {
		s.activeOps.Add(-1)
		s.wg.Done()
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	eng := s.engine
	if eng == nil {
		return
	}
	eng.Log(rec.level, rec.message, rec.meta(s.stamps))
}

// resolveTraceID picks the record's trace id: explicit option first, then
// the ambient context, then a fresh mint. Every record therefore carries a
// non-empty trace id.
func (s *Service) resolveTraceID(ctx context.Context, o *recordOptions) string {
	if o != nil && o.traceID != emptyString {
		return o.traceID
	}
	if id, ok := TraceIDFromContext(ctx); ok {
		return id
	}
	return NewTraceID()
}

// headerName is the configured trace header, falling back to the default
// so middleware built before Initialize still behaves.
func (s *Service) headerName() string {
	if s != nil && s.traceHeader != emptyString {
		return s.traceHeader
	}
	return DefaultTraceHeader
}

// Log emits a general record at the given level.
func (s *Service) Log(ctx context.Context, level Level, msg Message, opts ...Option) {
	if s == nil || !s.isInitialized.Load() {
		return
	}
	o := applyOptions(opts)
	rec := newRecord(KindGeneral, level, msg, o)
	rec.traceID = s.resolveTraceID(ctx, o)
	rec.requestID = o.requestID
	if o.hasDuration {
		rec.setDuration(o.duration)
	} else if !o.startTime.IsZero() {
		rec.setDuration(time.Since(o.startTime))
	}
	s.emit(rec)
}

// Debug emits a general record at debug level.
func (s *Service) Debug(ctx context.Context, msg Message, opts ...Option) {
	s.Log(ctx, LevelDebug, msg, opts...)
}

// Info emits a general record at info level.
func (s *Service) Info(ctx context.Context, msg Message, opts ...Option) {
	s.Log(ctx, LevelInfo, msg, opts...)
}

// Warn emits a general record at warn level.
func (s *Service) Warn(ctx context.Context, msg Message, opts ...Option) {
	s.Log(ctx, LevelWarn, msg, opts...)
}

// Error emits a general record at error level.
func (s *Service) Error(ctx context.Context, msg Message, opts ...Option) {
	s.Log(ctx, LevelError, msg, opts...)
}
