package gesture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAlreadyRunning is returned by Start on a running service.
var ErrAlreadyRunning = errors.New("gesture service already running")

// Config holds the timing and behaviour of a Service.
type Config struct {
	// PollInterval is the sampling cadence.
	PollInterval time.Duration
	// DoubleClickWindow bounds the gap between the two presses of a double-click.
	DoubleClickWindow time.Duration
	// DebounceInterval is the minimum gap between two TextSelected events.
	DebounceInterval time.Duration
	// DragSettleDelay is waited after a drag release before reading the
	// selection, so the OS can finish updating it.
	DragSettleDelay time.Duration
	// ExtractTimeout bounds each selection read, including the enabled check.
	ExtractTimeout time.Duration

	PrimaryButton     int
	DragSelect        bool
	DoubleClickSelect bool
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:      10 * time.Millisecond,
		DoubleClickWindow: DefaultDoubleClickWindow,
		DebounceInterval:  DefaultDebounceInterval,
		DragSettleDelay:   50 * time.Millisecond,
		ExtractTimeout:    2 * time.Second,
		PrimaryButton:     PrimaryButton,
		DragSelect:        true,
		DoubleClickSelect: true,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.DoubleClickWindow <= 0 {
		c.DoubleClickWindow = def.DoubleClickWindow
	}
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = def.DebounceInterval
	}
	if c.DragSettleDelay < 0 {
		c.DragSettleDelay = 0
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = def.ExtractTimeout
	}
	if c.PrimaryButton <= 0 {
		c.PrimaryButton = def.PrimaryButton
	}
}

// Service runs the sample, classify and dispatch loop.
type Service struct {
	cfg      Config
	sampler  Sampler
	reader   TextReader
	enabled  EnabledFunc
	icon     IconRegistry
	debounce *Debouncer
	cls      *classifier

	running atomic.Bool

	mu      sync.Mutex
	done    chan struct{}
	extract *extractor

	// lastText is only touched by the sampling goroutine.
	lastText string

	now   func() time.Time
	sleep func(time.Duration)
}

// NewService creates a stopped service. A nil enabled func disables
// gesture-triggered extraction.
func NewService(cfg Config, sampler Sampler, reader TextReader, enabled EnabledFunc) *Service {
	cfg.applyDefaults()
	s := &Service{
		cfg:      cfg,
		sampler:  sampler,
		reader:   reader,
		enabled:  enabled,
		debounce: NewDebouncer(cfg.DebounceInterval),
		now:      time.Now,
		sleep:    time.Sleep,
	}
	s.cls = newClassifier(cfg, &s.icon)
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Start launches the sampling goroutine and returns immediately.
// handler is called synchronously on that goroutine, in detection order.
func (s *Service) Start(handler Handler) error {
	if handler == nil {
		handler = func(Event) {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A stopped loop may still be finishing its last iteration.
	if s.done != nil {
		select {
		case <-s.done:
		default:
			return ErrAlreadyRunning
		}
	}
	s.running.Store(true)

	s.done = make(chan struct{})
	s.extract = newExtractor(s.reader)
	go s.run(handler, s.done, s.extract)

	slog.Info("gesture service started",
		"poll", s.cfg.PollInterval,
		"double_click", s.cfg.DoubleClickWindow,
		"debounce", s.cfg.DebounceInterval,
		"settle", s.cfg.DragSettleDelay)
	return nil
}

// Stop asks the loop to exit after its current iteration. It does not wait;
// use Done for that. An in-flight selection read is allowed to finish.
func (s *Service) Stop() {
	if s.running.CompareAndSwap(true, false) {
		slog.Info("gesture service stopping")
	}
}

// Done returns a channel closed when the loop has exited.
// It returns nil if the service was never started.
func (s *Service) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Running reports whether the loop is active.
func (s *Service) Running() bool {
	return s.running.Load()
}

// IsSelecting reports whether the primary button is held.
func (s *Service) IsSelecting() bool {
	return s.cls.selecting()
}

// SetSelectionIconBounds records the indicator rectangle.
func (s *Service) SetSelectionIconBounds(x, y, width, height int) {
	s.icon.SetBounds(x, y, width, height)
}

// SetSelectionIconVisible records whether the indicator is shown.
func (s *Service) SetSelectionIconVisible(visible bool) {
	s.icon.SetVisible(visible)
}

// SelectionIcon returns the current indicator geometry.
func (s *Service) SelectionIcon() IconBounds {
	return s.icon.Bounds()
}

func (s *Service) run(handler Handler, done chan struct{}, ex *extractor) {
	defer close(done)
	defer ex.close()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	prev := s.sample(PointerSample{})
	for s.running.Load() {
		<-ticker.C
		cur := s.sample(prev)
		s.step(prev, cur, handler, ex)
		prev = cur
	}
	slog.Info("gesture service stopped")
}

// sample polls the sampler, falling back to prev on error.
func (s *Service) sample(prev PointerSample) PointerSample {
	cur, err := s.sampler.Sample()
	if err != nil {
		slog.Debug("sample pointer", "error", err)
		return prev
	}
	return cur
}

// step classifies one pair of samples and dispatches the result.
// A panicking handler is logged and does not stop the loop.
func (s *Service) step(prev, cur PointerSample, handler Handler, ex *extractor) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("gesture handler panic", "panic", r)
		}
	}()

	for _, st := range s.cls.classify(prev, cur, s.now()) {
		if st.check == checkNone {
			handler(st.event)
			continue
		}
		if text, ok := s.checkSelection(st.check, ex); ok {
			handler(Event{Kind: EventTextSelected, Position: cur.Position, Text: text})
		}
	}
}

// checkSelection runs the selection-check protocol and returns the text to
// announce, if any.
func (s *Service) checkSelection(kind checkKind, ex *extractor) (string, bool) {
	if kind == checkDrag && s.cfg.DragSettleDelay > 0 {
		s.sleep(s.cfg.DragSettleDelay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ExtractTimeout)
	defer cancel()

	if !s.extractionEnabled(ctx) {
		return "", false
	}
	if !s.debounce.ShouldEmit(s.now()) {
		slog.Debug("selection check debounced", "trigger", kind)
		return "", false
	}

	text, err := ex.extract(ctx)
	if err != nil {
		slog.Debug("read selected text", "trigger", kind, "error", err)
		return "", false
	}
	if text == "" || text == s.lastText {
		return "", false
	}
	s.lastText = text
	return text, true
}

func (s *Service) extractionEnabled(ctx context.Context) bool {
	if s.enabled == nil {
		return false
	}
	ok, err := s.enabled(ctx)
	if err != nil {
		slog.Debug("read extraction setting", "error", err)
		return false
	}
	return ok
}
