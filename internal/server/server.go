package server

import (
	"context"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/observability/metrics"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
	"github.com/zeusync/orbitpick/internal/scene"
)

// FrameClock reports the elapsed seconds that drive orbit motion.
type FrameClock interface {
	Elapsed() float64
}

// Server serves the browser frontend. Every WebSocket connection plays its
// own independent session.
type Server struct {
	config  Config
	logger  log.Log
	metrics *metrics.Collector

	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	sessions     sync.Map // map[string]*client
	sessionCount int64    // atomic

	seedMu sync.Mutex
	seeds  *rand.Rand
	served uint64

	newFrameClock func() FrameClock
	clock         game.Clock

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// Config holds server configuration
type Config struct {
	ListenAddr string

	// TickRate is frames per second sent to each client.
	TickRate     int
	ClickRate    float64
	ClickBurst   int
	WriteTimeout time.Duration
	MaxSessions  int
	// HelloTimeout is how long a new session waits for the page's hello
	// before starting the round.
	HelloTimeout time.Duration

	Creation orbit.CreationConfig
	Seed     uint64
	Camera   physics.Camera
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:   "127.0.0.1:8080",
		TickRate:     30,
		ClickRate:    10,
		ClickBurst:   5,
		WriteTimeout: 5 * time.Second,
		MaxSessions:  64,
		HelloTimeout: defaultHelloTimeout,
		Creation:     orbit.DefaultCreationConfig(),
		Camera:       scene.DefaultCamera(),
	}
}

type Option func(*Server)

// WithFrameClock replaces the per-session frame clock, e.g. with a frozen one in tests.
func WithFrameClock(newClock func() FrameClock) Option {
	return func(s *Server) { s.newFrameClock = newClock }
}

// WithClock replaces the wall clock used for clear times.
func WithClock(clock game.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

func NewServer(config Config, logger log.Log, collector *metrics.Collector, opts ...Option) *Server {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:  config,
		logger:  logger.With(log.String("component", "server")),
		metrics: collector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		seeds:         rand.New(rand.NewPCG(config.Seed, config.Seed>>1|1)),
		newFrameClock: func() FrameClock { return scene.NewClock() },
		clock:         game.SystemClock{},
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info("Server created",
		log.String("listen_addr", config.ListenAddr),
		log.Int("tick_rate", config.TickRate),
		log.Int("max_sessions", config.MaxSessions))

	return s
}

// Handler routes the page, the game socket, metrics and health checks.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", staticHandler())
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start binds the listener and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return errors.Wrapf(ErrListenerFailed, "listen %s: %v", s.config.ListenAddr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Stop shuts down the listener and every running session.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")
	s.cancel()

	var shutdownErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = errors.Wrap(err, "failed to shutdown HTTP server")
		}
	}

	// Hijacked connections are not closed by Shutdown.
	s.sessions.Range(func(_, value any) bool {
		value.(*client).close()
		return true
	})
	s.workers.Wait()

	s.logger.Info("Server stopped")
	return shutdownErr
}

// Close stops the server if needed; a closed server cannot be started again.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(ctx)
	}
	s.cancel()
	return nil
}

// Run serves until ctx is cancelled, then stops within the grace period.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return s.Stop(shutdownCtx)
	})
	return g.Wait()
}

// Addr is the bound address once started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) IsRunning() bool {
	return atomic.LoadInt32(&s.running) == 1
}

// nextSeed gives the first session the configured seed and later ones a
// seed drawn from it, so a fixed seed makes the whole server reproducible.
func (s *Server) nextSeed() uint64 {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	s.served++
	if s.served == 1 {
		return s.config.Seed
	}
	return s.seeds.Uint64()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !s.IsRunning() && atomic.LoadInt32(&s.closed) == 1 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("closed\n"))
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		SessionCount: atomic.LoadInt64(&s.sessionCount),
		Served:       s.servedCount(),
		Running:      s.IsRunning(),
	}
}

func (s *Server) servedCount() uint64 {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	return s.served
}

// Stats contains server statistics
type Stats struct {
	SessionCount int64
	Served       uint64
	Running      bool
}
