package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	osSignal "os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivanzxc/go-realtime-vitals/internal/config"
	"github.com/ivanzxc/go-realtime-vitals/internal/logger"
	"github.com/ivanzxc/go-realtime-vitals/internal/stream"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool

	// gorilla admite un solo escritor por conexión
	writeMu sync.Mutex
}

func newHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool)}
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = true
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
}

func (h *Hub) snapshot() []*websocket.Conn {
	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	return clients
}

func (h *Hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// broadcast escribe a todos; un cliente lento o caído se descarta.
func (h *Hub) broadcast(messageType int, b []byte) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, c := range h.snapshot() {
		_ = c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(messageType, b); err != nil {
			_ = c.Close()
			h.remove(c)
		}
	}
}

// relay reenvía NATS a los navegadores y guarda los últimos vitales.
type relay struct {
	hub     *Hub
	pub     func(subject string, data []byte) error
	rates   string
	log     *zap.Logger
	waves   atomic.Int64
	texts   atomic.Int64
	vitals  atomic.Pointer[[]byte]
	rejects atomic.Int64
}

func (r *relay) onWave(data []byte) {
	r.waves.Add(1)
	r.hub.broadcast(websocket.BinaryMessage, data)
}

func (r *relay) onVitals(data []byte) {
	r.texts.Add(1)
	cp := append([]byte(nil), data...)
	r.vitals.Store(&cp)
	r.hub.broadcast(websocket.TextMessage, data)
}

func (r *relay) onParams(data []byte) {
	r.texts.Add(1)
	r.hub.broadcast(websocket.TextMessage, data)
}

func (r *relay) routes(webDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/", http.FileServer(http.Dir(webDir)))

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "wave_messages %d\n", r.waves.Load())
		fmt.Fprintf(w, "text_messages %d\n", r.texts.Load())
		fmt.Fprintf(w, "rate_rejects %d\n", r.rejects.Load())
		fmt.Fprintf(w, "clients %d\n", r.hub.size())
	})

	mux.HandleFunc("/vitals", func(w http.ResponseWriter, _ *http.Request) {
		v := r.vitals.Load()
		if v == nil {
			http.Error(w, "no vitals yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(*v)
	})

	mux.HandleFunc("/rates", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(req.Body, 1<<10))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// se valida sólo la forma; el motor decide si la frecuencia es válida
		if _, err := stream.DecodeRateUpdate(body); err != nil {
			r.rejects.Add(1)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := r.pub(r.rates, body); err != nil {
			r.log.Warn("forward rates", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		r.hub.add(conn)
		defer func() {
			r.hub.remove(conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})

	return mux
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile, natsURL, addr, webDir string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Reenvía curvas y vitales a los navegadores por WebSocket",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if f.Changed("nats") {
				cfg.NATS.URL = natsURL
			}
			if f.Changed("addr") {
				cfg.Server.Addr = addr
			}
			return run(cmd.Context(), cfg, webDir)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML config file")
	f.StringVar(&natsURL, "nats", "nats://127.0.0.1:4222", "NATS url")
	f.StringVar(&addr, "addr", ":8080", "http address")
	f.StringVar(&webDir, "web", "./web", "static files directory")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, webDir string) error {
	log := logger.Init(&cfg.Log)
	defer logger.Sync()

	nc, err := stream.Connect(cfg.NATS.URL, "vitals-server", log)
	if err != nil {
		return fmt.Errorf("connect nats: %w", err)
	}
	defer nc.Drain()

	r := &relay{
		hub:   newHub(),
		pub:   nc.Publish,
		rates: cfg.NATS.RatesSubject,
		log:   log,
	}

	ctx, stop := osSignal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Waves (binario passthrough)
	sub, err := nc.SubscribeSync(cfg.NATS.WaveSubject)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.NATS.WaveSubject, err)
	}
	go func() {
		for {
			msg, err := sub.NextMsgWithContext(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			r.onWave(msg.Data)
		}
	}()

	if _, err := nc.Subscribe(cfg.NATS.VitalsSubject, func(msg *nats.Msg) { r.onVitals(msg.Data) }); err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.NATS.VitalsSubject, err)
	}
	if _, err := nc.Subscribe(cfg.NATS.ParamsSubject, func(msg *nats.Msg) { r.onParams(msg.Data) }); err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.NATS.ParamsSubject, err)
	}

	server := &http.Server{Addr: cfg.Server.Addr, Handler: r.routes(webDir)}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
