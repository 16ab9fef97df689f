// Package monitor exposes a read-only HTTP surface for watching a running
// show: universe output snapshots, a websocket feed of the animation editor
// state, and network interface discovery for Art-Net setup. It never
// accepts control input; the control surfaces are OSC and MIDI.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/generalelectrix/showrunner/internal/services/network"
	"github.com/generalelectrix/showrunner/internal/services/pubsub"
	"github.com/generalelectrix/showrunner/internal/show"
)

// Config tunes the monitor server.
type Config struct {
	// Port is the HTTP listen port.
	Port string
	// CORSOrigin is an additional allowed origin beyond localhost.
	CORSOrigin string
}

// Server is the monitor HTTP server. It receives show output on the show
// thread (as a DMX port and as the snapshot publisher) and serves it to
// HTTP and websocket clients on their own goroutines.
type Server struct {
	cfg        Config
	ps         *pubsub.PubSub
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mu     sync.Mutex
	frames map[int][]byte
	latest *show.Snapshot
}

// New creates a monitor server. Call Start to begin serving.
func New(cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		ps:     pubsub.New(),
		frames: make(map[int][]byte),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin, "http://localhost:3000"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	router.Use(corsMiddleware.Handler)

	router.Get("/health", healthHandler)
	router.Get("/universes", s.universesHandler)
	router.Get("/interfaces", interfacesHandler)
	router.Get("/ws/animation", s.animationSocketHandler)

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("monitor listening on http://localhost:%s", s.cfg.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("monitor server error: %v", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Publish implements show.Publisher: it retains the latest animation editor
// snapshot and fans it out to websocket subscribers, dropping frames for
// any subscriber that has fallen behind.
func (s *Server) Publish(frame show.Snapshot) {
	s.mu.Lock()
	s.latest = &frame
	s.mu.Unlock()
	s.ps.Publish(pubsub.TopicAnimation, frame)
}

// Write implements dmx.Port: the show loop pushes every universe here each
// frame alongside the real output ports, and the handler serves the cached
// copy.
func (s *Server) Write(universe int, channels []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.frames[universe]
	if !ok {
		buf = make([]byte, len(channels))
		s.frames[universe] = buf
	}
	copy(buf, channels)
	return nil
}

// Close implements dmx.Port.
func (s *Server) Close() error { return nil }

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := fmt.Sprintf(`{
  "status": "ok",
  "timestamp": "%s"
}`, time.Now().UTC().Format(time.RFC3339))
	_, _ = w.Write([]byte(response))
}

type universeSnapshot struct {
	Universe int   `json:"universe"`
	Channels []int `json:"channels"`
}

func (s *Server) universesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snaps := make([]universeSnapshot, 0, len(s.frames))
	for u, buf := range s.frames {
		channels := make([]int, len(buf))
		for i, b := range buf {
			channels[i] = int(b)
		}
		snaps = append(snaps, universeSnapshot{Universe: u, Channels: channels})
	}
	s.mu.Unlock()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Universe < snaps[j].Universe })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"universes": snaps}); err != nil {
		log.Printf("monitor: encoding universes: %v", err)
	}
}

func interfacesHandler(w http.ResponseWriter, r *http.Request) {
	options, err := network.GetNetworkInterfaces()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"interfaces": options}); err != nil {
		log.Printf("monitor: encoding interfaces: %v", err)
	}
}

func (s *Server) animationSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: websocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sub := s.ps.Subscribe(pubsub.TopicAnimation, 1)
	defer s.ps.Unsubscribe(sub)

	// The client never sends application messages; the read pump exists to
	// notice disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()
	if latest != nil {
		if err := conn.WriteJSON(latest); err != nil {
			return
		}
	}

	for {
		select {
		case <-closed:
			return
		case frame, ok := <-sub.Channel:
			if !ok {
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}
