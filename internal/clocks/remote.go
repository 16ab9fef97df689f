package clocks

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/generalelectrix/showrunner/internal/number"
)

// RemoteSlot is a latest-value cell between the remote clock subscriber and
// the show thread. The subscriber overwrites, the show takes; stale frames
// are dropped rather than queued.
type RemoteSlot struct {
	mu   sync.Mutex
	snap *Snapshot
}

// Set stores a new snapshot, replacing any unconsumed one.
func (r *RemoteSlot) Set(s Snapshot) {
	r.mu.Lock()
	r.snap = &s
	r.mu.Unlock()
}

// Take removes and returns the stored snapshot, if any.
func (r *RemoteSlot) Take() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return Snapshot{}, false
	}
	s := *r.snap
	r.snap = nil
	return s, true
}

type remoteFrame struct {
	Clocks []struct {
		Phase  float64 `json:"phase"`
		Rate   float64 `json:"rate"`
		Ticked bool    `json:"ticked"`
	} `json:"clocks"`
	AudioEnvelope float64 `json:"audioEnvelope"`
}

func (f *remoteFrame) snapshot() Snapshot {
	var s Snapshot
	for i, c := range f.Clocks {
		if i >= NClocks {
			break
		}
		s.Clocks[i] = ClockState{
			Phase:  number.PhaseFromFloat(c.Phase),
			Rate:   c.Rate,
			Ticked: c.Ticked,
		}
	}
	s.AudioEnvelope = number.UnipolarFromFloat(f.AudioEnvelope)
	return s
}

// Subscriber maintains a websocket connection to an external clock service
// and feeds decoded snapshots into a RemoteSlot.
type Subscriber struct {
	url  string
	slot *RemoteSlot

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

// NewSubscriber creates a subscriber for the given websocket URL.
func NewSubscriber(url string, slot *RemoteSlot) *Subscriber {
	return &Subscriber{url: url, slot: slot, done: make(chan struct{})}
}

// Run connects and reads frames until Close is called, reconnecting with a
// fixed backoff on failure. Run on its own goroutine.
func (s *Subscriber) Run() {
	defer close(s.done)
	for {
		if s.isClosed() {
			return
		}
		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			log.Printf("Remote clock dial %s failed: %v", s.url, err)
			if !s.sleep(time.Second) {
				return
			}
			continue
		}
		log.Printf("Subscribed to remote clocks at %s", s.url)
		s.setConn(conn)
		s.readLoop(conn)
		s.setConn(nil)
		conn.Close()
	}
}

// Close terminates the subscription and waits for the run loop to exit.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	<-s.done
}

func (s *Subscriber) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !s.isClosed() {
				log.Printf("Remote clock read error: %v", err)
			}
			return
		}
		var frame remoteFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("Malformed remote clock frame: %v", err)
			continue
		}
		s.slot.Set(frame.snapshot())
	}
}

func (s *Subscriber) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscriber) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *Subscriber) sleep(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if s.isClosed() {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}
