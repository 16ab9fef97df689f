// Package wled drives WLED LED controllers over their JSON HTTP API. Each
// client owns a worker goroutine; state pushes coalesce in a latest-wins
// slot so a slow controller never backs up the show thread, and request
// outcomes are fed back onto the control queue.
package wled

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/generalelectrix/showrunner/internal/control"
)

// State is the subset of the WLED /json/state document this controller
// drives. Nil fields are omitted and left untouched by the instance.
type State struct {
	On  *bool     `json:"on,omitempty"`
	Bri *int      `json:"bri,omitempty"`
	Ps  *int      `json:"ps,omitempty"`
	Seg []Segment `json:"seg,omitempty"`
}

// Segment is one WLED segment's effect parameters.
type Segment struct {
	Sx *int `json:"sx,omitempty"`
	Ix *int `json:"ix,omitempty"`
}

// SetBrightness sets the master brightness, turning the instance off
// entirely at zero.
func (s *State) SetBrightness(v int) {
	on := v > 0
	s.On = &on
	if on {
		s.Bri = &v
	}
}

func (s *State) seg0() *Segment {
	if len(s.Seg) == 0 {
		s.Seg = append(s.Seg, Segment{})
	}
	return &s.Seg[0]
}

// SetSpeed sets the effect speed on the first segment.
func (s *State) SetSpeed(v int) {
	s.seg0().Sx = &v
}

// SetSize sets the effect intensity on the first segment.
func (s *State) SetSize(v int) {
	s.seg0().Ix = &v
}

// SetPreset selects a stored preset.
func (s *State) SetPreset(i int) {
	s.Ps = &i
}

// Sink receives request outcomes. *control.Controller satisfies it.
type Sink interface {
	Enqueue(m control.Message)
}

var (
	sinkMu sync.Mutex
	sink   Sink
)

// SetSink installs the control queue that receives WledResponse messages
// from every client worker. Install it before patching any WLED fixtures;
// with no sink installed, request errors are only logged.
func SetSink(s Sink) {
	sinkMu.Lock()
	sink = s
	sinkMu.Unlock()
}

func respond(r control.WledResponse) {
	sinkMu.Lock()
	s := sink
	sinkMu.Unlock()
	if s != nil {
		s.Enqueue(r)
		return
	}
	if r.Err != nil {
		log.Printf("wled %s: %v", r.Instance, r.Err)
	}
}

// Config tunes a client's HTTP behavior.
type Config struct {
	// Timeout bounds each request, including reading the response body.
	Timeout time.Duration
	// RequestsPerSecond limits the push rate to the instance.
	RequestsPerSecond float64
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{Timeout: 2 * time.Second, RequestsPerSecond: 10}
}

var (
	defaultsMu sync.Mutex
	defaults   = DefaultConfig()
)

// SetDefaults overrides the config used for clients created without an
// explicit one, such as those spawned by patched fixtures.
func SetDefaults(cfg Config) {
	defaultsMu.Lock()
	defaults = cfg
	defaultsMu.Unlock()
}

// Defaults returns the current default client config.
func Defaults() Config {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	return defaults
}

// Client talks to one WLED instance. SetState is safe to call from the show
// thread at tick rate; the worker coalesces pushes and paces requests.
type Client struct {
	instance string
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter

	mu      sync.Mutex
	pending *State

	wake   chan struct{}
	cancel context.CancelFunc
}

// NewClient starts a worker for the WLED instance at baseURL. The instance
// name tags responses on the control queue.
func NewClient(instance, baseURL string, cfg Config) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "bad WLED url %q", baseURL)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("WLED url %q needs a scheme and host", baseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultConfig().RequestsPerSecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		instance: instance,
		endpoint: u.JoinPath("json", "state").String(),
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		wake:     make(chan struct{}, 1),
		cancel:   cancel,
	}
	go c.run(ctx)
	return c, nil
}

// Instance returns the name used to tag this client's responses.
func (c *Client) Instance() string { return c.instance }

// SetState queues a state push. A push queued before the worker gets to the
// previous one replaces it.
func (c *Client) SetState(s State) {
	c.mu.Lock()
	c.pending = &s
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker. Any pending push is dropped.
func (c *Client) Close() {
	c.cancel()
}

func (c *Client) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}
		c.mu.Lock()
		s := c.pending
		c.pending = nil
		c.mu.Unlock()
		if s == nil {
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}
		body, err := c.push(ctx, s)
		respond(control.WledResponse{Instance: c.instance, Body: body, Err: err})
	}
}

func (c *Client) push(ctx context.Context, s *State) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encoding WLED state")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "building WLED request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "posting state to %s", c.endpoint)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading WLED response")
	}
	if resp.StatusCode >= 300 {
		return body, errors.Errorf("WLED returned %s", resp.Status)
	}
	return body, nil
}
