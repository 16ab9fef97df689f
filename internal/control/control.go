// Package control unifies the asynchronous control transports behind a
// single queue. OSC, MIDI, and WLED worker goroutines enqueue messages; the
// show loop drains them one at a time with a bounded wait, so it is the only
// code that ever touches show state.
package control

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/generalelectrix/showrunner/internal/midi"
	"github.com/generalelectrix/showrunner/internal/osc"
)

// ErrDisconnected reports that the control queue was closed. The show loop
// treats this as unrecoverable.
var ErrDisconnected = errors.New("control queue disconnected")

// Message is one unit of control input for the show loop.
type Message interface {
	isMessage()
}

// RegisterClient adds an OSC client to the response fan-out.
type RegisterClient struct {
	ID osc.ClientID
}

// DeregisterClient removes an OSC client from the response fan-out.
type DeregisterClient struct {
	ID osc.ClientID
}

// OscMessage carries an inbound OSC control message.
type OscMessage struct {
	Msg *osc.ControlMessage
}

// MidiMessage carries a raw event from a MIDI control surface.
type MidiMessage struct {
	Event midi.DeviceEvent
}

// WledResponse carries the outcome of a WLED HTTP request back onto the
// show thread.
type WledResponse struct {
	Instance string
	Body     []byte
	Err      error
}

func (RegisterClient) isMessage()   {}
func (DeregisterClient) isMessage() {}
func (OscMessage) isMessage()       {}
func (MidiMessage) isMessage()      {}
func (WledResponse) isMessage()     {}

// Controller owns the control transports and the queue that feeds the show
// loop. Enqueues never block, so I/O goroutines cannot stall on a busy show
// thread.
type Controller struct {
	Sender *osc.Sender
	Midi   *midi.Manager

	mu     sync.Mutex
	queue  []Message
	closed bool
	wake   chan struct{}
}

// NewController creates a controller wrapping the given transports. Either
// transport may be nil in tests or reduced configurations.
func NewController(sender *osc.Sender, midiManager *midi.Manager) *Controller {
	return &Controller{
		Sender: sender,
		Midi:   midiManager,
		wake:   make(chan struct{}, 1),
	}
}

// Enqueue adds a message to the control queue.
func (c *Controller) Enqueue(m Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, m)
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Recv dequeues the next control message, waiting at most timeout. Returns
// (nil, nil) on timeout and ErrDisconnected once the queue is closed and
// drained.
func (c *Controller) Recv(timeout time.Duration) (Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			m := c.queue[0]
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return m, nil
		}
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return nil, ErrDisconnected
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-c.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Close shuts the queue down. Pending messages are still delivered; after
// that Recv returns ErrDisconnected.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// OscMessage implements osc.MessageSink.
func (c *Controller) OscMessage(m *osc.ControlMessage) {
	c.Enqueue(OscMessage{Msg: m})
}

// RegisterClient implements osc.MessageSink.
func (c *Controller) RegisterClient(id osc.ClientID) {
	c.Enqueue(RegisterClient{ID: id})
}

// DeregisterClient implements osc.MessageSink.
func (c *Controller) DeregisterClient(id osc.ClientID) {
	c.Enqueue(DeregisterClient{ID: id})
}

// MidiMessage implements midi.EventSink.
func (c *Controller) MidiMessage(e midi.DeviceEvent) {
	c.Enqueue(MidiMessage{Event: e})
}

// SenderWithMetadata creates an emitter that stamps outbound responses with
// the originating client for talkback filtering.
func (c *Controller) SenderWithMetadata(senderID *osc.ClientID) MessageSender {
	return MessageSender{senderID: senderID, controller: c}
}

// EmitAllSender creates an emitter with no originating client; responses
// reach every registered client regardless of talkback mode.
func (c *Controller) EmitAllSender() MessageSender {
	return MessageSender{controller: c}
}

// EmitMidi renders a show state change to the connected MIDI surfaces.
func (c *Controller) EmitMidi(e midi.Event) {
	if c.Midi != nil {
		c.Midi.Emit(e)
	}
}
