package osc

import (
	"bytes"
	"log"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/scgolang/osc"
)

// Addresses with special meaning to the listener itself; these never reach
// the show.
const (
	// AddrIgnore is dropped silently. Surfaces use it for decorative
	// widgets that still emit messages.
	AddrIgnore = "/ignore"
	// AddrDeregister removes the sending client from the response fan-out.
	AddrDeregister = "/deregister"
)

var bundleTag = []byte("#bundle")

// MessageSink consumes the control events produced by the listener.
type MessageSink interface {
	OscMessage(m *ControlMessage)
	RegisterClient(id ClientID)
	DeregisterClient(id ClientID)
}

// Listener owns the inbound OSC UDP socket. Each datagram is decoded and
// forwarded to the sink; malformed messages are logged and dropped so one
// misbehaving surface cannot stall the control queue.
type Listener struct {
	conn *net.UDPConn

	mu     sync.Mutex
	seen   map[ClientID]bool
	closed bool
	done   chan struct{}
}

// ListenUDP opens the inbound control socket on the given port.
func ListenUDP(port int) (*Listener, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open OSC receive socket on port %d", port)
	}
	log.Printf("Listening for OSC on port %d", port)
	return &Listener{
		conn: conn,
		seen: make(map[ClientID]bool),
		done: make(chan struct{}),
	}, nil
}

// Serve reads datagrams until the listener is closed, forwarding decoded
// messages to the sink. Run on its own goroutine.
func (l *Listener) Serve(sink MessageSink) {
	defer close(l.done)
	buf := make([]byte, 65536)
	for {
		n, sender, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()
			if closed {
				return
			}
			log.Printf("OSC receive error: %v", err)
			continue
		}
		l.handleDatagram(buf[:n], sender, sink)
	}
}

// Close shuts down the socket and waits for the serve loop to exit.
func (l *Listener) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()
	l.conn.Close()
	<-l.done
}

func (l *Listener) handleDatagram(data []byte, sender *net.UDPAddr, sink MessageSink) {
	client := ClientID(sender.String())
	if bytes.HasPrefix(data, bundleTag) {
		bundle, err := osc.ParseBundle(data, sender)
		if err != nil {
			log.Printf("Error parsing OSC bundle from %s: %v", client, err)
			return
		}
		l.handleBundle(bundle, client, sink)
		return
	}
	msg, err := osc.ParseMessage(data, sender)
	if err != nil {
		log.Printf("Error parsing OSC message from %s: %v", client, err)
		return
	}
	l.handleMessage(msg, client, sink)
}

func (l *Listener) handleBundle(b osc.Bundle, client ClientID, sink MessageSink) {
	for _, p := range b.Packets {
		switch m := p.(type) {
		case osc.Message:
			l.handleMessage(m, client, sink)
		case osc.Bundle:
			l.handleBundle(m, client, sink)
		}
	}
}

func (l *Listener) handleMessage(m osc.Message, client ClientID, sink MessageSink) {
	switch m.Address {
	case AddrIgnore:
		return
	case AddrDeregister:
		l.mu.Lock()
		delete(l.seen, client)
		l.mu.Unlock()
		sink.DeregisterClient(client)
		return
	}
	l.mu.Lock()
	first := !l.seen[client]
	l.seen[client] = true
	l.mu.Unlock()
	if first {
		log.Printf("Registering OSC client %s", client)
		sink.RegisterClient(client)
	}
	parsed, err := ParseControlMessage(m, client)
	if err != nil {
		log.Printf("Dropping malformed OSC message from %s: %v", client, err)
		return
	}
	sink.OscMessage(parsed)
}
