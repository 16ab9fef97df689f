package osc

import (
	"log"
	"net"

	"github.com/pkg/errors"
)

type senderCmd struct {
	// Exactly one of these is set.
	resp       *Response
	register   *ClientID
	deregister *ClientID
}

// Sender owns the outbound OSC UDP socket and the registry of clients that
// receive control responses. All sends happen on a dedicated goroutine so a
// slow network path never blocks the show loop.
type Sender struct {
	conn    *net.UDPConn
	write   func(b []byte, addr *net.UDPAddr) error
	cmds    chan senderCmd
	clients map[ClientID]*net.UDPAddr
	done    chan struct{}
}

// NewSender opens the outbound socket on an ephemeral port.
func NewSender() (*Sender, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, errors.Wrap(err, "unable to open OSC send socket")
	}
	s := newSender(func(b []byte, addr *net.UDPAddr) error {
		_, err := conn.WriteToUDP(b, addr)
		return err
	})
	s.conn = conn
	return s, nil
}

func newSender(write func(b []byte, addr *net.UDPAddr) error) *Sender {
	return &Sender{
		write:   write,
		cmds:    make(chan senderCmd, 1000),
		clients: make(map[ClientID]*net.UDPAddr),
		done:    make(chan struct{}),
	}
}

// Run processes send and registry commands until Close is called. Run on its
// own goroutine.
func (s *Sender) Run() {
	defer close(s.done)
	for cmd := range s.cmds {
		switch {
		case cmd.resp != nil:
			s.deliver(*cmd.resp)
		case cmd.register != nil:
			s.addClient(*cmd.register)
		case cmd.deregister != nil:
			delete(s.clients, *cmd.deregister)
		}
	}
}

// Close stops the send loop and releases the socket.
func (s *Sender) Close() {
	close(s.cmds)
	<-s.done
	if s.conn != nil {
		s.conn.Close()
	}
}

// Send queues a response for fan-out to registered clients. Drops the
// response if the send queue is full.
func (s *Sender) Send(resp Response) {
	select {
	case s.cmds <- senderCmd{resp: &resp}:
	default:
		log.Printf("OSC send queue full, dropping response to %s", resp.Msg.Address)
	}
}

// Register adds a client to the response fan-out.
func (s *Sender) Register(id ClientID) {
	s.cmds <- senderCmd{register: &id}
}

// Deregister removes a client from the response fan-out.
func (s *Sender) Deregister(id ClientID) {
	s.cmds <- senderCmd{deregister: &id}
}

func (s *Sender) addClient(id ClientID) {
	if _, ok := s.clients[id]; ok {
		return
	}
	addr, err := id.UDPAddr()
	if err != nil {
		log.Printf("Unable to resolve OSC client %s: %v", id, err)
		return
	}
	s.clients[id] = addr
}

func (s *Sender) deliver(resp Response) {
	payload := resp.Msg.Bytes()
	for id, addr := range s.clients {
		if resp.Talkback == TalkbackOff && resp.SenderID != nil && *resp.SenderID == id {
			continue
		}
		if err := s.write(payload, addr); err != nil {
			log.Printf("OSC send error to %s: %v", id, err)
		}
	}
}
