package control

import (
	scosc "github.com/scgolang/osc"

	"github.com/generalelectrix/showrunner/internal/osc"
)

// MessageSender routes outbound OSC responses through the controller's
// sender thread, stamping each with the originating client so the sender
// can apply talkback suppression per registered client.
type MessageSender struct {
	senderID   *osc.ClientID
	controller *Controller
}

// EmitOsc implements osc.MessageEmitter.
func (s MessageSender) EmitOsc(talkback osc.Talkback, m scosc.Message) {
	if s.controller.Sender == nil {
		return
	}
	s.controller.Sender.Send(osc.Response{
		SenderID: s.senderID,
		Talkback: talkback,
		Msg:      m,
	})
}
