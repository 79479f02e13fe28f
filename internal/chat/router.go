package chat

import (
	"log/slog"
)

const noRecipientText = "No one connected has that nickname, so your private message was not sent."

// Router turns decoded frames into outbound records and delivers queued
// records to their recipients.
type Router struct {
	reg    *Registry
	queue  *Queue
	logger *slog.Logger
}

func NewRouter(reg *Registry, queue *Queue, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{reg: reg, queue: queue, logger: logger}
}

// Handle routes one frame from sender. A non-nil error is a protocol
// violation and the caller tears the connection down.
func (r *Router) Handle(sender *Connection, f Frame) error {
	switch f.Type {
	case MessageSetName:
		r.handleSetName(sender, f.Payload)
	case MessageGlobal:
		r.queue.Push(NewGlobal(GlobalContent(displayName(sender), f.Payload)))
	case MessagePrivate:
		if err := r.handlePrivate(sender, f.Payload); err != nil {
			return err
		}
	default:
		return ErrUnknownMessageType
	}
	MessagesTotal.WithLabelValues(f.Type.String()).Inc()
	return nil
}

func (r *Router) handleSetName(sender *Connection, name string) {
	var text string
	if old, ok := sender.Name(); ok {
		text = old + " changed their display name to " + name + "!"
	} else {
		text = name + " joined the room!"
	}
	r.queue.Push(NewGlobal(ServerContent(text)))
	r.reg.SetName(sender, name)
}

func (r *Router) handlePrivate(sender *Connection, payload string) error {
	to, body, err := ParsePrivate(payload)
	if err != nil {
		return err
	}

	var msg OutboundMessage
	if recipient := r.reg.FindByName(to); recipient != nil {
		msg, err = NewPrivate(PrivateContent(displayName(sender), body), recipient)
	} else {
		msg, err = NewPrivate(ServerContent(noRecipientText), sender)
	}
	if err != nil {
		return err
	}
	r.queue.Push(msg)
	return nil
}

// Drain writes every queued record until the queue is empty. Records queued
// while draining, such as departure notices for connections whose write just
// failed, are delivered in the same pass.
func (r *Router) Drain() {
	for {
		msg, ok := r.queue.Pop()
		if !ok {
			return
		}
		line := EncodeLine(msg.Content())

		switch msg.Type() {
		case MessageGlobal:
			for _, c := range r.reg.Joined() {
				r.deliver(c, msg.Type(), line)
			}
		case MessagePrivate:
			r.deliver(msg.Recipient(), msg.Type(), line)
		}
	}
}

func (r *Router) deliver(c *Connection, t MessageType, line []byte) {
	if c == nil || c.Removed() {
		return
	}
	if err := c.writeFully(line); err != nil {
		r.logger.Debug("write failed", "id", c.ID, "error", err)
		r.reg.Remove(c, "write_error")
		return
	}
	OutboundDelivered.WithLabelValues(t.String()).Inc()
}
