package chat

// OutboundMessage is an immutable routed record. GLOBAL messages fan out to
// every joined connection; PRIVATE messages go to exactly one recipient.
type OutboundMessage struct {
	typ       MessageType
	content   string
	recipient *Connection
}

// NewGlobal builds a broadcast record. content must already carry its prefix.
func NewGlobal(content string) OutboundMessage {
	return OutboundMessage{typ: MessageGlobal, content: content}
}

// NewPrivate builds a single-recipient record.
func NewPrivate(content string, recipient *Connection) (OutboundMessage, error) {
	if recipient == nil {
		return OutboundMessage{}, ErrMissingRecipient
	}
	return OutboundMessage{typ: MessagePrivate, content: content, recipient: recipient}, nil
}

func (m OutboundMessage) Type() MessageType { return m.typ }
func (m OutboundMessage) Content() string { return m.content }
func (m OutboundMessage) Recipient() *Connection { return m.recipient }

// Queue is the server-wide FIFO of outbound records. It is touched only by
// the event loop goroutine.
type Queue struct {
	items []OutboundMessage
}

func (q *Queue) Push(m OutboundMessage) {
	q.items = append(q.items, m)
}

// Pop removes the oldest record. ok is false when the queue is empty.
func (q *Queue) Pop() (m OutboundMessage, ok bool) {
	if len(q.items) == 0 {
		return OutboundMessage{}, false
	}
	m = q.items[0]
	q.items[0] = OutboundMessage{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return m, true
}

func (q *Queue) Len() int { return len(q.items) }
