package chat

import (
	"strings"
)

// nameColon stands in for ':' inside a private-message recipient name.
const nameColon = "\uFFFF"

const serverPrefix = "[SERVER]"

// anonymousName attributes messages from a connection that never set a name.
const anonymousName = "anonymous"

// DecodeFrame maps one frame's bytes to a typed Frame. The first byte is the
// type code; the rest is the UTF-8 payload, with invalid sequences replaced
// by U+FFFD so relayed text stays valid UTF-8.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	t := MessageType(b[0])
	switch t {
	case MessageSetName, MessageGlobal, MessagePrivate:
	default:
		return Frame{}, ErrUnknownMessageType
	}
	return Frame{Type: t, Payload: strings.ToValidUTF8(string(b[1:]), "\uFFFD")}, nil
}

// EncodeFrame is the inverse of DecodeFrame.
func EncodeFrame(t MessageType, payload string) []byte {
	b := make([]byte, 0, 1+len(payload))
	b = append(b, byte(t))
	return append(b, payload...)
}

// ParsePrivate splits a PRIVATE payload at its first colon and restores any
// escaped colons in the recipient name.
func ParsePrivate(payload string) (recipient, body string, err error) {
	i := strings.IndexByte(payload, ':')
	if i < 0 {
		return "", "", ErrMalformedPrivate
	}
	return strings.ReplaceAll(payload[:i], nameColon, ":"), payload[i+1:], nil
}

// FormatPrivate builds a PRIVATE payload the way clients send it.
func FormatPrivate(recipient, body string) string {
	return strings.ReplaceAll(recipient, ":", nameColon) + ":" + body
}

func ServerContent(text string) string {
	return serverPrefix + " " + text
}

// GlobalContent renders a sender's broadcast as "[name] text".
func GlobalContent(sender, text string) string {
	return "[" + sender + "] " + text
}

// PrivateContent renders a sender's direct message as "<name> text".
func PrivateContent(sender, text string) string {
	return "<" + sender + "> " + text
}

// EncodeLine is the server-to-client wire form of an outbound record.
func EncodeLine(content string) []byte {
	b := make([]byte, 0, len(content)+1)
	b = append(b, content...)
	return append(b, '\n')
}

func displayName(c *Connection) string {
	if name, ok := c.Name(); ok {
		return name
	}
	return anonymousName
}
