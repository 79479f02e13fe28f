package chat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Framing selects how frame boundaries are found on a byte stream.
type Framing string

const (
	// FramingRaw treats whatever a single read returns as one frame.
	FramingRaw Framing = "raw"
	// FramingLength prefixes each frame with a big-endian uint16 length.
	FramingLength Framing = "length"
)

// DefaultReadBufferSize is the largest frame accepted in one read.
const DefaultReadBufferSize = 8191

const lengthHeaderSize = 2

func ParseFraming(s string) (Framing, error) {
	switch Framing(s) {
	case "", FramingRaw:
		return FramingRaw, nil
	case FramingLength:
		return FramingLength, nil
	default:
		return "", fmt.Errorf("unknown framing %q", s)
	}
}

// FrameReader yields raw frame bytes (type byte + payload) from a stream.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// NewFrameReader wraps r according to mode. maxSize bounds a single frame.
func NewFrameReader(r io.Reader, mode Framing, maxSize int) FrameReader {
	if maxSize <= 0 {
		maxSize = DefaultReadBufferSize
	}
	if mode == FramingLength {
		return &lengthReader{r: bufio.NewReaderSize(r, maxSize+lengthHeaderSize), max: maxSize}
	}
	return &rawReader{r: r, buf: make([]byte, maxSize)}
}

type rawReader struct {
	r   io.Reader
	buf []byte
}

func (rr *rawReader) ReadFrame() ([]byte, error) {
	for {
		n, err := rr.r.Read(rr.buf)
		if n > 0 {
			// A trailing error surfaces again on the next read.
			out := make([]byte, n)
			copy(out, rr.buf[:n])
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

type lengthReader struct {
	r   *bufio.Reader
	max int
	hdr [lengthHeaderSize]byte
}

func (lr *lengthReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(lr.r, lr.hdr[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint16(lr.hdr[:]))
	if n == 0 {
		return nil, ErrEmptyFrame
	}
	if n > lr.max {
		return nil, ErrFrameTooLarge
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(lr.r, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendFramed wraps an encoded frame for the given framing mode.
func AppendFramed(dst []byte, mode Framing, frame []byte) ([]byte, error) {
	if mode != FramingLength {
		return append(dst, frame...), nil
	}
	if len(frame) == 0 {
		return dst, ErrEmptyFrame
	}
	if len(frame) > 0xFFFF {
		return dst, ErrFrameTooLarge
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(frame)))
	return append(dst, frame...), nil
}
