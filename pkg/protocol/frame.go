package protocol

import (
	"io"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the largest payload a frame can carry.
	MaxPayloadSize = 65535
)

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameEvent   FrameType = 0x01 // client → server event
	FramePatches FrameType = 0x02 // server → client host operations
	FrameError   FrameType = 0x05 // server → client error
)

func (ft FrameType) String() string {
	switch ft {
	case FrameEvent:
		return "Event"
	case FramePatches:
		return "Patches"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

func (ft FrameType) valid() bool {
	return ft == FrameEvent || ft == FramePatches || ft == FrameError
}

// FrameFlags are per-frame flags.
type FrameFlags uint8

// FlagFinal marks the last patch frame of a flush. A flush whose ops do not
// fit in one frame is split; the client applies ops as they arrive and may
// repaint once the final frame is in.
const FlagFinal FrameFlags = 0x04

// Has reports whether ff contains flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame is a typed, length-prefixed message.
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//	│  Payload                                                    │
//	└─────────────────────────────────────────────────────────────┘
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame returns a frame without flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the frame including its header.
func (f *Frame) Encode() []byte {
	length := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(length >> 8)
	buf[3] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame decodes one complete frame. Trailing bytes are an error, as
// every websocket message carries exactly one frame.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, invalidFrame("header is %d bytes", len(data))
	}
	f, length, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) != FrameHeaderSize+length {
		return nil, invalidFrame("payload is %d bytes, header says %d", len(data)-FrameHeaderSize, length)
	}
	f.Payload = append([]byte(nil), data[FrameHeaderSize:]...)
	return f, nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	f, length, err := decodeHeader(header)
	if err != nil {
		return nil, err
	}
	f.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return invalidFrame("payload of %d bytes exceeds %d", len(f.Payload), MaxPayloadSize)
	}
	_, err := w.Write(f.Encode())
	return err
}

func decodeHeader(data []byte) (*Frame, int, error) {
	ft := FrameType(data[0])
	if !ft.valid() {
		return nil, 0, invalidFrame("unknown frame type 0x%02x", data[0])
	}
	length := int(data[2])<<8 | int(data[3])
	return &Frame{Type: ft, Flags: FrameFlags(data[1])}, length, nil
}

func invalidFrame(format string, args ...any) *errors.Error {
	return errors.New("P001").WithDetailf(format, args...)
}
