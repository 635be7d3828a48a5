package protocol

import (
	"fmt"

	"github.com/vango-dev/reactor/internal/errors"
)

// OpCode identifies a host operation.
type OpCode uint8

const (
	OpCreateElement  OpCode = 0x01 // ID, Tag
	OpCreateText     OpCode = 0x02 // ID, Value
	OpSetText        OpCode = 0x03 // ID, Value
	OpSetElementText OpCode = 0x04 // ID, Value
	OpSetProp        OpCode = 0x05 // ID, Key, Value
	OpRemoveProp     OpCode = 0x06 // ID, Key
	OpListen         OpCode = 0x07 // ID, Key (event name)
	OpUnlisten       OpCode = 0x08 // ID, Key (event name)
	OpInsert         OpCode = 0x09 // ID, Parent, Anchor (0 appends)
	OpRemove         OpCode = 0x0A // ID
)

func (op OpCode) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetText:
		return "SetText"
	case OpSetElementText:
		return "SetElementText"
	case OpSetProp:
		return "SetProp"
	case OpRemoveProp:
		return "RemoveProp"
	case OpListen:
		return "Listen"
	case OpUnlisten:
		return "Unlisten"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Op is one host operation. Fields not used by Code are zero.
type Op struct {
	Code   OpCode
	ID     uint64
	Parent uint64
	Anchor uint64
	Tag    string
	Key    string
	Value  string
}

func (o Op) String() string {
	switch o.Code {
	case OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", o.Code, o.ID, o.Tag)
	case OpCreateText, OpSetText, OpSetElementText:
		return fmt.Sprintf("%s #%d %q", o.Code, o.ID, o.Value)
	case OpSetProp:
		return fmt.Sprintf("%s #%d %s=%q", o.Code, o.ID, o.Key, o.Value)
	case OpRemoveProp, OpListen, OpUnlisten:
		return fmt.Sprintf("%s #%d %s", o.Code, o.ID, o.Key)
	case OpInsert:
		return fmt.Sprintf("%s #%d into #%d before #%d", o.Code, o.ID, o.Parent, o.Anchor)
	default:
		return fmt.Sprintf("%s #%d", o.Code, o.ID)
	}
}

// Patch is a sequenced batch of ops.
type Patch struct {
	Seq uint64
	Ops []Op
}

// EncodePatch encodes p as a patches payload.
//
//	[Seq: varint][Count: varint][Op]...
//	Op: [Code: byte][ID: varint][operands]
func EncodePatch(p *Patch) []byte {
	e := NewEncoder()
	EncodePatchTo(e, p)
	return e.Bytes()
}

// EncodePatchTo encodes p using e.
func EncodePatchTo(e *Encoder, p *Patch) {
	e.WriteUvarint(p.Seq)
	e.WriteUvarint(uint64(len(p.Ops)))
	for i := range p.Ops {
		encodeOp(e, &p.Ops[i])
	}
}

func encodeOp(e *Encoder, o *Op) {
	e.WriteByte(byte(o.Code))
	e.WriteUvarint(o.ID)
	switch o.Code {
	case OpCreateElement:
		e.WriteString(o.Tag)
	case OpCreateText, OpSetText, OpSetElementText:
		e.WriteString(o.Value)
	case OpSetProp:
		e.WriteString(o.Key)
		e.WriteString(o.Value)
	case OpRemoveProp, OpListen, OpUnlisten:
		e.WriteString(o.Key)
	case OpInsert:
		e.WriteUvarint(o.Parent)
		e.WriteUvarint(o.Anchor)
	}
}

// opLen returns the encoded size of o.
func opLen(o *Op) int {
	n := 1 + UvarintLen(o.ID)
	switch o.Code {
	case OpCreateElement:
		n += stringLen(o.Tag)
	case OpCreateText, OpSetText, OpSetElementText:
		n += stringLen(o.Value)
	case OpSetProp:
		n += stringLen(o.Key) + stringLen(o.Value)
	case OpRemoveProp, OpListen, OpUnlisten:
		n += stringLen(o.Key)
	case OpInsert:
		n += UvarintLen(o.Parent) + UvarintLen(o.Anchor)
	}
	return n
}

// DecodePatch decodes a patches payload. Truncated or oversized input
// fails with P001 and an unknown op code with P002.
func DecodePatch(data []byte) (*Patch, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, malformed("patch sequence", err)
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, malformed("op count", err)
	}
	p := &Patch{Seq: seq, Ops: make([]Op, 0, count)}
	for i := 0; i < count; i++ {
		op, err := decodeOp(d)
		if err != nil {
			return nil, err
		}
		p.Ops = append(p.Ops, op)
	}
	if !d.EOF() {
		return nil, errors.New("P001").WithDetailf("%d trailing bytes after %d ops", d.Remaining(), count)
	}
	return p, nil
}

func decodeOp(d *Decoder) (Op, error) {
	var o Op
	code, err := d.ReadByte()
	if err != nil {
		return o, malformed("op code", err)
	}
	o.Code = OpCode(code)
	if o.ID, err = d.ReadUvarint(); err != nil {
		return o, malformed(o.Code.String()+" id", err)
	}

	switch o.Code {
	case OpCreateElement:
		o.Tag, err = d.ReadString()
	case OpCreateText, OpSetText, OpSetElementText:
		o.Value, err = d.ReadString()
	case OpSetProp:
		if o.Key, err = d.ReadString(); err == nil {
			o.Value, err = d.ReadString()
		}
	case OpRemoveProp, OpListen, OpUnlisten:
		o.Key, err = d.ReadString()
	case OpInsert:
		if o.Parent, err = d.ReadUvarint(); err == nil {
			o.Anchor, err = d.ReadUvarint()
		}
	case OpRemove:
	default:
		return o, errors.New("P002").WithDetailf("op code 0x%02x", code)
	}
	if err != nil {
		return o, malformed(o.Code.String()+" operands", err)
	}
	return o, nil
}

// PatchFrames packs ops into patch frames no larger than maxPayload,
// numbering them from seq. The last frame carries FlagFinal. It returns the
// frames and the next unused sequence number. An empty op list produces
// no frames.
func PatchFrames(seq uint64, ops []Op, maxPayload int) ([]*Frame, uint64) {
	if maxPayload <= 0 || maxPayload > MaxPayloadSize {
		maxPayload = MaxPayloadSize
	}
	var (
		frames []*Frame
		start  int
	)
	for start < len(ops) {
		// The header is estimated with the widest count this frame could
		// need; a single op is always sent even if it alone is too large.
		size := UvarintLen(seq) + UvarintLen(uint64(len(ops)-start))
		end := start
		for end < len(ops) {
			n := opLen(&ops[end])
			if end > start && size+n > maxPayload {
				break
			}
			size += n
			end++
		}
		frames = append(frames, NewFrame(FramePatches, EncodePatch(&Patch{Seq: seq, Ops: ops[start:end]})))
		seq++
		start = end
	}
	if len(frames) > 0 {
		frames[len(frames)-1].Flags |= FlagFinal
	}
	return frames, seq
}

func malformed(what string, err error) *errors.Error {
	return errors.New("P001").WithDetailf("reading %s", what).Wrap(err)
}
