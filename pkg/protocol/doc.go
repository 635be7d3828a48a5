// Package protocol is the binary wire format between a live session and
// its browser client.
//
// Every websocket message is one frame with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// The server sends FramePatches frames holding host operations, in the
// order the renderer issued them, each addressed by a numeric node id.
// The client sends FrameEvent frames naming the node, the event and a
// string detail. FrameError carries a coded error message.
//
// Integers are varints, strings are varint length-prefixed UTF-8.
//
//	ops := []Op{
//	    {Code: OpCreateElement, ID: 2, Tag: "p"},
//	    {Code: OpSetElementText, ID: 2, Value: "hi"},
//	    {Code: OpInsert, ID: 2, Parent: 1},
//	}
//	frames, next := PatchFrames(seq, ops, MaxPayloadSize)
//
// Malformed input is reported with P001 errors and unknown op codes with
// P002 (see internal/errors).
package protocol
