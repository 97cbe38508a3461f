// Package wire is the serialization codec for mesh broadcast payloads.
//
// Encoding produces an opaque record: a content marker followed by the
// base64 of a gob-encoded envelope. The marker lets the decoder pick real
// records out of the daemon's fetch output, which concatenates every
// record currently held for a channel, wraps each in quoting punctuation
// and backslash/hex-escapes the bytes.
//
// Decoding is deliberately forgiving: the broadcast medium is lossy by
// design, so corrupt records are dropped one by one and a fully garbled
// response simply yields no values. Decode never returns an error.
package wire
