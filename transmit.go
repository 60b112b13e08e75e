package shtp

import (
	"fmt"
	"sync/atomic"
)

// Send fragments payload into transport-sized frames and writes each via
// the HAL, on ch. Per spec.md §4.3: the receiver's listener on ch at the
// peer sees exactly one delivery of these bytes, and multiple Send calls
// on the same channel deliver in call order.
//
// Grounded line-for-line on the reference's txProcess: the header
// (length, continuation, channel, sequence) is formatted once per
// fragment, with next_out_seq advanced at format time, and the same
// formatted frame is retried unmodified while the HAL reports busy.
func (e *Endpoint) Send(ch uint8, payload []byte) error {
	if e.closed {
		return newStatusError(StatusBadParam, ErrClosed)
	}
	if int(ch) >= len(e.channels) {
		atomic.AddUint64(&e.stats.txBadChan, 1)
		e.emit(EventBadTxChannel)
		return newStatusError(StatusBadParam, fmt.Errorf("shtp: Send(chan=%d): %w", ch, ErrBadChannel))
	}
	if len(payload) > e.maxPayloadOut() {
		atomic.AddUint64(&e.stats.txTooLargePayloads, 1)
		return newStatusError(StatusBadParam, fmt.Errorf("shtp: Send(chan=%d, len=%d): %w", ch, len(payload), ErrPayloadTooLarge))
	}

	continuation := false
	cursor := 0
	remaining := len(payload)
	maxChunk := len(e.outTransfer) - HeaderSize

	for remaining > 0 {
		chunk := remaining
		if chunk > maxChunk {
			chunk = maxChunk
		}
		if err := e.writeFragment(ch, payload[cursor:cursor+chunk], continuation); err != nil {
			return err
		}
		continuation = true
		cursor += chunk
		remaining -= chunk
	}

	// A cargo whose length is an exact positive multiple of maxChunk ends
	// with a fragment that fills the transfer buffer to capacity, which
	// the receiver cannot tell apart, on the wire, from a fragment with
	// more of the same cargo still to come (rx_assemble's completion
	// signal keys off a fragment reading short of capacity). Emit one
	// empty continuation fragment so the receiver always sees an
	// unambiguous short final read.
	if len(payload) > 0 && len(payload)%maxChunk == 0 {
		if err := e.writeFragment(ch, nil, continuation); err != nil {
			return err
		}
	}

	e.log.Debug("shtp: sent %d bytes on chan=%d", len(payload), ch)
	return nil
}

// writeFragment formats and writes a single fragment (header plus chunk),
// retrying via the cooperative service pump while the HAL reports busy.
// next_out_seq is advanced at format time, before the write is attempted,
// per spec.md §4.3.
func (e *Endpoint) writeFragment(ch uint8, chunk []byte, continuation bool) error {
	frameLen := len(chunk) + HeaderSize

	seq := e.channels[ch].nextOutSeq
	e.channels[ch].nextOutSeq++
	putHeader(e.outTransfer, uint16(frameLen), continuation, ch, seq)
	copy(e.outTransfer[HeaderSize:frameLen], chunk)

	n, err := e.hal.Write(e.outTransfer[:frameLen])
	for n == 0 && err == nil {
		e.Service()
		n, err = e.hal.Write(e.outTransfer[:frameLen])
	}
	if err != nil {
		atomic.AddUint64(&e.stats.txDiscards, 1)
		e.emit(EventTxDiscard)
		e.log.Warn("shtp: tx discard (chan=%d): %v", ch, err)
		return newStatusError(StatusHalError, fmt.Errorf("shtp: hal write: %w: %v", ErrHal, err))
	}
	return nil
}

// maxPayloadOut is the largest payload Send will accept: unbounded by
// HeaderSize overhead across fragments, so only the HAL's own cap
// applies. A HAL that reports MaxPayloadOut()==0 is treated as
// unbounded, matching a HAL that only constrains per-transfer size.
func (e *Endpoint) maxPayloadOut() int {
	if m := e.hal.MaxPayloadOut(); m > 0 {
		return m
	}
	return int(^uint(0) >> 1)
}
