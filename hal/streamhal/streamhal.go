// Package streamhal adapts any io.ReadWriteCloser (a net.Conn, a serial
// port, a pipe) into the non-blocking, polled shtp/hal.HAL contract.
// Grounded on the teacher's pkg/channel/tcp_channel.go: a background
// reader goroutine turns a blocking stream into framed, buffered
// transfers; Write is adapted to non-blocking via a bounded outbound
// queue serviced by a background writer goroutine, rather than
// tcp_channel.go's context-deadline style (SHTP's HAL has no per-call
// context, only a busy/ready signal).
package streamhal

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned once the HAL (or the underlying stream) has
// been closed.
var ErrClosed = errors.New("streamhal: closed")

const headerSize = 4

// HAL wraps rw, presenting whole SHTP transfers (delimited by the
// 4-byte length header every transfer already carries) as discrete,
// non-blocking Read/Write operations.
type HAL struct {
	rw io.ReadWriteCloser

	maxTransferOut int
	maxTransferIn  int
	maxPayloadOut  int
	maxPayloadIn   int

	readCh  chan frame
	writeCh chan []byte
	readErr atomic.Value

	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type frame struct {
	data []byte
	ts   uint64
}

// Option configures a HAL at construction time.
type Option func(*HAL)

// WithMaxTransferOut overrides the default 64-byte outbound transfer
// cap.
func WithMaxTransferOut(n int) Option { return func(h *HAL) { h.maxTransferOut = n } }

// WithMaxTransferIn overrides the default 64-byte inbound transfer cap.
func WithMaxTransferIn(n int) Option { return func(h *HAL) { h.maxTransferIn = n } }

// WithMaxPayloadOut overrides the default 256-byte outbound cargo cap.
func WithMaxPayloadOut(n int) Option { return func(h *HAL) { h.maxPayloadOut = n } }

// WithMaxPayloadIn overrides the default 256-byte inbound cargo cap.
func WithMaxPayloadIn(n int) Option { return func(h *HAL) { h.maxPayloadIn = n } }

// New wraps rw. The returned HAL's Open starts the background reader
// and writer goroutines; Close stops them and closes rw.
func New(rw io.ReadWriteCloser, opts ...Option) *HAL {
	h := &HAL{
		rw:             rw,
		maxTransferOut: 64,
		maxTransferIn:  64,
		maxPayloadOut:  256,
		maxPayloadIn:   256,
		readCh:         make(chan frame, 16),
		writeCh:        make(chan []byte, 16),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open starts the background pump goroutines.
func (h *HAL) Open() error {
	h.wg.Add(2)
	go h.readLoop()
	go h.writeLoop()
	return nil
}

// Close stops the pumps and closes the underlying stream. Per the HAL
// contract, Close is called from the same single owning goroutine as
// Write, so closing writeCh here races with no concurrent sender.
func (h *HAL) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		err = h.rw.Close()
		close(h.writeCh)
	})
	h.wg.Wait()
	return err
}

func (h *HAL) readLoop() {
	defer h.wg.Done()
	hdr := make([]byte, headerSize)
	for {
		if _, err := io.ReadFull(h.rw, hdr); err != nil {
			h.readErr.Store(err)
			return
		}
		length := (uint16(hdr[0]) + uint16(hdr[1])<<8) &^ 0x8000
		if int(length) < headerSize {
			// Malformed length; drop the connection rather than loop
			// forever mis-framed.
			h.readErr.Store(errors.New("streamhal: invalid frame length"))
			return
		}
		buf := make([]byte, length)
		copy(buf, hdr)
		if length > headerSize {
			if _, err := io.ReadFull(h.rw, buf[headerSize:]); err != nil {
				h.readErr.Store(err)
				return
			}
		}
		select {
		case h.readCh <- frame{data: buf, ts: uint64(time.Now().UnixMicro())}:
		default:
			// Reader outrunning the consumer: drop the oldest to make
			// room rather than block the stream indefinitely.
			select {
			case <-h.readCh:
			default:
			}
			h.readCh <- frame{data: buf, ts: uint64(time.Now().UnixMicro())}
		}
	}
}

func (h *HAL) writeLoop() {
	defer h.wg.Done()
	for data := range h.writeCh {
		if _, err := h.rw.Write(data); err != nil {
			h.readErr.Store(err)
			return
		}
	}
}

// Write enqueues frame for the background writer. Returns 0 (busy) if
// the outbound queue is full.
func (h *HAL) Write(frame []byte) (int, error) {
	if h.closed.Load() {
		return 0, ErrClosed
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	select {
	case h.writeCh <- cp:
		return len(frame), nil
	default:
		return 0, nil
	}
}

// Read returns the next fully-received transfer, or (0, 0, nil) if none
// is pending yet.
func (h *HAL) Read(buf []byte) (int, uint64, error) {
	if err, ok := h.readErr.Load().(error); ok && err != nil {
		return 0, 0, err
	}
	select {
	case fr := <-h.readCh:
		n := copy(buf, fr.data)
		return n, fr.ts, nil
	default:
		return 0, 0, nil
	}
}

// MaxTransferOut returns the largest frame Write will accept.
func (h *HAL) MaxTransferOut() int { return h.maxTransferOut }

// MaxTransferIn returns the largest frame Read will ever return.
func (h *HAL) MaxTransferIn() int { return h.maxTransferIn }

// MaxPayloadOut returns the largest cargo Send will accept end-to-end.
func (h *HAL) MaxPayloadOut() int { return h.maxPayloadOut }

// MaxPayloadIn returns the largest cargo the peer may deliver.
func (h *HAL) MaxPayloadIn() int { return h.maxPayloadIn }
