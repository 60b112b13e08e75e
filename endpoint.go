package shtp

import (
	"fmt"

	"github.com/shtp-go/shtp/hal"
	"github.com/shtp-go/shtp/internal/logger"
)

// Endpoint is an open SHTP session: a HAL handle, a channel table,
// inbound reassembly state, outbound staging buffer, and diagnostic
// counters. It is created by Open and destroyed by Close; per spec.md §5
// it is single-owner and not internally synchronized — Send, Service,
// Listen, SetEventCallback, and Close must not be called concurrently on
// the same Endpoint.
type Endpoint struct {
	hal hal.HAL

	channels []channel

	eventCallback EventCallback
	eventCookie   any

	// Outbound staging buffer, sized to hal.MaxTransferOut().
	outTransfer []byte

	// Inbound reassembly state. Mirrors shtp_t's inRemaining/inChan/
	// inPayload/inCursor/inTimestamp/inTransfer fields.
	inRemaining  uint16
	inChannel    uint8
	inCursor     uint16
	inTimestamp  uint64
	inPayload    []byte
	inTransfer   []byte
	maxPayloadIn int

	stats statsCounters

	log logger.Logger

	closed bool

	// pool is non-nil when this Endpoint was acquired via Pool.Open; Close
	// returns its slot.
	pool *Pool
}

// Open acquires an Endpoint over hal, applying any EndpointOptions on top
// of DefaultEndpointConfig, and invokes the HAL's Open. On HAL failure,
// Open returns a *StatusError wrapping ErrHalOpenFailed and the caller
// holds no resources to release.
func Open(h hal.HAL, opts ...EndpointOption) (*Endpoint, error) {
	if h == nil {
		return nil, newStatusError(StatusBadParam, fmt.Errorf("shtp: Open: %w", ErrBadChannel))
	}

	cfg := DefaultEndpointConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxChannels < 1 {
		cfg.MaxChannels = MaxChannels
	}
	if cfg.MaxPayloadIn < HeaderSize {
		cfg.MaxPayloadIn = MaxPayloadIn
	}
	log := cfg.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	ep := &Endpoint{
		hal:          h,
		channels:     make([]channel, cfg.MaxChannels),
		outTransfer:  make([]byte, h.MaxTransferOut()),
		inTransfer:   make([]byte, h.MaxTransferIn()),
		inPayload:    make([]byte, cfg.MaxPayloadIn),
		maxPayloadIn: cfg.MaxPayloadIn,
		log:          log,
	}

	if err := h.Open(); err != nil {
		return nil, newStatusError(StatusHalOpenFailed, fmt.Errorf("shtp: hal open: %w: %v", ErrHalOpenFailed, err))
	}

	ep.log.Info("shtp: endpoint open (channels=%d, maxPayloadIn=%d)", cfg.MaxChannels, cfg.MaxPayloadIn)
	return ep, nil
}

// Close invokes the HAL's Close and invalidates the Endpoint. Per
// spec.md §4.1's redesign (see SPEC_FULL.md §4 item 5), channel listeners
// are cleared on Close, diverging from the reference's shtp_close, which
// leaves them registered.
func (e *Endpoint) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	for i := range e.channels {
		e.channels[i].reset()
	}
	e.eventCallback = nil
	e.eventCookie = nil

	if e.pool != nil {
		e.pool.release()
	}

	if err := e.hal.Close(); err != nil {
		e.log.Warn("shtp: hal close: %v", err)
		return fmt.Errorf("shtp: hal close: %w", err)
	}
	e.log.Info("shtp: endpoint closed")
	return nil
}

// SetEventCallback registers the callback used for asynchronous protocol
// events. May be called at any time after Open. Passing a nil cb clears
// the registration.
func (e *Endpoint) SetEventCallback(cb EventCallback, cookie any) {
	e.eventCallback = cb
	e.eventCookie = cookie
}

// Listen registers cb as the listener for channel, overwriting any prior
// registration. Fails with BadParam if channel == 0 or channel is out of
// range — channel 0 is reserved for internal protocol control and the
// reference refuses listener registration on it.
func (e *Endpoint) Listen(ch uint8, cb Listener, cookie any) error {
	if ch == 0 || int(ch) >= len(e.channels) {
		return newStatusError(StatusBadParam, fmt.Errorf("shtp: Listen(%d): %w", ch, ErrBadChannel))
	}
	e.channels[ch].listener = cb
	e.channels[ch].cookie = cookie
	return nil
}

// Statistics returns a point-in-time snapshot of the endpoint's
// diagnostic counters.
func (e *Endpoint) Statistics() Statistics {
	return e.stats.snapshot()
}

// ResetStatistics zeroes all diagnostic counters.
func (e *Endpoint) ResetStatistics() {
	e.stats.reset()
}

func (e *Endpoint) emit(kind EventKind) {
	if e.eventCallback != nil {
		e.eventCallback(e.eventCookie, kind)
	}
}
