package shtp

import "github.com/shtp-go/shtp/internal/logger"

// MaxChannels is the default size of the channel table. Channel 0 is
// reserved; Listen refuses registration on it, matching the reference's
// SHTP_MAX_CHANS=8.
const MaxChannels = 8

// MaxPayloadIn is the default maximum size of a reassembled inbound
// payload.
const MaxPayloadIn = 256

// EndpointConfig holds the tunable parameters for Open. Grounded on the
// teacher's pkg/transport/config.go (TransportConfig/DefaultTransportConfig)
// and pkg/link/interface.go's DefaultLinkLayerConfig: a plain struct with
// a Default*() constructor, generalized with the functional-options form
// also seen in ardnew-softusb's constructor surface so callers can
// override just the fields they care about.
type EndpointConfig struct {
	// MaxChannels sizes the channel table. Must be >= 1.
	MaxChannels int

	// MaxPayloadIn bounds the size of a reassembled inbound payload;
	// larger declared payloads are dropped and counted as
	// RxTooLargePayloads.
	MaxPayloadIn int

	// Logger receives lifecycle and anomaly log lines. Defaults to the
	// package-level default logger if nil.
	Logger logger.Logger
}

// DefaultEndpointConfig returns the configuration Open uses when no
// options are supplied.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		MaxChannels:  MaxChannels,
		MaxPayloadIn: MaxPayloadIn,
		Logger:       logger.GetDefault(),
	}
}

// EndpointOption mutates an EndpointConfig during Open.
type EndpointOption func(*EndpointConfig)

// WithMaxChannels overrides the channel table size.
func WithMaxChannels(n int) EndpointOption {
	return func(c *EndpointConfig) {
		c.MaxChannels = n
	}
}

// WithMaxPayloadIn overrides the maximum reassembled inbound payload
// size.
func WithMaxPayloadIn(n int) EndpointOption {
	return func(c *EndpointConfig) {
		c.MaxPayloadIn = n
	}
}

// WithLogger overrides the logger used for lifecycle and anomaly
// messages.
func WithLogger(l logger.Logger) EndpointOption {
	return func(c *EndpointConfig) {
		c.Logger = l
	}
}
