// Package quichal adapts a QUIC stream into the shtp/hal.HAL contract,
// for SHTP endpoints that sit atop a QUIC connection instead of a
// physical SPI/I2C/UART bus (e.g. a simulated sensor hub, or a hub
// bridged over a network for development). Grounded on the teacher's
// pkg/channel/quic_channel.go: the self-signed TLS config generator and
// listen/dial shape are reused directly; the read/write loops are
// replaced with streamhal's framed, non-blocking pump since SHTP's HAL
// has no per-call context or deadlines.
package quichal

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/shtp-go/shtp/hal/streamhal"
)

// HAL is a streamhal.HAL bound to a QUIC stream, plus the connection
// and listener (if any) it must release on Close.
type HAL struct {
	*streamhal.HAL
	conn     quic.Connection
	listener *quic.Listener
}

// Close releases the stream, connection, and (if this side listened)
// the listener, in addition to stopping the streamhal pumps.
func (h *HAL) Close() error {
	err := h.HAL.Close()
	if h.conn != nil {
		h.conn.CloseWithError(0, "shtp: hal closed")
	}
	if h.listener != nil {
		h.listener.Close()
	}
	return err
}

// Dial opens a QUIC connection to address and a single stream on it,
// returning a HAL over that stream. tlsConfig may be nil, in which case
// a self-signed config with InsecureSkipVerify is generated (suitable
// for development/test, not production).
func Dial(ctx context.Context, address string, tlsConfig *tls.Config, opts ...streamhal.Option) (*HAL, error) {
	if tlsConfig == nil {
		var err error
		tlsConfig, err = generateTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("quichal: generate tls config: %w", err)
		}
	}

	udpAddr, err := net.ResolveUDPAddr("udp", "0.0.0.0:0")
	if err != nil {
		return nil, fmt.Errorf("quichal: resolve local addr: %w", err)
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("quichal: open udp socket: %w", err)
	}

	remoteAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("quichal: resolve remote addr %s: %w", address, err)
	}

	conn, err := quic.Dial(ctx, udpConn, remoteAddr, tlsConfig, nil)
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("quichal: dial %s: %w", address, err)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "shtp: open stream failed")
		return nil, fmt.Errorf("quichal: open stream: %w", err)
	}

	return &HAL{HAL: streamhal.New(stream, opts...), conn: conn}, nil
}

// Listen listens on address and returns a HAL bound to the first
// accepted connection's first stream. tlsConfig may be nil as in Dial.
func Listen(ctx context.Context, address string, tlsConfig *tls.Config, opts ...streamhal.Option) (*HAL, error) {
	if tlsConfig == nil {
		var err error
		tlsConfig, err = generateTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("quichal: generate tls config: %w", err)
		}
	}

	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("quichal: resolve addr %s: %w", address, err)
	}
	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("quichal: listen on %s: %w", address, err)
	}

	listener, err := quic.Listen(udpConn, tlsConfig, nil)
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("quichal: quic listen: %w", err)
	}

	conn, err := listener.Accept(ctx)
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("quichal: accept: %w", err)
	}

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		conn.CloseWithError(0, "shtp: accept stream failed")
		listener.Close()
		return nil, fmt.Errorf("quichal: accept stream: %w", err)
	}

	return &HAL{HAL: streamhal.New(stream, opts...), conn: conn, listener: listener}, nil
}

// generateTLSConfig produces a throwaway self-signed certificate,
// suitable only for the loopback/demo use case this package targets.
func generateTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates:       []tls.Certificate{tlsCert},
		NextProtos:         []string{"shtp-quic"},
		InsecureSkipVerify: true,
	}, nil
}
