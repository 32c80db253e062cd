package led

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// DefaultSPIFreq is the WS281x bit rate.
const DefaultSPIFreq = 800 * physic.KiloHertz

// SPI drives a WS281x strip directly from an SPI port using NRZ encoding.
// The frame delimiter is a serial-controller concept and is dropped here.
type SPI struct {
	port spi.PortCloser
	dev  *nrzled.Dev
}

// OpenSPI initializes the host drivers and opens the named SPI port ("" for
// the first one available).
func OpenSPI(name string, pixels int, freq physic.Frequency) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	s, err := NewSPI(p, pixels, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI wraps an already opened port.
func NewSPI(p spi.PortCloser, pixels int, freq physic.Frequency) (*SPI, error) {
	if pixels <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", pixels)
	}
	if freq == 0 {
		freq = DefaultSPIFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: pixels, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &SPI{port: p, dev: d}, nil
}

func (s *SPI) Write(frame []byte) error {
	if n := len(frame); n > 0 && frame[n-1] == Delimiter {
		frame = frame[:n-1]
	}
	if _, err := s.dev.Write(frame); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *SPI) Close() error {
	return errors.Join(s.dev.Halt(), s.port.Close())
}

func (s *SPI) String() string { return s.dev.String() }
