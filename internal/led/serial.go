package led

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaud matches the matrix controller firmware.
const DefaultBaud = 115200

// OpenSerial opens a USB/UART serial device (8N1) as a Stream link.
func OpenSerial(device string, baud int) (*Stream, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return NewStream(port), nil
}

// SerialPorts lists the serial devices present on this host.
func SerialPorts() ([]string, error) { return serial.GetPortsList() }
