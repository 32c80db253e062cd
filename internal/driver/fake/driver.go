// Package fake is an LED link that prints a one-line summary of every
// frame instead of driving hardware. Useful for headless runs.
package fake

import (
	"fmt"
	"io"
	"os"
)

// Driver prints frame number, average color and the first pixel.
type Driver struct {
	Out   io.Writer
	Count int
	// Every prints only every nth frame when > 1.
	Every int
}

func (d *Driver) Write(frame []byte) error {
	d.Count++
	if d.Every > 1 && d.Count%d.Every != 1 {
		return nil
	}
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	px := frame[:len(frame)-len(frame)%3]
	var r, g, b float64
	for i := 0; i < len(px); i += 3 {
		r += float64(px[i])
		g += float64(px[i+1])
		b += float64(px[i+2])
	}
	n := float64(len(px) / 3)
	if n == 0 {
		_, err := fmt.Fprintf(out, "[frame %04d] empty\n", d.Count)
		return err
	}
	_, err := fmt.Fprintf(out, "[frame %04d] avg=(%.1f,%.1f,%.1f) first=(%d,%d,%d)\n",
		d.Count, r/n, g/n, b/n, px[0], px[1], px[2])
	return err
}

func (d *Driver) Close() error { return nil }
