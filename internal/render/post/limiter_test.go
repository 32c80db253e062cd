package post

import (
	"bytes"
	"testing"
)

func TestBudgetClamp(t *testing.T) {
	// 10 LEDs all white: 10 * 60 = 600 mA
	buf := bytes.Repeat([]byte{255}, 30)
	l := Limiter{ChannelMA: 20, BudgetMA: 300, WhiteCap: 3, Knee: 0.9}
	l.Apply(buf)
	if cur := l.EstimateMA(buf); cur > 300.1 {
		t.Fatalf("expected <= 300mA after limit, got %.2f mA", cur)
	}
}

func TestWhiteCap(t *testing.T) {
	buf := []byte{255, 255, 255}
	Limiter{WhiteCap: 1.5}.Apply(buf)
	sum := int(buf[0]) + int(buf[1]) + int(buf[2])
	if sum > 383 {
		t.Fatalf("expected channel sum <= 1.5*255, got %d", sum)
	}
	if buf[0] != buf[1] || buf[1] != buf[2] {
		t.Fatalf("white cap must keep hue: %v", buf)
	}
}

func TestUnderKneeUntouched(t *testing.T) {
	buf := []byte{100, 0, 0}
	l := Limiter{BudgetMA: 1000}
	l.Apply(buf)
	if buf[0] != 100 {
		t.Fatalf("frame under knee changed: %v", buf)
	}
}

func TestZeroValueDisabled(t *testing.T) {
	var l Limiter
	if l.Enabled() {
		t.Fatal("zero limiter should be disabled")
	}
	buf := []byte{255, 255, 255}
	l.Apply(buf)
	if buf[0] != 255 {
		t.Fatal("zero limiter changed the frame")
	}
}
