package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestVCDWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	v, err := MakeVCDWriter(&buf, 100000000, []VCDSignal{
		{Name: "host_line", Width: 1},
		{Name: "host_rx_byte", Width: 8},
	})
	if err != nil {
		t.Fatal(err)
	}

	steps := []func() error{
		func() error { return v.ChangeBit(0, "host_line", true) },
		func() error { return v.ChangeBit(5, "host_line", true) }, // suppressed
		func() error { return v.ChangeBit(8, "host_line", false) },
		func() error { return v.ChangeByte(8, "host_rx_byte", 0x41) },
		func() error { return v.ChangeBit(900, "host_line", true) },
	}
	for i, s := range steps {
		if err := s(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if err := v.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"$timescale 10ns $end",
		"$var wire 1 ! host_line $end",
		"$var wire 8 \" host_rx_byte $end",
		"$enddefinitions $end",
		"#0\n1!",
		"#8\n0!\nb01000001 \"",
		"#900\n1!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "#5") {
		t.Errorf("suppressed change must not emit a timestamp:\n%s", out)
	}
}

func TestVCDWriterRejectsBadConfigs(t *testing.T) {
	var buf bytes.Buffer
	if _, err := MakeVCDWriter(&buf, 0, []VCDSignal{{Name: "x", Width: 1}}); err == nil {
		t.Errorf("expected an error for a zero clock")
	}
	if _, err := MakeVCDWriter(&buf, 3, []VCDSignal{{Name: "x", Width: 1}}); err == nil {
		t.Errorf("expected an error for a non-whole-nanosecond tick")
	}
	if _, err := MakeVCDWriter(&buf, 100000000, nil); err == nil {
		t.Errorf("expected an error for an empty signal list")
	}
	if _, err := MakeVCDWriter(&buf, 100000000, []VCDSignal{{Name: "x", Width: 3}}); err == nil {
		t.Errorf("expected an error for an unsupported width")
	}
	if _, err := MakeVCDWriter(&buf, 100000000, []VCDSignal{{Name: "x", Width: 1}, {Name: "x", Width: 1}}); err == nil {
		t.Errorf("expected an error for a duplicate signal")
	}

	v, err := MakeVCDWriter(&buf, 100000000, []VCDSignal{{Name: "x", Width: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if err := v.ChangeBit(0, "y", true); err == nil {
		t.Errorf("expected an error for an undeclared signal")
	}
	if err := v.ChangeByte(0, "x", 1); err == nil {
		t.Errorf("expected an error for a width mismatch")
	}
}
