package uart

import "testing"

func makeTestBridge(t *testing.T) *Bridge {
	t.Helper()
	b, err := MakeBridge(validConfig())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBridgeBypassRoutesDirectPath(t *testing.T) {
	b := makeTestBridge(t)

	// keep the serial side busy the whole time, to prove its decoded bytes
	// never leak into the consumer while bypassed
	for i := 0; i < 40000; i++ {
		in := BridgeInputs{
			Bypass:    true,
			HostValid: i%5000 == 0,
			HostData:  0xee,
		}
		if i%3 == 0 {
			in.DirectValid = true
			in.DirectData = byte(i)
		}
		out := b.Tick(in)
		if out.ConsumerInValid != in.DirectValid || (in.DirectValid && out.ConsumerInData != in.DirectData) {
			t.Fatalf("tick %d: bypassed consumer input must track the direct pair exactly", i)
		}
	}
}

func TestBridgeMirrorsConsumerOutputInBothModes(t *testing.T) {
	b := makeTestBridge(t)
	for _, bypass := range []bool{true, false} {
		for i := 0; i < 100; i++ {
			in := BridgeInputs{
				Bypass:        bypass,
				ConsumerValid: i%2 == 0,
				ConsumerData:  byte(0x30 + i),
			}
			out := b.Tick(in)
			if out.DirectOutValid != in.ConsumerValid {
				t.Fatalf("bypass=%v tick %d: direct-out valid not mirrored", bypass, i)
			}
			if in.ConsumerValid && out.DirectOutData != in.ConsumerData {
				t.Fatalf("bypass=%v tick %d: direct-out data not mirrored", bypass, i)
			}
		}
	}
}

func TestBridgeSerialRoundTrip(t *testing.T) {
	b := makeTestBridge(t)

	payload := []byte{0x41, 0x00, 0xff, 0x5a, 0x81}
	var toConsumer []byte
	var returned []byte

	// a one-tick echo consumer: whatever the bridge feeds it comes back on
	// the next tick's consumer output
	echoValid := false
	var echoData byte

	next := 0
	budget := 64 * 12 * 868 // generous: each byte needs two frame times
	for i := 0; i < budget && len(returned) < len(payload); i++ {
		in := BridgeInputs{
			Bypass:        false,
			ConsumerValid: echoValid,
			ConsumerData:  echoData,
		}
		if next < len(payload) && !b.Host.Tx.AlmostFull() {
			in.HostValid = true
			in.HostData = payload[next]
			next++
		}
		out := b.Tick(in)

		echoValid = out.ConsumerInValid
		echoData = out.ConsumerInData
		if out.ConsumerInValid {
			toConsumer = append(toConsumer, out.ConsumerInData)
		}
		if out.HostRecvValid {
			returned = append(returned, out.HostRecvData)
		}
	}

	if len(toConsumer) != len(payload) {
		t.Fatalf("consumer saw %d of %d bytes: %v", len(toConsumer), len(payload), toConsumer)
	}
	if len(returned) != len(payload) {
		t.Fatalf("host got back %d of %d bytes: %v", len(returned), len(payload), returned)
	}
	for i := range payload {
		if toConsumer[i] != payload[i] {
			t.Errorf("consumer byte %d: got 0x%02x, want 0x%02x", i, toConsumer[i], payload[i])
		}
		if returned[i] != payload[i] {
			t.Errorf("returned byte %d: got 0x%02x, want 0x%02x", i, returned[i], payload[i])
		}
	}
}

func TestBridgeResetPropagatesEverywhere(t *testing.T) {
	b := makeTestBridge(t)
	b.Tick(BridgeInputs{HostValid: true, HostData: 0x7f})
	for i := 0; i < 2000; i++ {
		b.Tick(BridgeInputs{})
	}
	if b.Device.Rx.State() == StateIdle {
		t.Fatalf("setup: device receiver should be mid-frame")
	}
	b.Tick(BridgeInputs{Reset: true})
	if b.Device.Rx.State() != StateIdle || b.Host.Rx.State() != StateIdle {
		t.Errorf("reset must force both receivers to IDLE")
	}
	if !b.Host.Tx.LineOut() || !b.Device.Tx.LineOut() {
		t.Errorf("reset must idle both lines")
	}
}
