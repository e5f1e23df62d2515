package uart

// Endpoint is one end of the virtual cable: a line sampler feeding a
// receiver, plus a transmitter driving the opposite direction.
type Endpoint struct {
	Sampler *LineSampler
	Rx      *Receiver
	Tx      *Transmitter
}

func MakeEndpoint(cfg Config) (*Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tx, err := MakeTransmitter(cfg)
	if err != nil {
		return nil, err
	}
	return &Endpoint{
		Sampler: MakeLineSampler(),
		Rx:      MakeReceiver(cfg.DeriveTiming()),
		Tx:      tx,
	}, nil
}

// Tick advances the endpoint by one clock tick in the documented order:
// sampler first, then receiver, then transmitter. rawLine is the level of
// the opposite transmitter's output as of the previous tick.
func (e *Endpoint) Tick(reset bool, rawLine bool, enqValid bool, enqData byte) {
	e.Sampler.Tick(reset, rawLine)
	e.Rx.Tick(reset, e.Sampler.Out())
	e.Tx.Tick(reset, enqValid, enqData)
}

// BridgeInputs are the signals an external driver applies for one tick.
type BridgeInputs struct {
	Reset  bool
	Bypass bool

	// Host-side payload, enqueued into the host transmitter.
	HostValid bool
	HostData  byte

	// Direct path payload, routed to the consumer while bypassed.
	DirectValid bool
	DirectData  byte

	// The downstream consumer's output for this tick.
	ConsumerValid bool
	ConsumerData  byte
}

// BridgeOutputs are the signals readable after one tick.
type BridgeOutputs struct {
	// Into the downstream consumer: the direct input while bypassed, the
	// device receiver's decoded stream otherwise.
	ConsumerInValid bool
	ConsumerInData  byte

	// The consumer's output mirrored back out, regardless of mode.
	DirectOutValid bool
	DirectOutData  byte

	// Host-side decoded bytes (the return leg of the serial round trip).
	HostRecvValid bool
	HostRecvData  byte

	HostFIFOEmpty      bool
	HostFIFOAlmostFull bool
	HostFIFOFull       bool

	DeviceFIFOEmpty      bool
	DeviceFIFOAlmostFull bool
	DeviceFIFOFull       bool
}

// Bridge cross-wires a host and a device codec pair through a virtual cable
// and multiplexes the downstream consumer between the direct (bypass) path
// and the serial round trip. The bridge has no clock of its own: Tick
// forwards the same tick to all four codec instances and then performs pure
// combinational selection.
type Bridge struct {
	Host   *Endpoint
	Device *Endpoint
}

func MakeBridge(cfg Config) (*Bridge, error) {
	host, err := MakeEndpoint(cfg)
	if err != nil {
		return nil, err
	}
	device, err := MakeEndpoint(cfg)
	if err != nil {
		return nil, err
	}
	return &Bridge{Host: host, Device: device}, nil
}

// Tick advances both endpoints and computes the mux outputs. Each endpoint's
// sampler observes the opposite transmitter's line as it stood at the end of
// the previous tick, which keeps the composition deterministic without a
// two-phase commit: both lines are captured before either endpoint advances.
func (b *Bridge) Tick(in BridgeInputs) BridgeOutputs {
	hostLine := b.Host.Tx.LineOut()
	deviceLine := b.Device.Tx.LineOut()

	// while bypassed the codecs keep running, but the consumer's output is
	// not fed back into the device transmitter
	deviceEnqValid := !in.Bypass && in.ConsumerValid

	b.Host.Tick(in.Reset, deviceLine, in.HostValid, in.HostData)
	b.Device.Tick(in.Reset, hostLine, deviceEnqValid, in.ConsumerData)

	var out BridgeOutputs
	if in.Bypass {
		out.ConsumerInValid = in.DirectValid
		out.ConsumerInData = in.DirectData
	} else {
		out.ConsumerInValid = b.Device.Rx.ByteValid()
		out.ConsumerInData = b.Device.Rx.Byte()
	}

	// permanent monitoring: the consumer's output is always mirrored onto
	// the direct-output pair, whichever mode supplied its input
	out.DirectOutValid = in.ConsumerValid
	out.DirectOutData = in.ConsumerData

	out.HostRecvValid = b.Host.Rx.ByteValid()
	out.HostRecvData = b.Host.Rx.Byte()

	out.HostFIFOEmpty = b.Host.Tx.Empty()
	out.HostFIFOAlmostFull = b.Host.Tx.AlmostFull()
	out.HostFIFOFull = b.Host.Tx.Full()
	out.DeviceFIFOEmpty = b.Device.Tx.Empty()
	out.DeviceFIFOAlmostFull = b.Device.Tx.AlmostFull()
	out.DeviceFIFOFull = b.Device.Tx.Full()

	return out
}
