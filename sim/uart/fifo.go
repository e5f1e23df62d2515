package uart

import "log"

// byteFIFO is the bounded ring buffer behind the transmitter. It is owned
// exclusively by its Transmitter; producers never touch the indices, they
// only request admission through the transmitter's per-tick inputs.
type byteFIFO struct {
	buf        []byte
	readIndex  int
	writeIndex int
	count      int
}

func makeByteFIFO(capacity int) byteFIFO {
	if capacity < 1 {
		panic("fifo capacity must be at least 1")
	}
	return byteFIFO{buf: make([]byte, capacity)}
}

func (f *byteFIFO) checkInvariants() {
	if f.count < 0 || f.count > len(f.buf) {
		log.Panicf("invalid fifo count=%d capacity=%d", f.count, len(f.buf))
	}
	if f.readIndex < 0 || f.readIndex >= len(f.buf) || f.writeIndex < 0 || f.writeIndex >= len(f.buf) {
		log.Panicf("invalid fifo indices read=%d write=%d capacity=%d", f.readIndex, f.writeIndex, len(f.buf))
	}
}

func (f *byteFIFO) capacity() int {
	return len(f.buf)
}

func (f *byteFIFO) full() bool {
	return f.count == len(f.buf)
}

// push appends a byte. The caller must have made room first; pushing into a
// full buffer is an invariant violation, not a policy decision.
func (f *byteFIFO) push(b byte) {
	if f.full() {
		panic("push into full fifo")
	}
	f.buf[f.writeIndex] = b
	f.writeIndex = (f.writeIndex + 1) % len(f.buf)
	f.count++
	f.checkInvariants()
}

// pop removes and returns the oldest byte.
func (f *byteFIFO) pop() byte {
	if f.count == 0 {
		panic("pop from empty fifo")
	}
	b := f.buf[f.readIndex]
	f.readIndex = (f.readIndex + 1) % len(f.buf)
	f.count--
	f.checkInvariants()
	return b
}

// evictOldest advances the read index past the oldest unread byte, making
// room for a new write under the drop-oldest overflow policy.
func (f *byteFIFO) evictOldest() {
	if f.count == 0 {
		panic("evict from empty fifo")
	}
	f.readIndex = (f.readIndex + 1) % len(f.buf)
	f.count--
	f.checkInvariants()
}
