package overlay

// mulberry32 is the PRNG driving blur trials. The algorithm is the
// widely-used mulberry32 generator: a 32-bit state advanced by the golden
// gamma constant with two xor-multiply finalization rounds. It is part of
// the stable output contract; byte-identical SVG across versions depends on
// this exact sequence.
type mulberry32 struct {
	state uint32
}

func newMulberry32(seed uint32) *mulberry32 {
	return &mulberry32{state: seed}
}

// Float64 returns the next uniform draw in [0, 1).
func (m *mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	z := m.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	z ^= z >> 14
	return float64(z) / 4294967296.0
}
