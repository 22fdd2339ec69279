package keypad

// Decoder resolves the pressed key and turns held keys into single events.
// It is not safe for concurrent use; the input loop owns it.
type Decoder struct {
	src  Source
	comp Compensation
	last Key
	buf  []Key
}

// NewDecoder creates a decoder. A nil compensation table disables remapping.
func NewDecoder(src Source, comp Compensation) *Decoder {
	return &Decoder{
		src:  src,
		comp: comp,
		buf:  make([]Key, 0, Rows*Cols),
	}
}

// Scan returns the currently pressed key or None.
func (d *Decoder) Scan() Key {
	d.buf = d.src.Candidates(d.buf[:0])
	return d.comp.Resolve(d.buf)
}

// PollEdge returns a key once per physical press. Holding a key reports
// None until a scan without any key re-arms the decoder.
func (d *Decoder) PollEdge() Key {
	key := d.Scan()
	if key == d.last {
		return None
	}
	d.last = key
	return key
}
