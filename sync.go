package rzframe

// Sync is the outcome of the preamble search that starts every ReadFrame.
//
// The letters name, per preamble byte, whether it matched (T), was missing
// (F) or was never examined (0). Values keep the bit layout of the wire
// protocol's status codes: successes live in the low two bits, failures in
// bits 2..4, and the two ranges never overlap.
type Sync uint8

const (
	SyncTTTT Sync = 0b00000001 // all four preamble bytes matched
	SyncFTTT Sync = 0b00000010 // first byte missing, bytes 2..4 matched
	SyncFFTT Sync = 0b00000011 // bytes 1..2 missing, bytes 3..4 matched

	MissTTTF Sync = 0b00000100
	MissTTF0 Sync = 0b00001000
	MissTF00 Sync = 0b00001100
	MissFTTF Sync = 0b00010000
	MissFTF0 Sync = 0b00010100
	MissFFTF Sync = 0b00011000
	MissFFF0 Sync = 0b00011100 // no preamble in this window
)

const (
	syncOKMask   Sync = 0b00000011
	syncMissMask Sync = 0b00011100
)

// OK reports whether the preamble was accepted.
func (s Sync) OK() bool { return s&syncOKMask != 0 }

// Missed reports whether the preamble search failed.
func (s Sync) Missed() bool { return s&syncMissMask != 0 }

func (s Sync) String() string {
	switch s {
	case SyncTTTT:
		return "SYNC_TTTT"
	case SyncFTTT:
		return "SYNC_FTTT"
	case SyncFFTT:
		return "SYNC_FFTT"
	case MissTTTF:
		return "MISS_TTTF"
	case MissTTF0:
		return "MISS_TTF0"
	case MissTF00:
		return "MISS_TF00"
	case MissFTTF:
		return "MISS_FTTF"
	case MissFTF0:
		return "MISS_FTF0"
	case MissFFTF:
		return "MISS_FFTF"
	case MissFFF0:
		return "MISS_FFF0"
	}
	return "SYNC_NONE"
}

var (
	syncHit = [3]Sync{SyncTTTT, SyncFTTT, SyncFFTT}

	// syncMiss[anchor][k] is the result when a hypothesis anchored at
	// preamble byte anchor fails at preamble byte k.
	syncMiss = [3][PreambleLen]Sync{
		{0, MissTF00, MissTTF0, MissTTTF},
		{0, 0, MissFTF0, MissFTTF},
		{0, 0, 0, MissFFTF},
	}
)

// readSync runs the three-hypothesis preamble search.
//
// Hypothesis a reads a fresh byte and compares it with preamble byte a; on a
// match the remaining preamble bytes are checked in order and the first
// mismatch ends the search. When the anchoring byte does not match, the next
// hypothesis reads another fresh byte. Nothing is ever re-examined, so at most
// four bytes are consumed per call and a partial marker inside payload data
// (e.g. "2 1" accepted as SyncFFTT) can be taken for a frame start.
func readSync(r *DataReader) (Sync, error) {
	for anchor := 0; anchor < len(syncHit); anchor++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != Preamble[anchor] {
			continue
		}
		for k := anchor + 1; k < PreambleLen; k++ {
			if b, err = r.ReadByte(); err != nil {
				return 0, err
			}
			if b != Preamble[k] {
				return syncMiss[anchor][k], nil
			}
		}
		return syncHit[anchor], nil
	}
	return MissFFF0, nil
}
