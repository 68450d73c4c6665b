package stablemap

import "github.com/cockroachdb/redact"

type Stats struct {
	Len         int
	IndexLen    int
	FreeIndices int

	// Key index figures.
	Capacity          int
	EffectiveCapacity int
	Tombstones        int
}

func (sm *StableMap[K, V]) Stats() Stats {
	return Stats{
		Len:               sm.size,
		IndexLen:          sm.slots.len(),
		FreeIndices:       sm.free.len(),
		Capacity:          int(sm.index.capacity),
		EffectiveCapacity: int(sm.index.capacityEffective),
		Tombstones:        int(sm.index.tombstones),
	}
}

// SafeFormat implements the redact.SafeFormatter interface.
func (s Stats) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("len=%d index-len=%d free=%d capacity=%d effective-capacity=%d tombstones=%d",
		redact.SafeInt(s.Len), redact.SafeInt(s.IndexLen), redact.SafeInt(s.FreeIndices),
		redact.SafeInt(s.Capacity), redact.SafeInt(s.EffectiveCapacity), redact.SafeInt(s.Tombstones))
}

func (s Stats) String() string {
	return redact.StringWithoutMarkers(s)
}
