package grid

import (
	"encoding/binary"
	"hash/fnv"
	"slices"
)

// ZoneID identifies a zone: a maximal set of frontier cells sharing an
// identical constraint signature. Zero means "no zone".
type ZoneID uint64

// ZoneSignature hashes a constraint set (the coordinates of the active
// cells constraining a frontier cell) into a stable id. The input is
// not required to be sorted.
func ZoneSignature(constraints []Point) ZoneID {
	if len(constraints) == 0 {
		return 0
	}
	sorted := slices.Clone(constraints)
	SortPoints(sorted)

	h := fnv.New64a()
	var buf [16]byte
	for _, p := range sorted {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(int64(p.X)))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(p.Y)))
		h.Write(buf[:])
	}
	id := ZoneID(h.Sum64())
	if id == 0 {
		id = 1
	}
	return id
}

// ZoneRecord groups the frontier cells sharing one constraint
// signature. Relevance is stored denormalized on the member cells and
// kept homogeneous across the zone by the commit path.
type ZoneRecord struct {
	ID          ZoneID
	Constraints []Point // sorted coordinates of the constraining actives
	members     pointSet
}

// Members returns the zone's frontier coordinates, sorted.
func (z *ZoneRecord) Members() []Point {
	return z.members.sorted()
}

func (z *ZoneRecord) Size() int { return len(z.members) }
