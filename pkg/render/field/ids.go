package field

import "math"

// idStore holds one node index per grid point in the narrowest integer type
// that fits the node count.
type idStore interface {
	get(k int) int
	set(k, id int)
}

func newIDStore(nodes, size int) idStore {
	switch {
	case nodes <= math.MaxUint8+1:
		return ids8(make([]uint8, size))
	case nodes <= math.MaxUint16+1:
		return ids16(make([]uint16, size))
	default:
		return ids32(make([]uint32, size))
	}
}

type ids8 []uint8

func (s ids8) get(k int) int  { return int(s[k]) }
func (s ids8) set(k, id int) { s[k] = uint8(id) }

type ids16 []uint16

func (s ids16) get(k int) int  { return int(s[k]) }
func (s ids16) set(k, id int) { s[k] = uint16(id) }

type ids32 []uint32

func (s ids32) get(k int) int  { return int(s[k]) }
func (s ids32) set(k, id int) { s[k] = uint32(id) }
