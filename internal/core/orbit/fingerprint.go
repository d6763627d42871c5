package orbit

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes every body parameter of the layout. Two layouts with the
// same fingerprint animate identically.
func (l Layout) Fingerprint() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 64)
	for _, b := range l.Bodies {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(b.ID))
		buf = append(buf, byte(b.Kind))
		for _, f := range [...]float64{b.Radius, b.RadiusX, b.RadiusZ, b.InitialAngle, b.AngularSpeed, b.Elevation, b.Size} {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(b.Color))
		if b.IsTarget {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}

// SeedFromPhrase turns a human-friendly seed such as "sunday-run" into a
// generator seed.
func SeedFromPhrase(phrase string) uint64 {
	return xxhash.Sum64String(phrase)
}
