package fountain

import (
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// winnerIndex picks the winning participant slot from a hash of the
// resolution time, the round id, and the last toss submitter.
//
// This is deliberately not cryptographically secure randomness: whoever times
// the resolving call can predict (and to a degree steer) the outcome. The
// original games were tuned with that property, so it is preserved and
// documented rather than silently replaced with a secure source.
func winnerIndex(now time.Time, roundID uint64, lastCaller string, participants int) int {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(now.UnixNano()))
	binary.BigEndian.PutUint64(buf[8:16], roundID)

	h := sha256.New()
	h.Write(buf[:])
	h.Write([]byte(lastCaller))
	sum := h.Sum(nil)

	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(participants))
}
