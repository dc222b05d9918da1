package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// New returns a prefixed, roughly time-ordered identifier with a random
// suffix. The timestamp is base-36 millis to keep ids short enough for
// receipts and log lines.
func New(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s_%s", prefix, ts)
	}
	return fmt.Sprintf("%s_%s_%s", prefix, ts, hex.EncodeToString(buf))
}
