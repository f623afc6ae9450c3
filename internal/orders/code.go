package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// NewCode builds a buyer-facing order code: <prefix><yymmdd>-<4 digit random>.
// The store keeps a unique index on it; a clash inside one day simply fails
// the insert and the checkout group retry draws a fresh code.
func NewCode(prefix string, now time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to the clock so checkout keeps working.
		n = big.NewInt(int64(now.UnixNano() % 10000))
	}
	return fmt.Sprintf("%s%s-%04d", prefix, now.Format("060102"), n.Int64())
}
