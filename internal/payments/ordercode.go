package payments

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// fineSuffixModulus fixes the traffic-fine suffix at 8 decimal digits: the
// fine order code is the booking id concatenated with the last 8 digits of a
// unix-millisecond timestamp. The decode path depends on this exact width.
const fineSuffixModulus = 100_000_000

// orderCodeMax keeps generated codes inside the provider's safe-integer
// range for JSON numbers.
const orderCodeMax = int64(1) << 52

// GenerateOrderCode returns an opaque positive integer, unique per booking
// generation event, used to correlate a checkout session with a booking.
func GenerateOrderCode() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(orderCodeMax-1))
	if err != nil {
		return 0, fmt.Errorf("generate order code: %w", err)
	}
	return n.Int64() + 1, nil
}

// EncodeFineOrderCode builds a traffic-fine order code from a booking id and
// the moment the link was requested.
func EncodeFineOrderCode(bookingID int64, at time.Time) int64 {
	return bookingID*fineSuffixModulus + at.UnixMilli()%fineSuffixModulus
}

// DecodeFineOrderCode strips the timestamp suffix and returns the booking id
// prefix. Codes too short to carry a suffix decode to ok=false.
func DecodeFineOrderCode(orderCode int64) (bookingID int64, ok bool) {
	if orderCode < fineSuffixModulus {
		return 0, false
	}
	return orderCode / fineSuffixModulus, true
}
