package pool

import "fmt"

// Handle identifies one live worker process. It is minted by Start and is
// treated as opaque by every other component; only the pool that issued it
// can terminate it.
type Handle struct {
	// Key is the worker id the handle was started for.
	Key string
	// Token is unique per start. Two successive workers for the same key
	// carry different tokens, which is what lets a replace tell the old
	// worker from the new one.
	Token string
}

// Zero reports whether h was never issued by a pool.
func (h Handle) Zero() bool {
	return h.Token == ""
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	if h.Zero() {
		return "handle(zero)"
	}
	short := h.Token
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("handle(%s/%s)", h.Key, short)
}
