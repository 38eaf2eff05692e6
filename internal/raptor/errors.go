package raptor

import "fmt"

// ErrUnknownStop reports a lookup against the Network Index that
// missed. The core has no recovery policy for this -- it is surfaced
// to the caller unchanged.
type ErrUnknownStop[ID comparable] struct {
	Stop ID
}

func (e ErrUnknownStop[ID]) Error() string {
	return fmt.Sprintf("raptor: unknown stop %v", e.Stop)
}
