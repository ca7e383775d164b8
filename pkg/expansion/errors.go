package expansion

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation matches every *InvalidOperationError via errors.Is.
var ErrInvalidOperation = errors.New("invalid expansion operation")

// InvalidOperationError reports an expand, collapse or cancel call that is
// illegal in the section's current state. It is always returned to the caller.
type InvalidOperationError struct {
	Op      string       // "expand", "collapse", "cancel_download"
	Section int          // Section the call targeted
	State   SectionState // State at the time of the call
	Reason  string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("%s section %d: %s (state %s)", e.Op, e.Section, e.Reason, e.State)
}

func (e *InvalidOperationError) Is(target error) bool {
	return target == ErrInvalidOperation
}

// ProviderContractError reports a DataProvider that contradicts what it said
// earlier. The controller panics with it: there is no sane way to keep the
// host's row bookkeeping consistent afterwards.
type ProviderContractError struct {
	Section int
	Detail  string
}

func (e *ProviderContractError) Error() string {
	return fmt.Sprintf("data provider contract violated for section %d: %s", e.Section, e.Detail)
}
