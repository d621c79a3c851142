package assert

import "github.com/oomph-ac/netmove/oerror"

// IsTrue panics with the message passed if ok is false. It guards invariants that only a
// programming error can break.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(oerror.New(message, args...))
	}
}
