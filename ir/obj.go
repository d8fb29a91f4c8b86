package ir

import "fmt"

// Obj is an abstract heap object: an equivalence class of runtime
// allocations. The analyses only rely on identity and the type projection;
// the concrete model (allocation sites, taint objects, ...) is opaque.
type Obj interface {
	Type() *Type
	fmt.Stringer
}
