package pta

import (
	"fmt"
	"strings"

	"github.com/kvistgaard/sift/ir"
)

// Context is an abstract prefix of the call stack. Implementations must be
// comparable (contexts are used as interning keys); selectors guarantee this
// by interning the contexts they produce.
type Context interface {
	fmt.Stringer
}

type emptyContext struct{}

func (emptyContext) String() string { return "[]" }

// ContextSelector produces contexts for methods and heap objects. The solver
// is parametric in the selector; context-insensitive analysis is the
// degenerate selector that always answers the empty context.
type ContextSelector interface {
	EmptyContext() Context
	// SelectHeapContext picks the heap context for an object allocated
	// while analyzing csMethod.
	SelectHeapContext(csMethod *CSMethod, obj ir.Obj) Context
	// SelectContext picks the callee context for a static call.
	SelectContext(csCallSite *CSCallSite, callee *ir.Method) Context
	// SelectContextObj picks the callee context for an instance call
	// dispatched on recv.
	SelectContextObj(csCallSite *CSCallSite, recv *CSObj, callee *ir.Method) Context
}

// ContextInsensitive collapses every context to the empty one.
type ContextInsensitive struct{}

func (ContextInsensitive) EmptyContext() Context { return emptyContext{} }

func (ContextInsensitive) SelectHeapContext(*CSMethod, ir.Obj) Context { return emptyContext{} }

func (ContextInsensitive) SelectContext(*CSCallSite, *ir.Method) Context { return emptyContext{} }

func (ContextInsensitive) SelectContextObj(*CSCallSite, *CSObj, *ir.Method) Context {
	return emptyContext{}
}

// callString is an interned k-limited call-site string.
type callString struct {
	sites []*ir.Invoke
	key   string
}

func (c *callString) String() string {
	parts := make([]string, len(c.sites))
	for i, s := range c.sites {
		parts[i] = fmt.Sprintf("%v/%d", s.Container(), s.Index())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// KCallSite is k-limiting call-site sensitivity: method contexts keep the
// last K call sites, heap contexts the last K-1.
type KCallSite struct {
	K     int
	table map[string]*callString
}

func NewKCallSite(k int) *KCallSite {
	return &KCallSite{K: k, table: make(map[string]*callString)}
}

func (s *KCallSite) intern(sites []*ir.Invoke) Context {
	if len(sites) == 0 {
		return emptyContext{}
	}

	var b strings.Builder
	for _, site := range sites {
		fmt.Fprintf(&b, "%v/%d;", site.Container(), site.Index())
	}
	key := b.String()

	if c, ok := s.table[key]; ok {
		return c
	}
	c := &callString{sites: sites, key: key}
	s.table[key] = c
	return c
}

func sitesOf(c Context) []*ir.Invoke {
	if cs, ok := c.(*callString); ok {
		return cs.sites
	}
	return nil
}

// append the call site and keep the last k entries.
func (s *KCallSite) push(c Context, site *ir.Invoke, k int) Context {
	sites := append(append([]*ir.Invoke(nil), sitesOf(c)...), site)
	if len(sites) > k {
		sites = sites[len(sites)-k:]
	}
	return s.intern(sites)
}

func (s *KCallSite) truncate(c Context, k int) Context {
	sites := sitesOf(c)
	if len(sites) <= k {
		if len(sites) == 0 {
			return emptyContext{}
		}
		return c
	}
	return s.intern(sites[len(sites)-k:])
}

func (s *KCallSite) EmptyContext() Context { return emptyContext{} }

func (s *KCallSite) SelectHeapContext(csMethod *CSMethod, obj ir.Obj) Context {
	return s.truncate(csMethod.Ctx, s.K-1)
}

func (s *KCallSite) SelectContext(cs *CSCallSite, callee *ir.Method) Context {
	return s.push(cs.Ctx, cs.Site, s.K)
}

func (s *KCallSite) SelectContextObj(cs *CSCallSite, recv *CSObj, callee *ir.Method) Context {
	return s.push(cs.Ctx, cs.Site, s.K)
}
