package synccache

import "strings"

const keySeparator = ":"

// Key is a structured cache key: an entity kind plus the parameters that select
// a variant of it, e.g. Key{Kind: "products", Params: []string{"phones"}}.
// Call sites namespace their entries through Kind so features never collide.
type Key struct {
	Kind   string
	Params []string
}

// NewKey builds a Key from a kind and its parameters.
func NewKey(kind string, params ...string) Key {
	return Key{Kind: kind, Params: params}
}

// String renders the key as kind[:param...]. Empty params are kept positionally.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Kind
	}
	var b strings.Builder
	b.WriteString(k.Kind)
	for _, p := range k.Params {
		b.WriteString(keySeparator)
		b.WriteString(p)
	}
	return b.String()
}
