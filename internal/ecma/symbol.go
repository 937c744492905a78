package ecma

const symbolSize = 16

// Symbol is a symbol entity. It owns its description.
type Symbol struct {
	header
	description Value
}

func (s *Symbol) kind() Kind { return KindSymbol }

func (s *Symbol) preview(c *Context) string {
	if s.description.IsUndefined() {
		return "Symbol()"
	}
	return "Symbol(" + truncate(c.StringChars(s.description), previewRunes) + ")"
}

// NewSymbol creates a symbol. The description must be a string or undefined
// and is owned by the symbol from now on.
func (c *Context) NewSymbol(description Value) Value {
	assertf(description.IsString() || description.IsUndefined(), "symbol description %s is not a string", description)
	sym := &Symbol{description: description}
	return c.encode(c.allocEntity(symbolSize, sym), TypeSymbol)
}

// SymbolDescription returns the borrowed description of a symbol.
func (c *Context) SymbolDescription(v Value) Value {
	return entityOf[*Symbol](c, v, TypeSymbol).description
}
