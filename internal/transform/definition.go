// Package transform implements the transformation DSL: a registry of
// operation definitions, matching of parsed pipeline expressions against it,
// and the transformations themselves.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/recast-io/recast/internal/funcsig"
	"github.com/recast-io/recast/internal/value"
)

var ErrUnknownTransform = errors.New("unknown transformation")

// Arg describes one argument of a transformation definition.
type Arg struct {
	name        string
	required    bool
	defaultVal  *value.Value
	description string
}

// NewArg returns a required argument with the given name.
func NewArg(name string) *Arg {
	return &Arg{name: name, required: true}
}

// Required marks the argument required or optional.
func (a *Arg) Required(yes bool) *Arg {
	a.required = yes
	return a
}

// WithDescription sets the argument description.
func (a *Arg) WithDescription(description string) *Arg {
	a.description = description
	return a
}

// WithDefault sets a default value and makes the argument optional.
func (a *Arg) WithDefault(v value.Value) *Arg {
	a.defaultVal = &v
	a.required = false
	return a
}

// Name returns the argument name.
func (a *Arg) Name() string { return a.name }

// IsRequired reports whether the argument must be supplied.
func (a *Arg) IsRequired() bool { return a.required }

// Description returns the argument description.
func (a *Arg) Description() string { return a.description }

// Default returns the default value, if any.
func (a *Arg) Default() (value.Value, bool) {
	if a.defaultVal == nil {
		return value.Value{}, false
	}
	return *a.defaultVal, true
}

// String renders the argument for usage listings.
func (a *Arg) String() string {
	if a.defaultVal != nil {
		return a.name + "=" + a.defaultVal.String()
	}
	return a.name
}

// Definition describes one transformation: its name, aliases and arguments.
type Definition struct {
	name        string
	aliases     []string
	description string
	args        []*Arg
}

// NewDefinition returns a definition with the given name.
func NewDefinition(name string) *Definition {
	return &Definition{name: name}
}

// AddAlias registers an alias for the definition.
func (d *Definition) AddAlias(alias string) *Definition {
	for _, a := range d.aliases {
		if a == alias {
			return d
		}
	}
	d.aliases = append(d.aliases, alias)
	return d
}

// AddAliases registers multiple aliases.
func (d *Definition) AddAliases(aliases ...string) *Definition {
	for _, a := range aliases {
		d.AddAlias(a)
	}
	return d
}

// WithDescription sets the definition description.
func (d *Definition) WithDescription(description string) *Definition {
	d.description = description
	return d
}

// AddArg registers an argument. Arguments keep a canonical order that is
// also the positional consumption order: required first, then optional
// without default, then optional with default.
func (d *Definition) AddArg(a *Arg) *Definition {
	d.args = append(d.args, a)
	sort.SliceStable(d.args, func(i, j int) bool {
		return argRank(d.args[i]) < argRank(d.args[j])
	})
	return d
}

// AddArgs registers multiple arguments.
func (d *Definition) AddArgs(args ...*Arg) *Definition {
	for _, a := range args {
		d.AddArg(a)
	}
	return d
}

func argRank(a *Arg) int {
	switch {
	case a.required:
		return 0
	case a.defaultVal == nil:
		return 1
	}
	return 2
}

// Name returns the definition name.
func (d *Definition) Name() string { return d.name }

// Aliases returns the registered aliases.
func (d *Definition) Aliases() []string { return d.aliases }

// Description returns the definition description.
func (d *Definition) Description() string { return d.description }

// Args returns the arguments in canonical order.
func (d *Definition) Args() []*Arg { return d.args }

// String renders the signature for usage listings, with optional arguments
// bracketed.
func (d *Definition) String() string {
	var b strings.Builder
	b.WriteString(d.name)
	b.WriteByte('(')

	optional := 0
	for i, a := range d.args {
		if i > 0 {
			b.WriteString(", ")
		}
		if !a.required {
			b.WriteByte('[')
			optional++
		}
		b.WriteString(a.String())
	}
	for i := 0; i < optional; i++ {
		b.WriteByte(']')
	}

	b.WriteByte(')')
	return b.String()
}

// matchFuncArgs matches parsed function arguments against the definition.
// Named arguments bind by name, positional arguments consume the first
// still-unbound argument in canonical order. Optional arguments fall back
// to their default, absent defaults stay absent.
func (d *Definition) matchFuncArgs(defs *Definitions, funcArgs []funcsig.FuncArg) (map[string]argMatch, error) {
	remaining := append([]*Arg(nil), d.args...)
	args := make(map[string]argMatch)

	for _, fa := range funcArgs {
		var def *Arg
		if fa.Name != "" {
			i := argIndex(remaining, fa.Name)
			if i < 0 {
				if _, ok := args[fa.Name]; ok {
					return nil, fmt.Errorf("duplicate argument `%s`", fa.Name)
				}
				return nil, fmt.Errorf("unexpected named argument `%s`", fa)
			}
			def = remaining[i]
			remaining = append(remaining[:i], remaining[i+1:]...)
		} else {
			if len(remaining) == 0 {
				return nil, fmt.Errorf("unexpected positional argument `%s`", fa.Term)
			}
			def = remaining[0]
			remaining = remaining[1:]
		}

		m, err := resolveTerm(defs, def.name, fa.Term)
		if err != nil {
			return nil, err
		}
		args[def.name] = m
	}

	var missing []string
	for _, def := range remaining {
		switch {
		case def.defaultVal != nil:
			args[def.name] = argMatch{value: def.defaultVal.Clone()}
		case def.required:
			missing = append(missing, def.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required arguments missing: %s", strings.Join(missing, ","))
	}

	return args, nil
}

func argIndex(args []*Arg, name string) int {
	for i, a := range args {
		if a.name == name {
			return i
		}
	}
	return -1
}

func resolveTerm(defs *Definitions, argName string, term funcsig.ExprTerm) (argMatch, error) {
	if term.Kind == funcsig.TermLiteral {
		v, err := value.FromJSON([]byte(term.Literal))
		if err != nil {
			return argMatch{}, fmt.Errorf("invalid value for argument `%s`: %v", argName, err)
		}
		return argMatch{value: v}, nil
	}

	matches := make([]*DefinitionMatch, 0, len(term.Expr))
	for _, sig := range term.Expr {
		m, err := defs.matchDefinition(sig)
		if err != nil {
			return argMatch{}, err
		}
		matches = append(matches, m)
	}
	return argMatch{matches: matches, isExpr: true}, nil
}

// Definitions is a registry of transformation definitions.
type Definitions struct {
	inner []*Definition
}

// NewDefinitions returns an empty registry.
func NewDefinitions() *Definitions {
	return &Definitions{}
}

// Add registers a definition and returns the registry for chaining.
func (ds *Definitions) Add(d *Definition) *Definitions {
	ds.inner = append(ds.inner, d)
	return ds
}

// All returns every registered definition.
func (ds *Definitions) All() []*Definition {
	return ds.inner
}

// Find looks up a definition by name or alias.
func (ds *Definitions) Find(name string) (*Definition, bool) {
	for _, d := range ds.inner {
		if d.name == name {
			return d, true
		}
		for _, a := range d.aliases {
			if a == name {
				return d, true
			}
		}
	}
	return nil, false
}

// Parse parses a pipeline expression and resolves every call against the
// registry.
func (ds *Definitions) Parse(input string) ([]*DefinitionMatch, error) {
	sigs, err := funcsig.Parse(input)
	if err != nil {
		return nil, err
	}

	matches := make([]*DefinitionMatch, 0, len(sigs))
	for _, sig := range sigs {
		m, err := ds.matchDefinition(sig)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (ds *Definitions) matchDefinition(sig funcsig.FuncSig) (*DefinitionMatch, error) {
	def, ok := ds.Find(sig.Name)
	if !ok {
		return nil, fmt.Errorf("%w `%s`", ErrUnknownTransform, sig.Name)
	}

	args, err := def.matchFuncArgs(ds, sig.Args)
	if err != nil {
		return nil, fmt.Errorf("invalid function signature `%s`: %w", sig, err)
	}

	return &DefinitionMatch{name: def.name, args: args}, nil
}
