package typets

import "github.com/broady/typets/ir"

// BindingMap maps type variable names to rendered replacements.
type BindingMap map[string]string

// DeclaredParams returns the generic parameters of origin: its own type
// parameters or, when it declares none, the type variables it passes to its
// generic bases, flattened left to right.
func DeclaredParams(origin *ir.CompositeDescriptor) []*ir.TypeVarDescriptor {
	if origin == nil {
		return nil
	}
	if len(origin.TypeParams) > 0 {
		return origin.TypeParams
	}
	var params []*ir.TypeVarDescriptor
	for _, b := range origin.Bases {
		inst, ok := Unwrap(b).(*ir.InstanceDescriptor)
		if !ok {
			continue
		}
		for _, a := range inst.Args {
			if tv, ok := Unwrap(a).(*ir.TypeVarDescriptor); ok {
				params = append(params, tv)
			}
		}
	}
	return params
}

// BindGeneric pairs the declared parameters of origin with rendered
// arguments positionally. Extra arguments and unmatched parameters are left
// unbound.
func BindGeneric(origin *ir.CompositeDescriptor, args []string) BindingMap {
	params := DeclaredParams(origin)
	m := make(BindingMap, min(len(params), len(args)))
	for i, p := range params {
		if i >= len(args) {
			break
		}
		m[p.Name.Name] = args[i]
	}
	return m
}

// merge returns a copy of m with other's entries added. Earlier bindings win.
func (m BindingMap) merge(other BindingMap) BindingMap {
	if len(other) == 0 {
		return m
	}
	out := make(BindingMap, len(m)+len(other))
	for k, v := range other {
		out[k] = v
	}
	for k, v := range m {
		out[k] = v
	}
	return out
}
