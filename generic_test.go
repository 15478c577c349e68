package typets

import (
	"reflect"
	"testing"

	"github.com/broady/typets/ir"
)

func TestBindGeneric(t *testing.T) {
	k := ir.TypeVar("K", nil)
	v := ir.TypeVar("V", nil)
	pair := ir.Composite("Pair")
	pair.TypeParams = []*ir.TypeVarDescriptor{k, v}

	tests := []struct {
		name   string
		origin *ir.CompositeDescriptor
		args   []string
		want   BindingMap
	}{
		{"positional", pair, []string{"string", "number"}, BindingMap{"K": "string", "V": "number"}},
		{"missing args", pair, []string{"string"}, BindingMap{"K": "string"}},
		{"extra args", pair, []string{"a", "b", "c"}, BindingMap{"K": "a", "V": "b"}},
		{"no params", ir.Composite("Plain"), []string{"number"}, BindingMap{}},
		{"nil origin", nil, []string{"number"}, BindingMap{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BindGeneric(tt.origin, tt.args)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BindGeneric() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeclaredParamsFromBases(t *testing.T) {
	t1 := ir.TypeVar("T", nil)
	u := ir.TypeVar("U", nil)

	left := ir.Composite("Left")
	left.TypeParams = []*ir.TypeVarDescriptor{t1}
	right := ir.Composite("Right")
	right.TypeParams = []*ir.TypeVarDescriptor{u}

	// class Both(Left[T], Right[U]) declares no parameters itself.
	both := ir.Composite("Both")
	both.Bases = []ir.TypeDescriptor{
		ir.Instantiate(left, t1),
		ir.Instantiate(right, u, ir.Int()),
		right,
	}

	got := DeclaredParams(both)
	if len(got) != 2 || got[0] != t1 || got[1] != u {
		t.Fatalf("DeclaredParams() = %v, want [T U]", got)
	}
	if m := BindGeneric(both, []string{"string", "boolean"}); !reflect.DeepEqual(m, BindingMap{"T": "string", "U": "boolean"}) {
		t.Errorf("BindGeneric() = %v", m)
	}
}

func TestBindingMapMerge(t *testing.T) {
	var empty BindingMap
	if got := empty.merge(nil); got != nil {
		t.Errorf("nil merge nil = %v", got)
	}

	m := BindingMap{"T": "number"}
	got := m.merge(BindingMap{"T": "string", "U": "boolean"})
	want := BindingMap{"T": "number", "U": "boolean"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merge() = %v, want %v", got, want)
	}
	if len(m) != 1 {
		t.Error("merge must not mutate the receiver")
	}
}
