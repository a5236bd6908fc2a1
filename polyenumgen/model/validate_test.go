package model

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/polyenum/polyenumgen/diag"
)

func movesDecls() (*InterfaceDecl, *UnionDecl) {
	iface := &InterfaceDecl{
		Name: "Move",
		Methods: []MethodSig{
			{Name: "Execute", Receiver: ReceiverValue, Params: []Param{{Name: "state", Type: "*State"}}},
			{Name: "Reset", Receiver: ReceiverPointer},
		},
	}
	union := &UnionDecl{
		Name: "Moves",
		Variants: []VariantDecl{
			{Name: "Attack", Shape: ShapeNamed, Fields: []Field{{Name: "Damage", Type: "int"}}},
			{Name: "Defend", Shape: ShapeEmpty},
			{Name: "Discard", Shape: ShapePositional, Fields: []Field{{Name: "F0", Type: "int"}}},
		},
	}
	return iface, union
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*InterfaceDecl, *UnionDecl)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*InterfaceDecl, *UnionDecl) {},
		},
		{
			name:    "no variants",
			mutate:  func(_ *InterfaceDecl, u *UnionDecl) { u.Variants = nil },
			wantErr: "declares no variants",
		},
		{
			name:    "no methods",
			mutate:  func(i *InterfaceDecl, _ *UnionDecl) { i.Methods = nil },
			wantErr: "declares no methods",
		},
		{
			name:    "duplicate variant",
			mutate:  func(_ *InterfaceDecl, u *UnionDecl) { u.Variants = append(u.Variants, VariantDecl{Name: "Defend"}) },
			wantErr: "duplicate variant Defend",
		},
		{
			name:    "variant named like the interface",
			mutate:  func(_ *InterfaceDecl, u *UnionDecl) { u.Variants[1].Name = "Move" },
			wantErr: "collides with the interface",
		},
		{
			name:    "variant kind constant collides",
			mutate:  func(_ *InterfaceDecl, u *UnionDecl) { u.Variants[1].Name = "Kind" },
			wantErr: "MovesKind collides with the kind type",
		},
		{
			name: "case fields collide",
			mutate: func(_ *InterfaceDecl, u *UnionDecl) {
				u.Variants = append(u.Variants, VariantDecl{Name: "attack", Shape: ShapeEmpty})
			},
			wantErr: "map to the same field attack",
		},
		{
			name:    "union named like its interface",
			mutate:  func(i *InterfaceDecl, u *UnionDecl) { i.Name = "Moves" },
			wantErr: "generated names collide",
		},
		{
			name:    "builder keyword",
			mutate:  func(_ *InterfaceDecl, u *UnionDecl) { u.Name = "Func" },
			wantErr: `builder name "func" is a Go keyword`,
		},
		{
			name:    "builder predeclared",
			mutate:  func(_ *InterfaceDecl, u *UnionDecl) { u.Name = "Len" },
			wantErr: "shadows a predeclared identifier",
		},
		{
			name:    "method collides with projection",
			mutate:  func(i *InterfaceDecl, _ *UnionDecl) { i.Methods[0].Name = "AsAttack" },
			wantErr: "collides with a method generated on Moves",
		},
		{
			name:    "method named Kind",
			mutate:  func(i *InterfaceDecl, _ *UnionDecl) { i.Methods[0].Name = "Kind" },
			wantErr: "collides with a method generated on Moves",
		},
		{
			name:    "method named like the kind field",
			mutate:  func(i *InterfaceDecl, _ *UnionDecl) { i.Methods[0].Name = "kind" },
			wantErr: "method Move.kind collides with the kind field of Moves",
		},
		{
			name:    "method named like a case field",
			mutate:  func(i *InterfaceDecl, _ *UnionDecl) { i.Methods[1].Name = "attack" },
			wantErr: "method Move.attack collides with the field holding variant Attack of Moves",
		},
		{
			name: "method named like a suffixed case field",
			mutate: func(i *InterfaceDecl, u *UnionDecl) {
				u.Variants[1].Name = "Type"
				i.Methods[0].Name = "typeCase"
			},
			wantErr: "collides with the field holding variant Type",
		},
		{
			name:    "missing receiver",
			mutate:  func(i *InterfaceDecl, _ *UnionDecl) { i.Methods[1].Receiver = ReceiverNone },
			wantErr: "has no receiver kind",
		},
		{
			name: "parameter shadows runtime",
			mutate: func(i *InterfaceDecl, _ *UnionDecl) {
				i.Methods[0].Params = append(i.Methods[0].Params, Param{Name: "polyenum", Type: "int"})
			},
			wantErr: "shadows the polyenum runtime package",
		},
		{
			name: "parameter shadows kind constant",
			mutate: func(i *InterfaceDecl, _ *UnionDecl) {
				i.Methods[0].Params = append(i.Methods[0].Params, Param{Name: "MovesAttack", Type: "int"})
			},
			wantErr: "shadows the kind constant",
		},
		{
			name: "field named like the lift",
			mutate: func(_ *InterfaceDecl, u *UnionDecl) {
				u.Variants[0].Fields = append(u.Variants[0].Fields, Field{Name: "ToMoves", Type: "int"})
			},
			wantErr: "collides with the generated lift method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iface, union := movesDecls()
			tt.mutate(iface, union)
			err := Validate(iface, union)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.Is(err, diag.ErrUnsupportedShape))
		})
	}
}

func TestValidateCaseFieldHint(t *testing.T) {
	iface, union := movesDecls()
	iface.Methods[0].Name = "defend"
	err := Validate(iface, union)
	require.Error(t, err)
	assert.Equal(t, diag.ErrUnsupportedShape, diag.Kind(err))
	assert.Contains(t, errors.FlattenHints(err), "rename the method")
}

func TestValidateBuilderHint(t *testing.T) {
	iface, union := movesDecls()
	union.Options.Builder = "range"
	err := Validate(iface, union)
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "//polyenum:options builder=")
}
