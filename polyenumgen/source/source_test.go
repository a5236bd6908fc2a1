package source

import (
	"go/token"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/polyenum/polyenumgen/diag"
	"github.com/broady/polyenum/polyenumgen/model"
)

const movesSrc = `//go:build polyenum

package cards

import (
	"context"
	"time"
)

// Move is one action a player can take.
type Move interface {
	// Execute applies the move.
	Execute(ctx context.Context, state *State, extra ...string) (int, error)
	//polyenum:receiver pointer
	Reset()
}

// Moves is every move.
//
//polyenum:options builder=makeMoves
//go:generate echo hi
type Moves struct {
	// Attack deals damage.
	Attack struct {
		Damage int ` + "`json:\"damage\"`" + ` // hit points
		Delay  time.Duration
	}
	Defend, Pass struct{}
	Discard      struct{ _ int; _ string }
	Wait         time.Duration
}
`

func build(t *testing.T, src string, opts BuildOptions) (*model.InterfaceDecl, *model.UnionDecl, error) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := Parse(fset, "moves.polyenum.go", []byte(src))
	require.NoError(t, err)
	decls, err := Accept(fset, f, []byte(src))
	if err != nil {
		return nil, nil, err
	}
	return Build(decls, opts)
}

func TestBuild(t *testing.T) {
	iface, union, err := build(t, movesSrc, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Move", iface.Name)
	assert.Equal(t, []string{"// Move is one action a player can take."}, iface.Doc)
	assert.Contains(t, iface.Text, "Move interface {")
	assert.Contains(t, iface.Text, "//polyenum:receiver pointer")
	assert.Equal(t, []string{"context"}, iface.Selectors)

	require.Len(t, iface.Methods, 2)
	exec := iface.Methods[0]
	assert.Equal(t, "Execute", exec.Name)
	assert.Equal(t, model.ReceiverValue, exec.Receiver)
	assert.Equal(t, []model.Param{
		{Name: "ctx", Type: "context.Context"},
		{Name: "state", Type: "*State"},
		{Name: "extra", Type: "string", Variadic: true},
	}, exec.Params)
	assert.Equal(t, []model.Result{{Type: "int"}, {Type: "error"}}, exec.Results)
	assert.Equal(t, []string{"// Execute applies the move."}, exec.Doc)

	reset := iface.Methods[1]
	assert.Equal(t, model.ReceiverPointer, reset.Receiver)
	assert.False(t, reset.HasResults())

	assert.Equal(t, "Moves", union.Name)
	assert.Equal(t, "makeMoves", union.Options.Builder)
	assert.Equal(t, DefaultPositionalPrefix, union.Options.PositionalPrefix)
	assert.Equal(t, DefaultRuntimeImport, union.Options.RuntimeImport)
	assert.Equal(t, []model.Attribute{
		{Text: "//polyenum:options builder=makeMoves"},
		{Text: "//go:generate echo hi"},
	}, union.Attributes)
	assert.Equal(t, []model.Import{{Path: "context"}, {Path: "time"}}, union.Imports)

	var names []string
	for _, v := range union.Variants {
		names = append(names, v.Name)
	}
	require.Equal(t, []string{"Attack", "Defend", "Pass", "Discard", "Wait"}, names)

	attack := union.Variants[0]
	assert.Equal(t, model.ShapeNamed, attack.Shape)
	assert.Equal(t, []string{"// Attack deals damage."}, attack.Doc)
	require.Len(t, attack.Fields, 2)
	assert.Equal(t, model.Field{
		Name:          "Damage",
		Type:          "int",
		Tag:           "`json:\"damage\"`",
		Comment:       []string{"// hit points"},
		TypeSelectors: []string{},
	}, attack.Fields[0])
	assert.Equal(t, []string{"time"}, attack.Fields[1].TypeSelectors)

	assert.Equal(t, model.ShapeEmpty, union.Variants[1].Shape)
	assert.Equal(t, model.ShapeEmpty, union.Variants[2].Shape)

	discard := union.Variants[3]
	assert.Equal(t, model.ShapePositional, discard.Shape)
	assert.Equal(t, "F0", discard.Fields[0].Name)
	assert.Equal(t, "F1", discard.Fields[1].Name)
	assert.Equal(t, "string", discard.Fields[1].Type)

	wait := union.Variants[4]
	assert.Equal(t, model.ShapePositional, wait.Shape)
	assert.Equal(t, "time.Duration", wait.Fields[0].Type)
}

func TestBuildOptionLayers(t *testing.T) {
	src := `package p

type I interface{ M() }

//polyenum:options positional=P receiver=pointer
type U struct {
	A struct{ _ int }
}
`
	iface, union, err := build(t, src, BuildOptions{
		Receiver:         model.ReceiverValue,
		Builder:          "collect",
		PositionalPrefix: "X",
		RuntimeImport:    "example.com/rt",
	})
	require.NoError(t, err)
	assert.Equal(t, "collect", union.Options.Builder)
	assert.Equal(t, "P", union.Options.PositionalPrefix)
	assert.Equal(t, "example.com/rt", union.Options.RuntimeImport)
	assert.Equal(t, "P0", union.Variants[0].Fields[0].Name)
	assert.Equal(t, model.ReceiverPointer, iface.Methods[0].Receiver)
}

func TestAcceptErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    error
		wantMsg string
	}{
		{
			name:    "single declaration",
			src:     "package p\ntype I interface{}\n",
			want:    diag.ErrMalformedInput,
			wantMsg: "found 1 type declarations",
		},
		{
			name:    "three declarations",
			src:     "package p\ntype I interface{}\ntype U struct{ A int }\ntype X int\n",
			want:    diag.ErrMalformedInput,
			wantMsg: "third type declaration X",
		},
		{
			name:    "function",
			src:     "package p\ntype I interface{}\nfunc f() {}\ntype U struct{ A int }\n",
			want:    diag.ErrMalformedInput,
			wantMsg: "unexpected func declaration",
		},
		{
			name:    "var",
			src:     "package p\nvar x = 1\n",
			want:    diag.ErrMalformedInput,
			wantMsg: "unexpected var declaration",
		},
		{
			name:    "swapped order",
			src:     "package p\ntype U struct{ A int }\ntype I interface{}\n",
			want:    diag.ErrMalformedInput,
			wantMsg: "first declaration U is not an interface",
		},
		{
			name:    "union not a struct",
			src:     "package p\ntype I interface{}\ntype U int\n",
			want:    diag.ErrMalformedInput,
			wantMsg: "second declaration U is not a struct",
		},
		{
			name:    "alias",
			src:     "package p\ntype I = interface{}\ntype U struct{ A int }\n",
			want:    diag.ErrMalformedInput,
			wantMsg: "type alias",
		},
		{
			name:    "embedded interface",
			src:     "package p\ntype I interface{ fmt.Stringer }\ntype U struct{ A int }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "embeds fmt.Stringer",
		},
		{
			name:    "type set",
			src:     "package p\ntype I interface{ ~int | string }\ntype U struct{ A int }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "only method signatures",
		},
		{
			name:    "unnamed parameter",
			src:     "package p\ntype I interface{ M(int) }\ntype U struct{ A int }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "parameter 1 of I.M has no name",
		},
		{
			name:    "blank parameter",
			src:     "package p\ntype I interface{ M(_ int) }\ntype U struct{ A int }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "is blank",
		},
		{
			name:    "generic union",
			src:     "package p\ntype I interface{}\ntype U[T any] struct{ A T }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "type parameters",
		},
		{
			name:    "mixed fields",
			src:     "package p\ntype I interface{}\ntype U struct{ A struct{ X int; _ string } }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "mixes named and positional",
		},
		{
			name:    "embedded variant field",
			src:     "package p\ntype I interface{}\ntype U struct{ A struct{ Base } }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "variant A of U embeds Base",
		},
		{
			name:    "embedded variant",
			src:     "package p\ntype I interface{}\ntype U struct{ Base }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "union U embeds Base",
		},
		{
			name:    "blank variant",
			src:     "package p\ntype I interface{}\ntype U struct{ _ int }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "blank variant",
		},
		{
			name:    "tagged variant",
			src:     "package p\ntype I interface{}\ntype U struct{ A int `json:\"a\"` }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "struct tag",
		},
		{
			name:    "unknown receiver",
			src:     "package p\ntype I interface{\n//polyenum:receiver mut\nM()\n}\ntype U struct{ A int }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: `unknown receiver kind "mut"`,
		},
		{
			name:    "bad options",
			src:     "package p\ntype I interface{}\n//polyenum:options colour=red\ntype U struct{ A int }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "decode //polyenum:options",
		},
		{
			name:    "options on interface",
			src:     "package p\n//polyenum:options builder=makeU\ntype I interface{ M() }\ntype U struct{ A struct{} }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "moves.polyenum.go:2:1: //polyenum:options builder=makeU is not allowed on interface I",
		},
		{
			name:    "receiver on union",
			src:     "package p\ntype I interface{ M() }\n//polyenum:receiver pointer\ntype U struct{ A struct{} }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "moves.polyenum.go:3:1: //polyenum:receiver pointer is not allowed on union U",
		},
		{
			name:    "options on method",
			src:     "package p\ntype I interface{\n//polyenum:options builder=makeU\nM()\n}\ntype U struct{ A struct{} }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "moves.polyenum.go:3:1: //polyenum:options builder=makeU is not allowed on method I.M",
		},
		{
			name:    "receiver on method line comment",
			src:     "package p\ntype I interface{\nM() //polyenum:receiver pointer\n}\ntype U struct{ A struct{} }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "not allowed on the line comment of I.M",
		},
		{
			name:    "unknown directive on variant",
			src:     "package p\ntype I interface{ M() }\ntype U struct{\n//polyenum:bogus\nA struct{}\n}\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "variant A of U: moves.polyenum.go:4:1: unknown directive //polyenum:bogus",
		},
		{
			name:    "receiver on variant",
			src:     "package p\ntype I interface{ M() }\ntype U struct{\n//polyenum:receiver value\nA struct{}\n}\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "moves.polyenum.go:4:1: //polyenum:receiver value is not allowed on variant A of U",
		},
		{
			name:    "options on variant field",
			src:     "package p\ntype I interface{ M() }\ntype U struct{\nA struct{\nX int //polyenum:options builder=makeU\n}\n}\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "moves.polyenum.go:5:7: //polyenum:options builder=makeU is not allowed on field X of variant A",
		},
		{
			name:    "detached directive",
			src:     "package p\n\n//polyenum:options builder=makeU\n\ntype I interface{ M() }\ntype U struct{ A struct{} }\n",
			want:    diag.ErrUnsupportedShape,
			wantMsg: "moves.polyenum.go:3:1: //polyenum:options builder=makeU is not attached to the union",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := build(t, tt.src, BuildOptions{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestMisplacedDirectiveHint(t *testing.T) {
	src := "package p\n//polyenum:options builder=makeU\ntype I interface{ M() }\ntype U struct{ A struct{} }\n"
	_, _, err := build(t, src, BuildOptions{})
	require.Error(t, err)
	assert.Equal(t, diag.ErrUnsupportedShape, diag.Kind(err))
	assert.Contains(t, errors.FlattenHints(err), "put //polyenum:options in the doc comment of the union")
}

func TestBuildFieldGroupComment(t *testing.T) {
	src := "package p\ntype I interface{ M() }\ntype U struct{\nPoint struct{\n// Coordinates.\nX, Y int // pixels\n}\n}\n"
	_, union, err := build(t, src, BuildOptions{})
	require.NoError(t, err)

	fields := union.Variants[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, []string{"// Coordinates."}, fields[0].Doc)
	assert.Equal(t, []string{"// pixels"}, fields[0].Comment)
	assert.Empty(t, fields[1].Doc)
	assert.Empty(t, fields[1].Comment)
	assert.Equal(t, "int", fields[1].Type)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse(token.NewFileSet(), "bad.polyenum.go", []byte("package p\ntype I interface{"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrSyntax))
	assert.Contains(t, err.Error(), "parse bad.polyenum.go")
}
