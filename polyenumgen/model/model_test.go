package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamesFor(t *testing.T) {
	u := &UnionDecl{Name: "Moves"}
	n := NamesFor(u)
	assert.Equal(t, "MovesKind", n.Kind)
	assert.Equal(t, "MovesCase", n.Case)
	assert.Equal(t, "ToMoves", n.Lift)
	assert.Equal(t, "moves", n.Builder)
	assert.Equal(t, "m", n.Receiver)
	assert.Equal(t, "MovesAttack", n.KindConst("Attack"))
	assert.Equal(t, "attack", n.CaseField("Attack"))
	assert.Equal(t, "kindCase", n.CaseField("Kind"))
	assert.Equal(t, "typeCase", n.CaseField("Type"))
	assert.Equal(t, "AsAttack", n.Projection("Attack"))
	assert.Equal(t, "TryAttack", n.TryProjection("Attack"))

	u.Options.Builder = "makeMoves"
	assert.Equal(t, "makeMoves", NamesFor(u).Builder)
}

func TestReceiverKind(t *testing.T) {
	tests := []struct {
		in     string
		want   ReceiverKind
		wantOK bool
	}{
		{"value", ReceiverValue, true},
		{"pointer", ReceiverPointer, true},
		{"ptr", ReceiverPointer, true},
		{" Pointer ", ReceiverPointer, true},
		{"mut", ReceiverNone, false},
		{"", ReceiverNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseReceiverKind(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
	assert.Equal(t, "pointer", ReceiverPointer.String())
	assert.Equal(t, "none", ReceiverNone.String())
}

func TestAttribute(t *testing.T) {
	tests := []struct {
		text      string
		directive bool
		namespace string
	}{
		{"//go:noinline", true, "go"},
		{"//polyenum:receiver pointer", true, "polyenum"},
		{"//lint:ignore U1000 kept for callers", true, "lint"},
		{"// go:noinline", false, ""},
		{"// Note: this is prose.", false, ""},
		{"//Go:noinline", false, ""},
		{"/* block */", false, ""},
		{"//:empty", false, ""},
	}
	for _, tt := range tests {
		a := Attribute{Text: tt.text}
		assert.Equal(t, tt.directive, a.IsDirective(), tt.text)
		assert.Equal(t, tt.namespace, a.Namespace(), tt.text)
	}
}

func TestForwardableAndDocText(t *testing.T) {
	lines := []string{
		"// Attack deals damage.",
		"//",
		"//go:noinline",
		"//polyenum:receiver pointer",
	}
	assert.Equal(t, []string{"// Attack deals damage.", "//", "//go:noinline"}, Forwardable(lines))
	assert.Equal(t, []string{"// Attack deals damage."}, DocText(lines))
	assert.Empty(t, DocText([]string{"//polyenum:options builder=x"}))

	attrs := []Attribute{{Text: "// prose"}, {Text: "//go:build linux"}, {Text: "//polyenum:options builder=x"}}
	assert.Equal(t, []Attribute{{Text: "//go:build linux"}}, Directives(attrs))
}

func TestUpperLowerFirst(t *testing.T) {
	assert.Equal(t, "Attack", UpperFirst("attack"))
	assert.Equal(t, "attack", LowerFirst("Attack"))
	assert.Equal(t, "éclair", LowerFirst("Éclair"))
	assert.Equal(t, "", UpperFirst(""))
}
