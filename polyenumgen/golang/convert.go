package golang

import (
	"bytes"
	"fmt"

	"github.com/broady/polyenum/polyenumgen/model"
)

// emitLifts emits the lift contract, one lift per product type, and the
// identity lift on the union itself.
func (e *Emitter) emitLifts(buf *bytes.Buffer) {
	n := e.names
	fmt.Fprintf(buf, "// %s is implemented by every case of %s, and by %s itself.\n", n.Case, n.Union, n.Union)
	fmt.Fprintf(buf, "type %s interface {\n\t%s() %s\n}\n\n", n.Case, n.Lift, n.Union)

	for _, v := range e.union.Variants {
		fmt.Fprintf(buf, "// %s wraps v in a %s holding the %s case.\n", n.Lift, n.Union, v.Name)
		fmt.Fprintf(buf, "func (v %s) %s() %s {\n", v.Name, n.Lift, n.Union)
		fmt.Fprintf(buf, "\treturn %s{%s: %s, %s: v}\n}\n\n", n.Union, n.KindField, n.KindConst(v.Name), n.CaseField(v.Name))
	}

	fmt.Fprintf(buf, "// %s returns %s unchanged.\n", n.Lift, n.Receiver)
	fmt.Fprintf(buf, "func (%s %s) %s() %s {\n\treturn %s\n}\n\n", n.Receiver, n.Union, n.Lift, n.Union, n.Receiver)
}

// emitProjections emits the panicking and the comma-ok projection of one
// variant.
func (e *Emitter) emitProjections(buf *bytes.Buffer, v model.VariantDecl) {
	n := e.names
	r := n.Receiver
	kindConst := n.KindConst(v.Name)
	field := n.CaseField(v.Name)

	fmt.Fprintf(buf, "// %s returns the %s case of %s.\n", n.Projection(v.Name), v.Name, r)
	fmt.Fprintf(buf, "// It panics with a *%s.ProjectionMismatch if %s holds another case.\n", model.RuntimeName, r)
	fmt.Fprintf(buf, "func (%s %s) %s() %s {\n", r, n.Union, n.Projection(v.Name), v.Name)
	fmt.Fprintf(buf, "\tif %s.%s != %s {\n", r, n.KindField, kindConst)
	fmt.Fprintf(buf, "\t\tpanic(%s.Mismatch(%q, %s.%s, %q))\n\t}\n", model.RuntimeName, n.Union, r, n.KindField, v.Name)
	fmt.Fprintf(buf, "\treturn %s.%s\n}\n\n", r, field)

	fmt.Fprintf(buf, "// %s returns the %s case of %s and whether %s holds it.\n", n.TryProjection(v.Name), v.Name, r, r)
	fmt.Fprintf(buf, "func (%s %s) %s() (%s, bool) {\n", r, n.Union, n.TryProjection(v.Name), v.Name)
	fmt.Fprintf(buf, "\tif %s.%s != %s {\n\t\treturn %s{}, false\n\t}\n", r, n.KindField, kindConst, v.Name)
	fmt.Fprintf(buf, "\treturn %s.%s, true\n}\n\n", r, field)
}

// emitBuilder emits the collection builder named after the union.
func (e *Emitter) emitBuilder(buf *bytes.Buffer) {
	n := e.names
	fmt.Fprintf(buf, "// %s lifts each case into a %s, keeping argument order.\n", n.Builder, n.Union)
	fmt.Fprintf(buf, "func %s(cases ...%s) []%s {\n", n.Builder, n.Case, n.Union)
	fmt.Fprintf(buf, "\tout := make([]%s, 0, len(cases))\n", n.Union)
	buf.WriteString("\tfor _, c := range cases {\n")
	fmt.Fprintf(buf, "\t\tout = append(out, c.%s())\n", n.Lift)
	buf.WriteString("\t}\n\treturn out\n}\n")
}
