// Package golang renders a validated polyenum model as Go source.
//
// Emitter writes the declarations in the fixed artifact order: the
// interface, the product types, the kind type and rebuilt union, the
// dispatcher methods, the lift contract and lifts, the projections, and the
// builder helper. Assemble wraps the result in a file header, package clause
// and import block and formats it.
package golang

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/polyenum/polyenumgen/model"
)

// Emitter handles Go code emission for one interface and union pair.
type Emitter struct {
	iface *model.InterfaceDecl
	union *model.UnionDecl
	names model.Names
}

// NewEmitter returns an Emitter for a model that passed model.Validate.
func NewEmitter(iface *model.InterfaceDecl, union *model.UnionDecl) *Emitter {
	return &Emitter{
		iface: iface,
		union: union,
		names: model.NamesFor(union),
	}
}

// Emit writes every artifact, in order, to buf.
func (e *Emitter) Emit(buf *bytes.Buffer) {
	e.emitInterface(buf)
	for _, v := range e.union.Variants {
		e.emitProduct(buf, v)
	}
	e.emitKind(buf)
	e.emitUnion(buf)
	for _, m := range e.iface.Methods {
		e.emitDispatcher(buf, m)
	}
	e.emitAssertion(buf)
	e.emitLifts(buf)
	for _, v := range e.union.Variants {
		e.emitProjections(buf, v)
	}
	e.emitBuilder(buf)
}

// emitInterface re-emits the interface as written, dropping polyenum's own
// directives from its doc and method comments.
func (e *Emitter) emitInterface(buf *bytes.Buffer) {
	writeLines(buf, "", trimTrailingBlank(model.Forwardable(e.iface.Doc)))
	buf.WriteString("type ")
	for i, line := range strings.Split(e.iface.Text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "//polyenum:") {
			continue
		}
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(line)
	}
	buf.WriteString("\n\n")
}

// emitProduct emits the standalone struct for one variant. It carries the
// variant's own documentation (or a generated sentence) followed by the
// union's directives; the variant's directives are not re-emitted.
func (e *Emitter) emitProduct(buf *bytes.Buffer, v model.VariantDecl) {
	doc := model.DocText(v.Doc)
	if len(doc) == 0 {
		doc = []string{fmt.Sprintf("// %s is the %s case of %s.", v.Name, v.Name, e.union.Name)}
	}
	writeLines(buf, "", doc)

	directives := model.Directives(e.union.Attributes)
	if len(directives) > 0 {
		buf.WriteString("//\n")
		for _, a := range directives {
			buf.WriteString(a.Text)
			buf.WriteString("\n")
		}
	}

	if v.Shape == model.ShapeEmpty {
		fmt.Fprintf(buf, "type %s struct{}\n\n", v.Name)
		return
	}

	fmt.Fprintf(buf, "type %s struct {\n", v.Name)
	for _, f := range v.Fields {
		writeLines(buf, "\t", f.Doc)
		fmt.Fprintf(buf, "\t%s %s", f.Name, f.Type)
		if f.Tag != "" {
			buf.WriteString(" ")
			buf.WriteString(f.Tag)
		}
		if len(f.Comment) > 0 {
			buf.WriteString(" ")
			buf.WriteString(strings.Join(f.Comment, " "))
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n\n")
}

// emitKind emits the kind type, one constant per variant and its String
// method.
func (e *Emitter) emitKind(buf *bytes.Buffer) {
	n := e.names
	underlying := "uint8"
	if len(e.union.Variants) > 255 {
		underlying = "uint16"
	}

	fmt.Fprintf(buf, "// %s identifies the case held by a %s. The zero %s holds no case.\n", n.Kind, n.Union, n.Union)
	fmt.Fprintf(buf, "type %s %s\n\n", n.Kind, underlying)

	buf.WriteString("const (\n")
	for i, v := range e.union.Variants {
		if i == 0 {
			fmt.Fprintf(buf, "\t%s %s = iota + 1\n", n.KindConst(v.Name), n.Kind)
			continue
		}
		fmt.Fprintf(buf, "\t%s\n", n.KindConst(v.Name))
	}
	buf.WriteString(")\n\n")

	fmt.Fprintf(buf, "// String returns the name of the case k identifies.\n")
	fmt.Fprintf(buf, "func (k %s) String() string {\n", n.Kind)
	buf.WriteString("\tswitch k {\n")
	for _, v := range e.union.Variants {
		fmt.Fprintf(buf, "\tcase %s:\n\t\treturn %q\n", n.KindConst(v.Name), v.Name)
	}
	buf.WriteString("\tdefault:\n")
	fmt.Fprintf(buf, "\t\treturn \"%s(\" + strconv.Itoa(int(k)) + \")\"\n", n.Kind)
	buf.WriteString("\t}\n}\n\n")
}

// emitUnion emits the rebuilt union: the kind tag plus one field per case,
// each holding the matching product type.
func (e *Emitter) emitUnion(buf *bytes.Buffer) {
	n := e.names
	writeLines(buf, "", trimTrailingBlank(model.Forwardable(e.union.Doc)))
	fmt.Fprintf(buf, "type %s struct {\n", n.Union)
	fmt.Fprintf(buf, "\t%s %s\n", n.KindField, n.Kind)
	for _, v := range e.union.Variants {
		fmt.Fprintf(buf, "\t%s %s\n", n.CaseField(v.Name), v.Name)
	}
	buf.WriteString("}\n\n")

	fmt.Fprintf(buf, "// Kind reports which case %s holds.\n", n.Receiver)
	fmt.Fprintf(buf, "func (%s %s) Kind() %s {\n\treturn %s.%s\n}\n\n", n.Receiver, n.Union, n.Kind, n.Receiver, n.KindField)
}

func writeLines(buf *bytes.Buffer, indent string, lines []string) {
	for _, l := range lines {
		buf.WriteString(indent)
		buf.WriteString(l)
		buf.WriteString("\n")
	}
}

// trimTrailingBlank drops empty "//" lines left at the end of a comment
// group once the directives after them were removed.
func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "//" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
