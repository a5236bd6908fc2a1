package golang

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/broady/polyenum/polyenumgen/model"
)

// emitDispatcher emits the union's implementation of one interface method.
// The body switches over the kind and forwards every parameter, by name and
// in order, to the same method on the held case.
func (e *Emitter) emitDispatcher(buf *bytes.Buffer, m model.MethodSig) {
	n := e.names
	recv := receiverName(n.Receiver, m)
	recvType := n.Union
	if m.Receiver == model.ReceiverPointer {
		recvType = "*" + n.Union
	}

	writeLines(buf, "", trimTrailingBlank(model.Forwardable(m.Doc)))
	fmt.Fprintf(buf, "func (%s %s) %s(%s)%s {\n", recv, recvType, m.Name, paramList(m.Params), resultList(m.Results))
	fmt.Fprintf(buf, "\tswitch %s.%s {\n", recv, n.KindField)

	args := argList(m.Params)
	for _, v := range e.union.Variants {
		fmt.Fprintf(buf, "\tcase %s:\n\t\t", n.KindConst(v.Name))
		if m.HasResults() {
			buf.WriteString("return ")
		}
		fmt.Fprintf(buf, "%s.%s.%s(%s)\n", recv, n.CaseField(v.Name), m.Name, args)
	}

	buf.WriteString("\tdefault:\n")
	fmt.Fprintf(buf, "\t\tpanic(%s.NoCase(%q, %s.%s))\n", model.RuntimeName, n.Union, recv, n.KindField)
	buf.WriteString("\t}\n}\n\n")
}

// emitAssertion emits a compile-time check that the union implements the
// interface with the receivers chosen per method.
func (e *Emitter) emitAssertion(buf *bytes.Buffer) {
	value := e.names.Union + "{}"
	for _, m := range e.iface.Methods {
		if m.Receiver == model.ReceiverPointer {
			value = "(*" + e.names.Union + ")(nil)"
			break
		}
	}
	fmt.Fprintf(buf, "var _ %s = %s\n\n", e.iface.Name, value)
}

func paramList(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		typ := p.Type
		if p.Variadic {
			typ = "..." + typ
		}
		parts[i] = p.Name + " " + typ
	}
	return strings.Join(parts, ", ")
}

func argList(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
		if p.Variadic {
			parts[i] += "..."
		}
	}
	return strings.Join(parts, ", ")
}

func resultList(results []model.Result) string {
	switch {
	case len(results) == 0:
		return ""
	case len(results) == 1 && results[0].Name == "":
		return " " + results[0].Type
	}
	parts := make([]string, len(results))
	for i, r := range results {
		if r.Name == "" {
			parts[i] = r.Type
			continue
		}
		parts[i] = r.Name + " " + r.Type
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
