package model

import (
	"go/token"
	"go/types"

	"github.com/broady/polyenum/polyenumgen/diag"
)

// Validate checks the cross-declaration invariants that the emitters rely
// on. It returns the first violation found as an ErrUnsupportedShape
// diagnostic.
func Validate(iface *InterfaceDecl, union *UnionDecl) error {
	if len(union.Variants) == 0 {
		return diag.Hint(diag.Unsupported(union.Pos, "union %s declares no variants", union.Name),
			"add at least one field to %s; each field becomes one case", union.Name)
	}

	if len(iface.Methods) == 0 {
		return diag.Hint(diag.Unsupported(iface.Pos, "interface %s declares no methods", iface.Name),
			"a union with nothing to dispatch needs no generator")
	}

	names := NamesFor(union)

	// Every generated top-level identifier must be distinct.
	declared := map[string]string{
		iface.Name:    "interface",
		names.Union:   "union",
		names.Kind:    "kind type",
		names.Case:    "case interface",
		names.Builder: "builder helper",
	}
	if len(declared) != 5 {
		return diag.Unsupported(union.Pos, "generated names collide: interface %s, union %s, kind %s, case %s, builder %s",
			iface.Name, names.Union, names.Kind, names.Case, names.Builder)
	}
	if err := checkBuilder(union.Pos, names.Builder); err != nil {
		return err
	}

	seen := make(map[string]bool, len(union.Variants))
	caseFields := make(map[string]string, len(union.Variants))
	kindConsts := make(map[string]bool, len(union.Variants))
	for _, v := range union.Variants {
		if seen[v.Name] {
			return diag.Unsupported(v.Pos, "duplicate variant %s in union %s", v.Name, union.Name)
		}
		seen[v.Name] = true
		if other, ok := caseFields[names.CaseField(v.Name)]; ok {
			return diag.Unsupported(v.Pos, "variants %s and %s of %s map to the same field %s", other, v.Name, union.Name, names.CaseField(v.Name))
		}
		caseFields[names.CaseField(v.Name)] = v.Name

		for _, name := range []string{v.Name, names.KindConst(v.Name)} {
			if what, ok := declared[name]; ok {
				return diag.Unsupported(v.Pos, "variant %s of %s: generated name %s collides with the %s", v.Name, union.Name, name, what)
			}
		}
		declared[v.Name] = "product type " + v.Name
		declared[names.KindConst(v.Name)] = "kind constant of " + v.Name
		kindConsts[names.KindConst(v.Name)] = true

		for _, f := range v.Fields {
			if f.Name == names.Lift {
				return diag.Unsupported(v.Pos, "variant %s: field %s collides with the generated lift method", v.Name, f.Name)
			}
		}
	}

	methods := unionMethods(union, names)
	fields := unionFields(union, names)
	for _, m := range iface.Methods {
		if m.Receiver == ReceiverNone {
			return diag.Unsupported(m.Pos, "method %s.%s has no receiver kind", iface.Name, m.Name)
		}
		if methods[m.Name] {
			return diag.Hint(diag.Unsupported(m.Pos, "method %s.%s collides with a method generated on %s", iface.Name, m.Name, union.Name),
				"rename the method; %s also gets Kind, %s and an As/Try projection per variant", union.Name, names.Lift)
		}
		if what, ok := fields[m.Name]; ok {
			return diag.Hint(diag.Unsupported(m.Pos, "method %s.%s collides with %s of %s", iface.Name, m.Name, what, union.Name),
				"rename the method; the %s struct stores its tag in %s and each case in a field named after the variant", union.Name, names.KindField)
		}
		for _, p := range m.Params {
			if p.Name == RuntimeName {
				return diag.Unsupported(m.Pos, "parameter %s of %s.%s shadows the %s runtime package used by the dispatcher", p.Name, iface.Name, m.Name, RuntimeName)
			}
			if kindConsts[p.Name] {
				return diag.Unsupported(m.Pos, "parameter %s of %s.%s shadows the kind constant referenced by the dispatcher", p.Name, iface.Name, m.Name)
			}
		}
	}
	return nil
}

func unionMethods(union *UnionDecl, names Names) map[string]bool {
	reserved := map[string]bool{
		"Kind":     true,
		names.Lift: true,
	}
	for _, v := range union.Variants {
		reserved[names.Projection(v.Name)] = true
		reserved[names.TryProjection(v.Name)] = true
	}
	return reserved
}

// unionFields maps the unexported fields of the generated union struct to a
// description of what they hold.
func unionFields(union *UnionDecl, names Names) map[string]string {
	fields := map[string]string{names.KindField: "the kind field"}
	for _, v := range union.Variants {
		fields[names.CaseField(v.Name)] = "the field holding variant " + v.Name
	}
	return fields
}

func checkBuilder(pos token.Position, name string) error {
	switch {
	case token.IsKeyword(name):
		return diag.Hint(diag.Unsupported(pos, "builder name %q is a Go keyword", name),
			"set another name with //polyenum:options builder=<name>")
	case !token.IsIdentifier(name):
		return diag.Hint(diag.Unsupported(pos, "builder name %q is not a Go identifier", name),
			"set a valid name with //polyenum:options builder=<name>")
	case types.Universe.Lookup(name) != nil:
		return diag.Hint(diag.Unsupported(pos, "builder name %q shadows a predeclared identifier", name),
			"set another name with //polyenum:options builder=<name>")
	}
	return nil
}
