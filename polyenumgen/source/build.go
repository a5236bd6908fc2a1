package source

import (
	"fmt"
	"go/ast"
	"go/token"
	"slices"
	"sort"
	"strconv"

	"github.com/broady/polyenum/internal/directive"
	"github.com/broady/polyenum/polyenumgen/diag"
	"github.com/broady/polyenum/polyenumgen/model"
)

// BuildOptions are the defaults Build falls back to when the input does not
// override them with a //polyenum:options directive.
type BuildOptions struct {
	Receiver         model.ReceiverKind
	Builder          string
	PositionalPrefix string
	RuntimeImport    string
}

// DefaultPositionalPrefix names positional fields F0, F1, ...
const DefaultPositionalPrefix = "F"

// DefaultRuntimeImport is the runtime package generated code panics through.
const DefaultRuntimeImport = "github.com/broady/polyenum"

// Build normalizes the accepted declarations into the model.
func Build(d *Decls, opts BuildOptions) (*model.InterfaceDecl, *model.UnionDecl, error) {
	b := &builder{decls: d, fset: d.Fset, src: d.Src, read: make(map[*ast.CommentGroup]bool)}

	union, receiver, err := b.union(opts)
	if err != nil {
		return nil, nil, err
	}
	iface, err := b.iface(receiver)
	if err != nil {
		return nil, nil, err
	}
	if err := b.stray(); err != nil {
		return nil, nil, err
	}
	return iface, union, nil
}

type builder struct {
	decls *Decls
	fset  *token.FileSet
	src   []byte

	// read holds the comment groups whose directives were checked.
	read map[*ast.CommentGroup]bool
}

func (b *builder) union(opts BuildOptions) (*model.UnionDecl, model.ReceiverKind, error) {
	td := b.decls.Union
	spec := td.Spec
	pos := b.pos(spec.Pos())

	if spec.TypeParams != nil {
		return nil, model.ReceiverNone, diag.Unsupported(pos, "union %s has type parameters", spec.Name.Name)
	}

	doc := commentLines(td.Doc)
	ds, err := b.directives(td.Doc, "union "+spec.Name.Name, directive.KindOptions)
	if err != nil {
		return nil, model.ReceiverNone, err
	}
	fileOpts, err := directive.DecodeOptions(ds)
	if err != nil {
		return nil, model.ReceiverNone, diag.Unsupported(pos, "union %s: %v", spec.Name.Name, err)
	}

	options := model.Options{
		Builder:          firstNonEmpty(fileOpts.Builder, opts.Builder),
		PositionalPrefix: firstNonEmpty(fileOpts.PositionalPrefix, opts.PositionalPrefix, DefaultPositionalPrefix),
		RuntimeImport:    firstNonEmpty(fileOpts.RuntimeImport, opts.RuntimeImport, DefaultRuntimeImport),
	}

	receiver := opts.Receiver
	if fileOpts.Receiver != "" {
		// Already validated by the options directive.
		receiver, _ = model.ParseReceiverKind(fileOpts.Receiver)
	}
	if receiver == model.ReceiverNone {
		receiver = model.ReceiverValue
	}

	union := &model.UnionDecl{
		Name:       spec.Name.Name,
		Doc:        doc,
		Attributes: attributes(doc),
		Imports:    b.imports(),
		Options:    options,
		Pos:        pos,
	}

	st := spec.Type.(*ast.StructType)
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			return nil, model.ReceiverNone, diag.Hint(diag.Unsupported(b.pos(field.Pos()), "union %s embeds %s", union.Name, b.text(field.Type)),
				"declare each variant as a named field")
		}
		if field.Tag != nil {
			return nil, model.ReceiverNone, diag.Unsupported(b.pos(field.Tag.Pos()), "variant %s of %s has a struct tag; tags belong on the variant's own fields",
				field.Names[0].Name, union.Name)
		}
		where := fmt.Sprintf("variant %s of %s", field.Names[0].Name, union.Name)
		if err := b.noDirectives(where, field.Doc, field.Comment); err != nil {
			return nil, model.ReceiverNone, err
		}
		for _, name := range field.Names {
			v, err := b.variant(union.Name, name, field, options.PositionalPrefix)
			if err != nil {
				return nil, model.ReceiverNone, err
			}
			union.Variants = append(union.Variants, v)
		}
	}
	return union, receiver, nil
}

func (b *builder) variant(union string, name *ast.Ident, field *ast.Field, prefix string) (model.VariantDecl, error) {
	pos := b.pos(name.Pos())
	if name.Name == "_" {
		return model.VariantDecl{}, diag.Unsupported(pos, "union %s has a blank variant", union)
	}
	doc := commentLines(field.Doc)
	v := model.VariantDecl{
		Name: name.Name,
		Doc:  doc,
		Pos:  pos,
	}

	st, ok := field.Type.(*ast.StructType)
	if !ok {
		v.Shape = model.ShapePositional
		v.Fields = []model.Field{{
			Name:          prefix + "0",
			Type:          b.text(field.Type),
			TypeSelectors: selectors(field.Type),
		}}
		return v, nil
	}

	if len(st.Fields.List) == 0 {
		v.Shape = model.ShapeEmpty
		return v, nil
	}

	var named, blank int
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return model.VariantDecl{}, diag.Hint(diag.Unsupported(b.pos(f.Pos()), "variant %s of %s embeds %s", v.Name, union, b.text(f.Type)),
				"name the field, or use _ for a positional field")
		}
		where := fmt.Sprintf("field %s of variant %s", f.Names[0].Name, v.Name)
		if err := b.noDirectives(where, f.Doc, f.Comment); err != nil {
			return model.VariantDecl{}, err
		}
		for _, n := range f.Names {
			if n.Name == "_" {
				blank++
			} else {
				named++
			}
		}
	}
	if named > 0 && blank > 0 {
		return model.VariantDecl{}, diag.Hint(diag.Unsupported(pos, "variant %s of %s mixes named and positional (_) fields", v.Name, union),
			"name every field, or make every field _")
	}

	v.Shape = model.ShapeNamed
	if blank > 0 {
		v.Shape = model.ShapePositional
	}
	for _, f := range st.Fields.List {
		for i, n := range f.Names {
			fieldName := n.Name
			if v.Shape == model.ShapePositional {
				fieldName = prefix + strconv.Itoa(len(v.Fields))
			}
			mf := model.Field{
				Name:          fieldName,
				Type:          b.text(f.Type),
				TypeSelectors: selectors(f.Type),
			}
			// In a group like "X, Y int // note" the comments belong to the
			// line, so only the first generated field carries them.
			if i == 0 {
				mf.Doc = commentLines(f.Doc)
				mf.Comment = commentLines(f.Comment)
			}
			if f.Tag != nil {
				mf.Tag = f.Tag.Value
			}
			v.Fields = append(v.Fields, mf)
		}
	}
	return v, nil
}

func (b *builder) iface(defaultReceiver model.ReceiverKind) (*model.InterfaceDecl, error) {
	td := b.decls.Interface
	spec := td.Spec
	pos := b.pos(spec.Pos())

	if spec.TypeParams != nil {
		return nil, diag.Unsupported(pos, "interface %s has type parameters", spec.Name.Name)
	}

	if err := b.noDirectives("interface "+spec.Name.Name, td.Doc); err != nil {
		return nil, err
	}

	it := spec.Type.(*ast.InterfaceType)
	iface := &model.InterfaceDecl{
		Name:      spec.Name.Name,
		Doc:       commentLines(td.Doc),
		Text:      b.text(spec),
		Selectors: selectors(it),
		Pos:       pos,
	}

	for _, field := range it.Methods.List {
		if len(field.Names) == 0 {
			return nil, diag.Hint(diag.Unsupported(b.pos(field.Pos()), "interface %s embeds %s; only method signatures are supported", iface.Name, b.text(field.Type)),
				"list the embedded methods explicitly")
		}
		ft, ok := field.Type.(*ast.FuncType)
		if !ok {
			return nil, diag.Unsupported(b.pos(field.Pos()), "interface %s: %s is not a method", iface.Name, field.Names[0].Name)
		}
		if err := b.noDirectives(fmt.Sprintf("the line comment of %s.%s", iface.Name, field.Names[0].Name), field.Comment); err != nil {
			return nil, err
		}
		m, err := b.method(iface.Name, field.Names[0], field.Doc, ft, defaultReceiver)
		if err != nil {
			return nil, err
		}
		iface.Methods = append(iface.Methods, m)
	}
	return iface, nil
}

func (b *builder) method(iface string, name *ast.Ident, docGroup *ast.CommentGroup, ft *ast.FuncType, defaultReceiver model.ReceiverKind) (model.MethodSig, error) {
	pos := b.pos(name.Pos())
	m := model.MethodSig{
		Name:     name.Name,
		Doc:      commentLines(docGroup),
		Receiver: defaultReceiver,
		Pos:      pos,
	}

	ds, err := b.directives(docGroup, fmt.Sprintf("method %s.%s", iface, m.Name), directive.KindReceiver)
	if err != nil {
		return model.MethodSig{}, err
	}
	recv, err := directive.Receiver(ds)
	if err != nil {
		return model.MethodSig{}, diag.Unsupported(pos, "method %s.%s: %v", iface, m.Name, err)
	}
	if recv != "" {
		kind, ok := model.ParseReceiverKind(recv)
		if !ok {
			return model.MethodSig{}, diag.Hint(diag.Unsupported(pos, "method %s.%s: unknown receiver kind %q", iface, m.Name, recv),
				"use //polyenum:receiver value or //polyenum:receiver pointer")
		}
		m.Receiver = kind
	}

	for i, p := range ft.Params.List {
		if len(p.Names) == 0 {
			return model.MethodSig{}, diag.Hint(diag.Unsupported(b.pos(p.Pos()), "parameter %d of %s.%s has no name", i+1, iface, m.Name),
				"name every parameter so the dispatcher can forward it")
		}
		typ, variadic := p.Type, false
		if ell, ok := p.Type.(*ast.Ellipsis); ok {
			typ, variadic = ell.Elt, true
		}
		for _, n := range p.Names {
			if n.Name == "_" {
				return model.MethodSig{}, diag.Hint(diag.Unsupported(b.pos(n.Pos()), "parameter of %s.%s is blank", iface, m.Name),
					"name every parameter so the dispatcher can forward it")
			}
			m.Params = append(m.Params, model.Param{Name: n.Name, Type: b.text(typ), Variadic: variadic})
		}
	}

	if ft.Results != nil {
		for _, r := range ft.Results.List {
			if len(r.Names) == 0 {
				m.Results = append(m.Results, model.Result{Type: b.text(r.Type)})
				continue
			}
			for _, n := range r.Names {
				m.Results = append(m.Results, model.Result{Name: n.Name, Type: b.text(r.Type)})
			}
		}
	}
	return m, nil
}

// directives parses the polyenum directives in cg, the comments of where, and
// rejects every kind not listed in allowed.
func (b *builder) directives(cg *ast.CommentGroup, where string, allowed ...directive.Kind) ([]directive.Directive, error) {
	if cg == nil {
		return nil, nil
	}
	b.read[cg] = true
	ds, err := directive.Collect(b.fset, cg)
	if err != nil {
		return nil, diag.Unsupported(token.Position{}, "%s: %v", where, err)
	}
	for _, d := range ds {
		if !slices.Contains(allowed, d.Kind) {
			return nil, diag.Hint(diag.Unsupported(d.Pos, "%s is not allowed on %s", d, where), "%s", placement(d.Kind))
		}
	}
	return ds, nil
}

// noDirectives fails when any of groups holds a polyenum directive.
func (b *builder) noDirectives(where string, groups ...*ast.CommentGroup) error {
	for _, cg := range groups {
		if _, err := b.directives(cg, where); err != nil {
			return err
		}
	}
	return nil
}

// stray rejects polyenum directives in comments that are not attached to any
// declaration the generator reads.
func (b *builder) stray() error {
	for _, cg := range b.decls.File.Comments {
		if b.read[cg] {
			continue
		}
		ds, err := directive.Collect(b.fset, cg)
		if err != nil {
			return diag.Unsupported(token.Position{}, "%v", err)
		}
		if len(ds) > 0 {
			return diag.Hint(diag.Unsupported(ds[0].Pos, "%s is not attached to the union or to an interface method", ds[0]),
				"%s", placement(ds[0].Kind))
		}
	}
	return nil
}

func placement(kind directive.Kind) string {
	if kind == directive.KindReceiver {
		return "put " + directive.Prefix + "receiver in the doc comment of an interface method"
	}
	return "put " + directive.Prefix + "options in the doc comment of the union"
}

func (b *builder) imports() []model.Import {
	var out []model.Import
	for _, spec := range b.decls.File.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		imp := model.Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		out = append(out, imp)
	}
	return out
}

// text returns the verbatim source of n.
func (b *builder) text(n ast.Node) string {
	file := b.fset.File(n.Pos())
	return string(b.src[file.Offset(n.Pos()):file.Offset(n.End())])
}

func (b *builder) pos(p token.Pos) token.Position {
	return b.fset.Position(p)
}

func commentLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	lines := make([]string, 0, len(cg.List))
	for _, c := range cg.List {
		lines = append(lines, c.Text)
	}
	return lines
}

func attributes(lines []string) []model.Attribute {
	var out []model.Attribute
	for _, l := range lines {
		a := model.Attribute{Text: l}
		if a.IsDirective() {
			out = append(out, a)
		}
	}
	return out
}

// selectors lists the package names referenced by qualified identifiers in n.
func selectors(n ast.Node) []string {
	seen := make(map[string]bool)
	ast.Inspect(n, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				seen[id.Name] = true
			}
		}
		return true
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
