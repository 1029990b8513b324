package module

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/errors"
)

// ParseFunc parses source text into top-level nodes; supplied by the
// driver so this package stays independent of the concrete parser.
type ParseFunc func(src, path string) ([]ast.Node, error)

// Config wires the resolver to its collaborators: the parser, the set
// of valid stdlib tags, the stdlib bundle loader, and the export list
// of the implicit `builtins` module.
type Config struct {
	Parse        ParseFunc
	StdlibTags   map[string]bool
	StdlibBundle func(tag string) (string, bool)
	// GroupNames enumerates the registered built-in group behind a
	// stdlib tag, so the tag's module exports them alongside any
	// bundle declarations.
	GroupNames   func(tag string) []string
	BuiltinNames []string
}

// Resolver loads and links a module graph. Modules is keyed by id;
// Order records registration order, which is dependency order (a
// module's imports always register before it does).
type Resolver struct {
	cfg     Config
	Modules map[string]*Module
	Order   []string
	stack   []string
}

// moduleNameRe is spec.md §4.4's name validity rule: identifier
// segments optionally preceded by a relative path prefix.
var moduleNameRe = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_]*/)*[a-zA-Z_][a-zA-Z0-9_]*$`)

// NewResolver constructs a resolver and registers the implicit
// `builtins` stdlib module.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{cfg: cfg, Modules: map[string]*Module{}}
	names := append([]string{}, cfg.BuiltinNames...)
	sort.Strings(names)
	b := &Module{
		Path:    "builtins",
		ID:      ID("builtins"),
		Exports: names,
		Imports: map[string]ImportEntry{},
		Stdlib:  "builtins",
	}
	r.register(b)
	return r
}

func (r *Resolver) register(m *Module) {
	r.Modules[m.ID] = m
	r.Order = append(r.Order, m.ID)
}

// Builtins returns the implicit builtins module.
func (r *Resolver) Builtins() *Module { return r.Modules[ID("builtins")] }

// Resolve links the given parsed tree as the main module at path and
// returns it. Every transitively imported module registers in
// r.Modules as a side effect. path is used verbatim — callers pass an
// absolute path for file modules so imports resolve relative to it,
// and a bare tag for synthetic modules (REPL).
func (r *Resolver) Resolve(tree []ast.Node, path, code string) (*Module, error) {
	return r.load(path, tree, code)
}

// load builds and registers one module from an already-parsed tree
// (step 2-5 of spec.md §4.4's loading algorithm).
func (r *Resolver) load(path string, tree []ast.Node, code string) (*Module, error) {
	m := &Module{
		Path:     path,
		ID:       ID(path),
		Code:     compress(code),
		FullTree: tree,
		Imports:  map[string]ImportEntry{},
		Depth:    len(r.stack),
	}

	// Every module except builtins itself sees builtins' exports.
	builtins := r.Builtins()
	for _, name := range builtins.Exports {
		m.Imports[name] = ImportEntry{ModuleID: builtins.ID, Name: name}
	}

	// declared tracks what each Export may reference: a name counts
	// only once its Constant or Import has been walked, so an Export
	// preceding the declaration fails (spec.md §8 invariant 3).
	declared := map[string]bool{}
	for name := range m.Imports {
		declared[name] = true
	}

	for _, node := range tree {
		switch n := node.(type) {
		case *ast.Import:
			target, err := r.resolveImport(n, path, code)
			if err != nil {
				return nil, err
			}
			if err := r.record(m, n, target, path, code); err != nil {
				return nil, err
			}
			for name := range m.Imports {
				declared[name] = true
			}
			m.Tree = append(m.Tree, n)
		case *ast.Constant:
			declared[n.Name] = true
			m.Tree = append(m.Tree, n)
		case *ast.Export:
			for _, in := range n.Names {
				if !declared[in.Name] {
					pos := in.Pos
					return nil, errors.Wrap(errors.Newf(errors.NameError, &pos, path, code, false,
						"cannot export '%s': it is not declared in this module", in.Name))
				}
				m.Exports = append(m.Exports, in.Name)
			}
			m.Tree = append(m.Tree, n)
		}
	}

	r.register(m)
	return m, nil
}

// record fills m.Imports from one Import node against the resolved
// target module.
func (r *Resolver) record(m *Module, n *ast.Import, target *Module, path, code string) error {
	if len(n.Names) == 0 {
		// `import foo`: every export under the foo. prefix.
		stem := moduleStem(n.Module)
		for _, name := range target.Exports {
			m.Imports[stem+"."+name] = ImportEntry{ModuleID: target.ID, Name: name}
		}
		return nil
	}
	if n.Names[0].Name == "*" {
		for _, name := range target.Exports {
			m.Imports[name] = ImportEntry{ModuleID: target.ID, Name: name}
		}
		return nil
	}
	exported := map[string]bool{}
	for _, e := range target.Exports {
		exported[e] = true
	}
	for _, in := range n.Names {
		if !exported[in.Name] {
			suggestion := " This module does not export anything."
			if len(target.Exports) > 0 {
				avail := append([]string{}, target.Exports...)
				sort.Strings(avail)
				suggestion = " Available exports are: " + strings.Join(avail, ", ")
			}
			pos := in.Pos
			return errors.Wrap(errors.Newf(errors.ImportError, &pos, path, code, false,
				"Module '%s' does not export an identifier named '%s'.%s", n.Module, in.Name, suggestion))
		}
		m.Imports[in.Name] = ImportEntry{ModuleID: target.ID, Name: in.Name}
	}
	return nil
}

// resolveImport applies the file -> folder -> stdlib precedence of
// spec.md §4.4.
func (r *Resolver) resolveImport(n *ast.Import, fromPath, fromCode string) (*Module, error) {
	name := n.Module
	pos := n.Position()

	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "~") {
		return nil, errors.Wrap(errors.Newf(errors.ImportError, &pos, fromPath, fromCode, false,
			"invalid module name %q: absolute paths are not allowed", name))
	}
	if !moduleNameRe.MatchString(name) {
		return nil, errors.Wrap(errors.Newf(errors.ImportError, &pos, fromPath, fromCode, false,
			"invalid module name %q", name))
	}

	dir := filepath.Dir(fromPath)

	if filePath := filepath.Join(dir, name+".nfu"); isFile(filePath) {
		return r.loadFile(filePath, n, fromPath, fromCode)
	}
	if indexPath := filepath.Join(dir, name, "index.nfu"); isFile(indexPath) {
		return r.loadFile(indexPath, n, fromPath, fromCode)
	}
	if r.cfg.StdlibTags[name] {
		return r.loadStdlib(name)
	}

	return nil, errors.Wrap(errors.Newf(errors.ImportError, &pos, fromPath, fromCode, false,
		"Cannot find module %q", name))
}

// loadFile reads, parses and registers a file module, with explicit
// import-stack cycle detection (spec.md §4.4): a path already on the
// stack raises an ImportError enumerating the cycle.
func (r *Resolver) loadFile(path string, n *ast.Import, fromPath, fromCode string) (*Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if m, ok := r.Modules[ID(abs)]; ok {
		return m, nil
	}

	for i, p := range r.stack {
		if p == abs {
			cycle := append(append([]string{}, r.stack[i:]...), abs)
			quoted := make([]string, len(cycle))
			for j, c := range cycle {
				quoted[j] = "'" + c + "'"
			}
			pos := n.Position()
			return nil, errors.Wrap(errors.Newf(errors.ImportError, &pos, fromPath, fromCode, false,
				"Circular import detected:\n%s", strings.Join(quoted, " -> ")))
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		pos := n.Position()
		return nil, errors.Wrap(errors.Newf(errors.ImportError, &pos, fromPath, fromCode, false,
			"Cannot read module %q: %v", path, err))
	}
	code := string(data)

	tree, err := r.cfg.Parse(code, abs)
	if err != nil {
		return nil, err
	}

	r.stack = append(r.stack, abs)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()
	return r.load(abs, tree, code)
}

// loadStdlib registers a stdlib tag: a built-in group, optionally
// extended by a bundle written in NumFu.
func (r *Resolver) loadStdlib(tag string) (*Module, error) {
	if m, ok := r.Modules[ID(tag)]; ok {
		return m, nil
	}

	var tree []ast.Node
	code := ""
	if src, ok := r.cfg.StdlibBundle(tag); ok {
		code = src
		parsed, err := r.cfg.Parse(src, tag)
		if err != nil {
			return nil, err
		}
		tree = parsed
	}

	r.stack = append(r.stack, tag)
	m, err := r.load(tag, tree, code)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}
	m.Stdlib = tag
	if r.cfg.GroupNames != nil {
		m.RegisterStdlibExports(r.cfg.GroupNames(tag))
	}
	return m, nil
}

// Forget drops a module registration so its path can be reloaded; the
// REPL uses it to re-link its persistent module between inputs.
func (r *Resolver) Forget(id string) {
	delete(r.Modules, id)
	for i, o := range r.Order {
		if o == id {
			r.Order = append(r.Order[:i], r.Order[i+1:]...)
			break
		}
	}
}

// RegisterStdlibExports extends a stdlib module's export list with the
// names of its registered built-in group; called by the driver, which
// owns the registry.
func (m *Module) RegisterStdlibExports(names []string) {
	have := map[string]bool{}
	for _, e := range m.Exports {
		have[e] = true
	}
	extra := append([]string{}, names...)
	sort.Strings(extra)
	for _, n := range extra {
		if !have[n] {
			m.Exports = append(m.Exports, n)
		}
	}
}

func moduleStem(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Describe returns a short human-readable summary of the module graph,
// used by debug output.
func (r *Resolver) Describe() string {
	var b strings.Builder
	for _, id := range r.Order {
		m := r.Modules[id]
		fmt.Fprintf(&b, "%s (depth %d, %d exports)\n", m.Path, m.Depth, len(m.Exports))
	}
	return b.String()
}
