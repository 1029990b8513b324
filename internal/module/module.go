// Package module implements NumFu's import resolver (spec.md §4.4): a
// deduplicated, id-keyed module graph loaded by file / folder / stdlib
// precedence, with explicit-stack cycle detection, grounded in
// original_source/modules.py's ImportResolver.
package module

import (
	"bytes"
	"compress/zlib"
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/sunholo/numfu/internal/ast"
)

// Module is one node of the module graph (spec.md §3's Module record).
type Module struct {
	Path     string
	ID       string
	Code     []byte // zlib-compressed source, decompressed on demand by the error reporter
	Tree     []ast.Node // declarations only: Constant, Import, Export
	FullTree []ast.Node // every top-level node, in declaration order
	Exports  []string
	Imports  map[string]ImportEntry
	Depth    int    // import-stack depth at first load
	Stdlib   string // stdlib tag when this module is a built-in group, else ""
}

// ImportEntry maps one visible name to the module that declares it.
// Name is the identifier inside the source module; for qualified
// entries ("foo.bar") it is the bare tail ("bar").
type ImportEntry struct {
	ModuleID string
	Name     string
}

// ID is the stable hash of a canonical module path; the resolver's
// table is keyed by it.
func ID(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])
}

// Source decompresses the module's stored code.
func (m *Module) Source() string {
	if len(m.Code) == 0 {
		return ""
	}
	r, err := zlib.NewReader(bytes.NewReader(m.Code))
	if err != nil {
		return ""
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(out)
}

func compress(code string) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write([]byte(code))
	_ = w.Close()
	return buf.Bytes()
}
