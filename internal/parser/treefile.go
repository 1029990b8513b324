package parser

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/sunholo/numfu/internal/ast"
)

// TreeMagic is the persisted parse-tree file prefix (spec.md §6):
// exactly 13 bytes, followed by the serialized tree.
var TreeMagic = []byte("NFU-TREE-FILE")

func init() {
	gob.Register(&ast.Number{})
	gob.Register(&ast.String{})
	gob.Register(&ast.Bool{})
	gob.Register(&ast.Variable{})
	gob.Register(&ast.List{})
	gob.Register(&ast.Spread{})
	gob.Register(&ast.Lambda{})
	gob.Register(&ast.Call{})
	gob.Register(&ast.Index{})
	gob.Register(&ast.Conditional{})
	gob.Register(&ast.Constant{})
	gob.Register(&ast.Delete{})
	gob.Register(&ast.Import{})
	gob.Register(&ast.Export{})
	gob.Register(&ast.Assertion{})
}

// SaveTree writes a parsed tree to path with the magic prefix.
func SaveTree(path string, tree []ast.Node) error {
	var buf bytes.Buffer
	buf.Write(TreeMagic)
	if err := gob.NewEncoder(&buf).Encode(tree); err != nil {
		return fmt.Errorf("encoding parse tree: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadTree reads path: on a matching magic prefix it deserializes the
// stored tree, otherwise it re-parses the content as source (spec.md
// §6's loader contract).
func LoadTree(path string) ([]ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, TreeMagic) {
		return Parse(string(data), path)
	}
	var tree []ast.Node
	if err := gob.NewDecoder(bytes.NewReader(data[len(TreeMagic):])).Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding parse tree %s: %w", path, err)
	}
	return tree, nil
}
