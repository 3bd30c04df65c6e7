package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/dshills/qpattern-mcp/pkg/types"
)

// HashLength is the number of hex characters kept from the structural
// digest. Collision-tolerant, not cryptographic.
const HashLength = 16

// Extractor parses source snippets and reduces them to structural
// fingerprints. Safe to reuse across snippets.
type Extractor struct {
	fset *token.FileSet
}

// New creates a new Extractor instance.
func New() *Extractor {
	return &Extractor{
		fset: token.NewFileSet(),
	}
}

// Extract parses a source snippet and builds its fingerprint. The returned
// fingerprint is immutable; a parse failure yields an error wrapping
// types.ErrExtraction.
func (e *Extractor) Extract(patternID, source string) (*types.Fingerprint, error) {
	file, err := e.parseSnippet(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExtraction, err)
	}

	fp := &types.Fingerprint{
		PatternID:   patternID,
		NodeKinds:   make(types.Multiset),
		ControlFlow: make(types.Multiset),
		Operations:  make(types.Multiset),
		DataFlow:    make(types.Multiset),
	}

	ast.Inspect(file, func(node ast.Node) bool {
		if node == nil {
			return false
		}
		bucketNode(fp, node)
		return true
	})

	fp.StructuralHash = StructuralHash(fp)
	return fp, nil
}

// parseSnippet attempts the three parse forms in order: complete file,
// declarations under a synthetic package clause, statements wrapped in a
// function body.
func (e *Extractor) parseSnippet(source string) (*ast.File, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("empty snippet")
	}

	attempts := []string{
		trimmed,
		"package snippet\n\n" + trimmed,
		"package snippet\n\nfunc snippetBody() {\n" + trimmed + "\n}",
	}

	var firstErr error
	for _, src := range attempts {
		file, err := parser.ParseFile(e.fset, "snippet.go", src, 0)
		if err == nil {
			return file, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// bucketNode assigns a syntax node to the feature multisets it belongs to.
// Every node contributes its kind; control-flow, operation, and data-flow
// constructs additionally contribute a class-specific label.
func bucketNode(fp *types.Fingerprint, node ast.Node) {
	fp.NodeKinds.Add(nodeKind(node))

	switch n := node.(type) {
	// Control flow: branches, loops, iteration, deferred scopes
	case *ast.IfStmt:
		fp.ControlFlow.Add("if")
	case *ast.ForStmt:
		fp.ControlFlow.Add("for")
	case *ast.RangeStmt:
		fp.ControlFlow.Add("range")
	case *ast.SwitchStmt:
		fp.ControlFlow.Add("switch")
	case *ast.TypeSwitchStmt:
		fp.ControlFlow.Add("type-switch")
	case *ast.SelectStmt:
		fp.ControlFlow.Add("select")
	case *ast.DeferStmt:
		fp.ControlFlow.Add("defer")
	case *ast.GoStmt:
		fp.ControlFlow.Add("go")
	case *ast.BranchStmt:
		fp.ControlFlow.Add(n.Tok.String())

	// Operations: calls, binary operators, comparisons
	case *ast.CallExpr:
		fp.Operations.Add("call")
	case *ast.BinaryExpr:
		if isComparison(n.Op) {
			fp.Operations.Add("compare")
		} else {
			fp.Operations.Add("binary-op")
		}
	case *ast.UnaryExpr:
		fp.Operations.Add("unary-op")

	// Data flow: assignments, returns, channel sends
	case *ast.AssignStmt:
		if n.Tok == token.DEFINE {
			fp.DataFlow.Add("define")
		} else {
			fp.DataFlow.Add("assign")
		}
	case *ast.ReturnStmt:
		fp.DataFlow.Add("return")
	case *ast.SendStmt:
		fp.DataFlow.Add("send")
	case *ast.IncDecStmt:
		fp.DataFlow.Add("incdec")
	case *ast.ValueSpec:
		fp.DataFlow.Add("declare")
	}
}

// nodeKind returns the bare AST type name, e.g. "FuncDecl".
func nodeKind(node ast.Node) string {
	name := fmt.Sprintf("%T", node)
	name = strings.TrimPrefix(name, "*ast.")
	return strings.TrimPrefix(name, "ast.")
}

// isComparison reports whether op is a comparison or logical operator.
func isComparison(op token.Token) bool {
	switch op {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ, token.LAND, token.LOR:
		return true
	}
	return false
}

// StructuralHash computes the order-independent digest over the four
// sorted feature multisets, truncated to HashLength hex characters.
func StructuralHash(fp *types.Fingerprint) string {
	h := sha256.New()
	classes := fp.FeatureClasses()
	for i, class := range classes {
		h.Write([]byte(types.FeatureClassNames[i]))
		h.Write([]byte{':'})
		for _, label := range class.Sorted() {
			fmt.Fprintf(h, "%s=%d;", label, class[label])
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:HashLength]
}
