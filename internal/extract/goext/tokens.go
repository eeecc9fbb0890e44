package goext

import (
	"fmt"
	"go/ast"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// collectEntropyInputs walks a function body and produces the raw
// lexical-token multiset, the coarse structural pattern tags, and the
// per-branch token sequences the entropy cache needs. Structural tagging follows
// the same normalize-identifiers, keep-structure idea the duplicate-block
// hasher uses elsewhere in the corpus, generalized from a hash digest to
// an explicit tag/token stream.
func collectEntropyInputs(body *ast.BlockStmt) (map[debt.TokenKind]int, []debt.PatternTag, []debt.TokenSequence) {
	tokens := make(map[debt.TokenKind]int)
	var patterns []debt.PatternTag
	var branches []debt.TokenSequence

	ast.Inspect(body, func(n ast.Node) bool {
		if n == nil {
			return false
		}
		tag, tok := classifyNode(n)
		if tag != "" {
			patterns = append(patterns, debt.PatternTag(tag))
		}
		if tok != "" {
			tokens[debt.TokenKind(tok)]++
		}

		switch s := n.(type) {
		case *ast.IfStmt:
			branches = append(branches, tokenSequence(s.Body))
			if s.Else != nil {
				if blk, ok := s.Else.(*ast.BlockStmt); ok {
					branches = append(branches, tokenSequence(blk))
				}
			}
		case *ast.CaseClause:
			branches = append(branches, tokenSequenceStmts(s.Body))
		}
		return true
	})

	return tokens, patterns, branches
}

func classifyNode(n ast.Node) (tag, token string) {
	switch node := n.(type) {
	case *ast.AssignStmt:
		return "assign", "ASSIGN_" + node.Tok.String()
	case *ast.ExprStmt:
		return "expr", "EXPR"
	case *ast.ReturnStmt:
		return "return", "RETURN"
	case *ast.IfStmt:
		return "if", "IF"
	case *ast.ForStmt:
		return "for", "FOR"
	case *ast.RangeStmt:
		return "range", "RANGE"
	case *ast.SwitchStmt:
		return "switch", "SWITCH"
	case *ast.TypeSwitchStmt:
		return "type_switch", "TYPE_SWITCH"
	case *ast.SelectStmt:
		return "select", "SELECT"
	case *ast.DeferStmt:
		return "defer", "DEFER"
	case *ast.GoStmt:
		return "go", "GO"
	case *ast.BranchStmt:
		return "branch", node.Tok.String()
	case *ast.CallExpr:
		return "call", "CALL"
	case *ast.SelectorExpr:
		return "selector", "SELECTOR"
	case *ast.BinaryExpr:
		return fmt.Sprintf("binary:%s", node.Op.String()), "BIN_" + node.Op.String()
	case *ast.UnaryExpr:
		return "unary", "UNARY_" + node.Op.String()
	case *ast.Ident:
		return "", "IDENT"
	case *ast.BasicLit:
		return "", "LIT_" + node.Kind.String()
	case *ast.DeclStmt:
		return "decl", "DECL"
	default:
		return "", ""
	}
}

func tokenSequence(block *ast.BlockStmt) debt.TokenSequence {
	if block == nil {
		return nil
	}
	return tokenSequenceStmts(block.List)
}

func tokenSequenceStmts(stmts []ast.Stmt) debt.TokenSequence {
	var seq debt.TokenSequence
	for _, stmt := range stmts {
		ast.Inspect(stmt, func(n ast.Node) bool {
			if n == nil {
				return false
			}
			_, tok := classifyNode(n)
			if tok != "" {
				seq = append(seq, debt.TokenKind(tok))
			}
			return true
		})
	}
	return seq
}
