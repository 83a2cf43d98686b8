package speclogic

import (
	"strconv"
	"strings"
)

const prettyIndent = 2

// Pretty renders e as an indented s-expression, one node per line. The
// output is deterministic and is what violation reports print.
func Pretty(e Expr) string {
	var sb strings.Builder
	writePretty(&sb, e, 0)
	return sb.String()
}

func writePretty(sb *strings.Builder, e Expr, n int) {
	pad := strings.Repeat(" ", n)
	switch x := e.(type) {
	case nil:
		sb.WriteString(pad + "nil")
	case Const, TimeIndex, *Variable:
		sb.WriteString(pad + x.String())
	case LessExpr:
		writeNode(sb, pad+"(<", n, x.A, x.B)
	case EqualExpr:
		writeNode(sb, pad+"(==", n, x.A, x.B)
	case IndexExpr:
		writeNode(sb, pad+"(index", n, x.X, x.Key)
	case NotExpr:
		writeNode(sb, pad+"(not", n, x.X)
	case AndExpr:
		writeNode(sb, pad+"(and", n, x.Args...)
	case ExistsExpr:
		head := "nil"
		if x.Var != nil {
			head = x.Var.String()
			if x.Var.role != RoleUnset {
				head += ":" + x.Var.role.String()
			}
		}
		writeNode(sb, pad+"(exists "+head, n, x.Body)
	case ReceivedExpr:
		sb.WriteString(pad + "(received " + strconv.Quote(x.Method) + "\n")
		writePretty(sb, x.Time, n+prettyIndent)
		if x.HasArgs {
			sb.WriteString("\n")
			writeNode(sb, strings.Repeat(" ", n+prettyIndent)+"(args", n+prettyIndent, x.Args...)
		}
		sb.WriteString(")")
	default:
		sb.WriteString(pad + e.String())
	}
}

func writeNode(sb *strings.Builder, head string, n int, children ...Expr) {
	sb.WriteString(head)
	for _, child := range children {
		sb.WriteString("\n")
		writePretty(sb, child, n+prettyIndent)
	}
	sb.WriteString(")")
}
