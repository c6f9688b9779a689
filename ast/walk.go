package ast

// Inspect traverses the tree rooted at n in depth-first order.  If f
// returns false, the children of that node are skipped.  Nil
// children are not visited.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	visit := func(x Node) {
		if x == nil {
			return
		}
		Inspect(x, f)
	}
	switch vv := n.(type) {
	case *Program:
		for _, c := range vv.Children {
			visit(c)
		}
	case *Definition:
		visit(vv.Body)
	case *Sequence:
		for _, c := range vv.Children {
			visit(c)
		}
	case *Parallel:
		for _, c := range vv.Children {
			visit(c)
		}
	case *Choice:
		for _, b := range vv.Branches {
			visit(b.Guard)
			visit(b.Body)
		}
	case *If:
		for _, b := range vv.Branches {
			visit(b.Cond)
			visit(b.Body)
		}
		visit(vv.Else)
	case *While:
		visit(vv.Cond)
		visit(vv.Body)
	case *For:
		visit(vv.Init)
		visit(vv.Cond)
		visit(vv.Post)
		visit(vv.Body)
	case *ForEach:
		visit(vv.Body)
	case *RequestResponse:
		visit(vv.Output)
		visit(vv.Handler)
	case *Notification:
		visit(vv.Output)
	case *SolicitResponse:
		visit(vv.Output)
	case *Assign:
		visit(vv.Value)
	case *Scope:
		visit(vv.Body)
	case *Synchronized:
		visit(vv.Body)
	case *Install:
		for _, h := range vv.Handlers {
			visit(h.Body)
		}
	case *Spawn:
		visit(vv.Body)
	case *Run:
		visit(vv.Code)
	case *Binary:
		visit(vv.Left)
		visit(vv.Right)
	case *And:
		for _, c := range vv.Children {
			visit(c)
		}
	case *Or:
		for _, c := range vv.Children {
			visit(c)
		}
	case *Not:
		visit(vv.Expr)
	case *Compare:
		visit(vv.Left)
		visit(vv.Right)
	case *Cast:
		visit(vv.Expr)
	}
}
