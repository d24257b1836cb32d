package codegen

import (
	"fmt"

	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/fixup"
	"github.com/rosebud32/rosebudc/internal/resolver"
)

// emitStmt is the statement-level dispatcher, per spec.md §4.7's
// "Statements" rule. sys collects one fixup per `goto`, resolved once the
// enclosing function's whole body (and therefore every `label:` it
// declares) has been walked; labels accumulates every label seen so far.
func (g *Generator) emitStmt(stmt ast.Stmt, sys *fixup.System, labels map[string]bool) error {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return g.emitBlock(s, sys, labels)
	case *ast.ExprStmt:
		if err := g.emitExpr(s.X, History{}); err != nil {
			return err
		}
		g.popReg("eax") // a statement's expression value is always discarded
		return nil
	case *ast.VarDecl:
		return g.emitLocalVarDecl(s)
	case *ast.VarListDecl:
		for _, v := range s.Vars {
			if err := g.emitLocalVarDecl(v); err != nil {
				return err
			}
		}
		return nil
	case *ast.ReturnStmt:
		return g.emitReturn(s)
	case *ast.IfStmt:
		return g.emitIf(s, sys, labels)
	case *ast.WhileStmt:
		return g.emitWhile(s, sys, labels)
	case *ast.DoWhileStmt:
		return g.emitDoWhile(s, sys, labels)
	case *ast.ForStmt:
		return g.emitFor(s, sys, labels)
	case *ast.SwitchStmt:
		return g.emitSwitch(s, sys, labels)
	case *ast.BreakStmt:
		return g.emitBreak()
	case *ast.ContinueStmt:
		return g.emitContinue()
	case *ast.GotoStmt:
		return g.emitGoto(s, sys, labels)
	case *ast.LabelStmt:
		labels[s.Name] = true
		g.emitLabel(s.Name)
		return nil
	case *ast.CaseStmt, *ast.DefaultStmt:
		// Only meaningful as a direct child of a SwitchStmt's body, handled
		// by emitSwitch's own walk; reaching here means it's nested deeper,
		// which the validator does not check, so it is reported here.
		return fmt.Errorf("%w: case/default outside a switch body", ErrUnsupportedEntity)
	default:
		return fmt.Errorf("%w: %T in statement position", ErrUnsupportedEntity, stmt)
	}
}

// emitBlock opens a scope so locals declared inside shadow correctly, then
// closes it again; the stack space itself is part of the function's single
// up-front StackSize allocation; blocks never grow or shrink esp on their
// own.
func (g *Generator) emitBlock(b *ast.BlockStmt, sys *fixup.System, labels map[string]bool) error {
	g.proc.NewScope(nil, resolver.ScopeFlagIsStack)
	defer g.proc.FinishScope()
	for _, stmt := range b.Stmts {
		if err := g.emitStmt(stmt, sys, labels); err != nil {
			return err
		}
	}
	return nil
}

// emitLocalVarDecl registers a local variable at its layout-computed
// stack offset and, if present, evaluates and stores its initializer.
func (g *Generator) emitLocalVarDecl(v *ast.VarDecl) error {
	entity := g.proc.NewEntityForVarNode(v.Name, v.Type, v, nil, v.AlignedOffset)
	if v.Init == nil {
		return nil
	}
	if err := g.emitExpr(v.Init, History{}); err != nil {
		return err
	}
	g.popReg("eax")
	size := entityElementSize(&v.Type)
	operand := g.baseOperand(entity)
	g.emitLine("mov %s %s, %s", sizeKeyword(size), operand, subRegister("eax", size))
	return nil
}

// emitReturn evaluates the return value (if any) into eax, then jumps to
// the function's single exit label. Only emitFunction's epilogue, placed
// at that label, ever tears down the frame and emits `ret`, so a function
// with several `return` statements still mirrors each real push/pop onto
// the simulated frame exactly once regardless of which one runs.
func (g *Generator) emitReturn(s *ast.ReturnStmt) error {
	if s.X != nil {
		if err := g.emitExpr(s.X, History{}); err != nil {
			return err
		}
		g.popReg("eax")
	}
	g.emitLine("jmp %s", g.returnLabel)
	return nil
}

func (g *Generator) emitIf(s *ast.IfStmt, sys *fixup.System, labels map[string]bool) error {
	if err := g.emitExpr(s.Cond, History{}); err != nil {
		return err
	}
	g.popReg("eax")
	g.emitLine("cmp eax, 0")

	if s.Else == nil {
		end := g.newLabel("if_end")
		g.emitLine("je %s", end)
		if err := g.emitStmt(s.Then, sys, labels); err != nil {
			return err
		}
		g.emitLabel(end)
		return nil
	}

	elseLabel := g.newLabel("if_else")
	end := g.newLabel("if_end")
	g.emitLine("je %s", elseLabel)
	if err := g.emitStmt(s.Then, sys, labels); err != nil {
		return err
	}
	g.emitLine("jmp %s", end)
	g.emitLabel(elseLabel)
	if err := g.emitStmt(s.Else, sys, labels); err != nil {
		return err
	}
	g.emitLabel(end)
	return nil
}

func (g *Generator) emitWhile(s *ast.WhileStmt, sys *fixup.System, labels map[string]bool) error {
	start := g.newLabel("while_start")
	end := g.newLabel("while_end")

	g.emitLabel(start)
	if err := g.emitExpr(s.Cond, History{}); err != nil {
		return err
	}
	g.popReg("eax")
	g.emitLine("cmp eax, 0")
	g.emitLine("je %s", end)

	g.pushLoopLabels(start, end)
	err := g.emitStmt(s.Body, sys, labels)
	g.popLoopLabels()
	if err != nil {
		return err
	}

	g.emitLine("jmp %s", start)
	g.emitLabel(end)
	return nil
}

func (g *Generator) emitDoWhile(s *ast.DoWhileStmt, sys *fixup.System, labels map[string]bool) error {
	start := g.newLabel("do_start")
	condLabel := g.newLabel("do_cond")
	end := g.newLabel("do_end")

	g.emitLabel(start)
	g.pushLoopLabels(condLabel, end)
	err := g.emitStmt(s.Body, sys, labels)
	g.popLoopLabels()
	if err != nil {
		return err
	}

	g.emitLabel(condLabel)
	if err := g.emitExpr(s.Cond, History{}); err != nil {
		return err
	}
	g.popReg("eax")
	g.emitLine("cmp eax, 0")
	g.emitLine("jne %s", start)
	g.emitLabel(end)
	return nil
}

func (g *Generator) emitFor(s *ast.ForStmt, sys *fixup.System, labels map[string]bool) error {
	g.proc.NewScope(nil, resolver.ScopeFlagIsStack)
	defer g.proc.FinishScope()

	if s.Init != nil {
		if err := g.emitStmt(s.Init, sys, labels); err != nil {
			return err
		}
	}

	start := g.newLabel("for_start")
	post := g.newLabel("for_post")
	end := g.newLabel("for_end")

	g.emitLabel(start)
	if s.Cond != nil {
		if err := g.emitExpr(s.Cond, History{}); err != nil {
			return err
		}
		g.popReg("eax")
		g.emitLine("cmp eax, 0")
		g.emitLine("je %s", end)
	}

	g.pushLoopLabels(post, end)
	err := g.emitStmt(s.Body, sys, labels)
	g.popLoopLabels()
	if err != nil {
		return err
	}

	g.emitLabel(post)
	if s.Post != nil {
		if err := g.emitExpr(s.Post, History{}); err != nil {
			return err
		}
		g.popReg("eax")
	}
	g.emitLine("jmp %s", start)
	g.emitLabel(end)
	return nil
}

// emitSwitch lowers a switch as a linear chain of compares against the
// evaluated tag, in source order, followed by the body with case/default
// labels spliced in at their original positions — C fall-through falls out
// of that layout for free, since statements between one case label and the
// next simply execute in sequence.
func (g *Generator) emitSwitch(s *ast.SwitchStmt, sys *fixup.System, labels map[string]bool) error {
	if err := g.emitExpr(s.Tag, History{}); err != nil {
		return err
	}
	g.popReg("ebx")

	end := g.newLabel("switch_end")
	defaultLabel := ""
	type caseLabel struct {
		value ast.Expr
		label string
	}
	var cases []caseLabel
	caseOf := map[ast.Stmt]string{}

	for _, stmt := range s.Body.Stmts {
		switch c := stmt.(type) {
		case *ast.CaseStmt:
			label := g.newLabel("case")
			cases = append(cases, caseLabel{c.Value, label})
			caseOf[stmt] = label
		case *ast.DefaultStmt:
			defaultLabel = g.newLabel("switch_default")
			caseOf[stmt] = defaultLabel
		}
	}

	for _, c := range cases {
		if err := g.emitExpr(c.value, History{}); err != nil {
			return err
		}
		g.popReg("eax")
		g.emitLine("cmp ebx, eax")
		g.emitLine("je %s", c.label)
	}
	if defaultLabel != "" {
		g.emitLine("jmp %s", defaultLabel)
	} else {
		g.emitLine("jmp %s", end)
	}

	g.pushExitLabel(end)
	defer g.popExitLabel()

	for _, stmt := range s.Body.Stmts {
		if label, ok := caseOf[stmt]; ok {
			g.emitLabel(label)
			continue
		}
		if err := g.emitStmt(stmt, sys, labels); err != nil {
			return err
		}
	}
	g.emitLabel(end)
	return nil
}

func (g *Generator) pushLoopLabels(entry, exit string) {
	g.entryLabels = append(g.entryLabels, entry)
	g.exitLabels = append(g.exitLabels, exit)
}

func (g *Generator) popLoopLabels() {
	g.entryLabels = g.entryLabels[:len(g.entryLabels)-1]
	g.exitLabels = g.exitLabels[:len(g.exitLabels)-1]
}

func (g *Generator) pushExitLabel(exit string) {
	g.exitLabels = append(g.exitLabels, exit)
}

func (g *Generator) popExitLabel() {
	g.exitLabels = g.exitLabels[:len(g.exitLabels)-1]
}

func (g *Generator) emitBreak() error {
	if len(g.exitLabels) == 0 {
		return fmt.Errorf("%w: break outside a loop or switch", ErrUnsupportedEntity)
	}
	g.emitLine("jmp %s", g.exitLabels[len(g.exitLabels)-1])
	return nil
}

func (g *Generator) emitContinue() error {
	if len(g.entryLabels) == 0 {
		return fmt.Errorf("%w: continue outside a loop", ErrUnsupportedEntity)
	}
	g.emitLine("jmp %s", g.entryLabels[len(g.entryLabels)-1])
	return nil
}

// emitGoto registers a fixup instead of emitting the jump's target validity
// check inline: labels may be declared later in the same function, so
// whether Label is legal can't be decided until the whole body has been
// walked (spec.md §4.8's forward-reference mechanism, C8).
func (g *Generator) emitGoto(s *ast.GotoStmt, sys *fixup.System, labels map[string]bool) error {
	g.emitLine("jmp %s", s.Label)
	sys.Register(fixup.Config{
		Fix: func(f *fixup.Fixup) bool {
			return labels[s.Label]
		},
	})
	return nil
}
