package resolver

import (
	"github.com/rosebud32/rosebudc/internal/ast"
	"github.com/rosebud32/rosebudc/internal/datatype"
)

// Callbacks lets internal/codegen hook into entity construction without
// this package needing to know anything about NASM operands or stack
// frames, mirroring the original's resolver_callbacks table (spec.md §9).
type Callbacks interface {
	// MergeEntities decides whether two adjacent entities in a chain collapse
	// into one (e.g. folding a constant array index into the preceding
	// entity's offset); returning nil means "don't merge".
	MergeEntities(p *Process, result *Result, left, right *Entity) *Entity
	// MakePrivate attaches codegen-specific data (e.g. an addressing-mode
	// descriptor) to a freshly built entity.
	MakePrivate(entity *Entity, node ast.Node, offset int, scope *Scope) any
	// NewArrayEntity attaches codegen-specific data to an array-bracket step
	// before its offset/flags are computed.
	NewArrayEntity(result *Result, node ast.Node) any
	// SetResultBase records the chain's root entity against the result,
	// e.g. to seed a base-register computation.
	SetResultBase(result *Result, first *Entity)
}

// Process carries the scope stack and struct/union field layouts a single
// compilation unit's resolver passes share.
type Process struct {
	Callbacks Callbacks
	// Structs maps a struct/union type name to its field layout, used to
	// resolve '.'/'->' member access chains.
	Structs map[string]*datatype.StructDef

	scopeRoot, scopeCurrent *Scope
}

// NewProcess creates a resolver process with an empty root scope.
func NewProcess(callbacks Callbacks, structs map[string]*datatype.StructDef) *Process {
	root := newScope()
	return &Process{Callbacks: callbacks, Structs: structs, scopeRoot: root, scopeCurrent: root}
}

// ScopeCurrent returns the innermost active scope.
func (p *Process) ScopeCurrent() *Scope { return p.scopeCurrent }

// ScopeRoot returns the outermost (global) scope.
func (p *Process) ScopeRoot() *Scope { return p.scopeRoot }

// NewScope pushes a fresh child scope and makes it current.
func (p *Process) NewScope(private any, flags ScopeFlag) *Scope {
	scope := newScope()
	scope.Prev = p.scopeCurrent
	scope.Private = private
	scope.Flags = flags
	p.scopeCurrent = scope
	return scope
}

// FinishScope pops the current scope back to its parent.
func (p *Process) FinishScope() {
	p.scopeCurrent = p.scopeCurrent.Prev
}

// RegisterFunction registers fn's signature in the root scope so calls
// anywhere in the file can resolve it, regardless of declaration order.
func (p *Process) RegisterFunction(fn *ast.FuncDecl, private any) *Entity {
	e := newEntity(EntityTypeFunction, private)
	e.Name = fn.Name
	e.Node = fn
	e.Dtype = fn.ReturnType
	e.Scope = p.scopeCurrent
	p.scopeRoot.Entities = append(p.scopeRoot.Entities, e)
	return e
}

// NewEntityForVarNode registers a variable (a local, a parameter or a
// global) in the current scope and returns its entity.
func (p *Process) NewEntityForVarNode(name string, dtype datatype.Datatype, node ast.Node, private any, offset int) *Entity {
	e := newEntityForVarNode(name, dtype, node, private, p.scopeCurrent, offset)
	p.scopeCurrent.Entities = append(p.scopeCurrent.Entities, e)
	return e
}

// newEntityForRule pushes a rule entity (a deferred instruction for
// executeRules to apply to its neighbors, never itself a real address
// step) onto result.
func (p *Process) newEntityForRule(result *Result, rule *Entity) {
	e := newEntity(EntityTypeRule, nil)
	e.Rule = rule.Rule
	result.Push(e)
}

// getEntityInScopeWithType resolves name within one scope: if the chain so
// far ended at a struct/union value, this is a member-access lookup against
// that type's field layout; otherwise it's an ordinary declared-name lookup.
func (p *Process) getEntityInScopeWithType(result *Result, scope *Scope, name string, typ EntityType) *Entity {
	if result != nil && result.LastStructUnionEntity != nil {
		su := result.LastStructUnionEntity
		if su.Dtype.Struct == nil {
			return nil
		}
		offset, fieldType, ok := su.Dtype.Struct.FieldOffset(name)
		if !ok {
			return nil
		}
		if su.Dtype.Kind == datatype.Union {
			offset = 0
		}
		field := newEntityForVarNode(name, fieldType, nil, nil, su.Scope, offset)
		field.Flags |= EntityFlagNoMergeWithNext | EntityFlagNoMergeWithLeft
		field.Private = p.Callbacks.MakePrivate(field, nil, offset, su.Scope)
		return field
	}

	return scope.lookup(name, typ)
}

// getEntityForType walks the scope chain from current outward, looking for
// a declaration of name with the given type (anyEntityType to match any).
func (p *Process) getEntityForType(result *Result, name string, typ EntityType) *Entity {
	for scope := p.scopeCurrent; scope != nil; scope = scope.Prev {
		if e := p.getEntityInScopeWithType(result, scope, name, typ); e != nil {
			return e
		}
	}
	return nil
}

// GetEntity resolves name against any entity kind.
func (p *Process) GetEntity(result *Result, name string) *Entity {
	return p.getEntityForType(result, name, anyEntityType)
}

// GetVariable resolves name against variable entities only.
func (p *Process) GetVariable(result *Result, name string) *Entity {
	return p.getEntityForType(result, name, EntityTypeVariable)
}

// GetFunction resolves name against the root scope's registered functions.
func (p *Process) GetFunction(name string) *Entity {
	return p.getEntityInScopeWithType(nil, p.scopeRoot, name, EntityTypeFunction)
}
