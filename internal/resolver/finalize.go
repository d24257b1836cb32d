package resolver

import "github.com/rosebud32/rosebudc/internal/datatype"

// finalizeResultFlags derives the ResultFlag bits codegen needs from a
// single left-to-right scan of the finished chain: whether the first
// entity's value needs to be loaded into a scratch register before the
// rest of the chain is applied, and whether the final value still needs
// one more indirection to read (spec.md §4.6).
func (p *Process) finalizeResultFlags(result *Result) {
	flags := ResultFlagFirstEntityPushValue
	first := result.Root()
	last := result.LastEntity()
	doesGetAddress := false

	if first == last {
		if last.Type == EntityTypeVariable && last.Dtype.IsStructOrUnionNoPointer() {
			flags |= ResultFlagFirstEntityLoadToEBX
			flags &^= ResultFlagFirstEntityPushValue
		}
		result.Flags = flags
		return
	}

	for entity := first; entity != nil; entity = entity.Next {
		if entity.Flags&EntityFlagDoIndirection != 0 {
			flags |= ResultFlagFirstEntityLoadToEBX | ResultFlagFinalIndirectionRequiredForValue
			flags &^= ResultFlagFirstEntityPushValue
		}

		switch entity.Type {
		case EntityTypeUnaryGetAddress:
			flags |= ResultFlagFirstEntityLoadToEBX | ResultFlagDoesGetAddress
			flags &^= ResultFlagFirstEntityPushValue | ResultFlagFinalIndirectionRequiredForValue
			doesGetAddress = true
		case EntityTypeFunctionCall:
			flags |= ResultFlagFirstEntityLoadToEBX
			flags &^= ResultFlagFirstEntityPushValue
		case EntityTypeArrayBracket:
			if entity.Dtype.Flags&datatype.FlagIsPointer != 0 {
				flags |= ResultFlagFirstEntityPushValue
				flags &^= ResultFlagFirstEntityLoadToEBX
			} else {
				flags |= ResultFlagFirstEntityLoadToEBX
				flags &^= ResultFlagFirstEntityPushValue
			}
			if entity.Flags&EntityFlagIsPointerArrayEntity != 0 {
				flags |= ResultFlagFinalIndirectionRequiredForValue
			}
		case EntityTypeGeneral:
			flags |= ResultFlagFirstEntityLoadToEBX | ResultFlagFinalIndirectionRequiredForValue
			flags &^= ResultFlagFirstEntityPushValue
		}
	}

	switch {
	case last.Dtype.IsArray() && !doesGetAddress && last.Type == EntityTypeVariable &&
		!entityUsesArrayBrackets(last):
		flags &^= ResultFlagFinalIndirectionRequiredForValue
	case last.Type == EntityTypeVariable:
		flags |= ResultFlagFinalIndirectionRequiredForValue
	}

	if doesGetAddress {
		flags &^= ResultFlagFinalIndirectionRequiredForValue
	}

	result.Flags |= flags
}

func entityUsesArrayBrackets(e *Entity) bool { return e.Flags&EntityFlagUsesArrayBrackets != 0 }

// finalizeUnary back-fills a unary indirection/address-of entity's scope,
// datatype and offset from the entity it was applied to, then adjusts the
// datatype for the indirection/address step itself (spec.md §8's
// pointer_reduce invariant: pointer depth only ever drops to zero, never
// negative, clearing the pointer flag exactly when it does).
func (p *Process) finalizeUnary(entity *Entity) {
	prev := entity.Prev
	if prev == nil {
		return
	}

	entity.Scope = prev.Scope
	entity.Dtype = prev.Dtype
	entity.OffsetFromBP = prev.OffsetFromBP

	switch entity.Type {
	case EntityTypeUnaryIndirection:
		entity.Dtype.PointerDepth -= entity.Indirection.Depth
		if entity.Dtype.PointerDepth <= 0 {
			entity.Dtype.PointerDepth = 0
			entity.Dtype.Flags &^= datatype.FlagIsPointer
		}
	case EntityTypeUnaryGetAddress:
		entity.Dtype.Flags |= datatype.FlagIsPointer
		entity.Dtype.PointerDepth++
	}
}

func (p *Process) finalizeLastEntity(result *Result) {
	last := result.Peek()
	if last == nil {
		return
	}
	switch last.Type {
	case EntityTypeUnaryIndirection, EntityTypeUnaryGetAddress:
		p.finalizeUnary(last)
	}
}

func (p *Process) finalizeResult(result *Result) {
	first := result.Root()
	if first == nil {
		return
	}
	p.Callbacks.SetResultBase(result, first)
	p.finalizeResultFlags(result)
	p.finalizeLastEntity(result)
}
