package resolver

// ruleApply copies a rule entity's per-side flags onto its actual left and
// right neighbors in the chain.
func ruleApply(rule, left, right *Entity) {
	if left != nil {
		left.Flags |= rule.Rule.Left.Flags
	}
	if right != nil {
		right.Flags |= rule.Rule.Right.Flags
	}
}

// executeRules walks the chain tail-to-head applying every rule entity's
// flags to its neighbors, then removes the rule entities from the chain —
// they're bookkeeping for this pass only, never a real address step (they
// carry no Dtype/offset of their own).
func (p *Process) executeRules(result *Result) {
	var kept []*Entity
	entity := result.Pop()
	var lastProcessed *Entity
	for entity != nil {
		if entity.Type == EntityTypeRule {
			left := result.Pop()
			ruleApply(entity, left, lastProcessed)
			entity = left
		}

		kept = append(kept, entity)
		lastProcessed = entity
		entity = result.Pop()
	}

	for i := len(kept) - 1; i >= 0; i-- {
		result.Push(kept[i])
	}
}

// mergeEntityPair asks the codegen callback whether left and right collapse
// into one entity (e.g. folding a literal array index into the preceding
// variable's offset), honoring each side's no-merge flags first.
func (p *Process) mergeEntityPair(result *Result, left, right *Entity) *Entity {
	if left == nil || right == nil {
		return nil
	}
	if left.Flags&EntityFlagNoMergeWithNext != 0 || right.Flags&EntityFlagNoMergeWithLeft != 0 {
		return nil
	}
	return p.Callbacks.MergeEntities(p, result, left, right)
}

// mergeCompileTimesOnce is one tail-to-head sweep of the chain, merging
// whatever adjacent pairs it can and leaving the rest marked so they aren't
// retried against the same neighbor next sweep.
func (p *Process) mergeCompileTimesOnce(result *Result) {
	var saved []*Entity
	for {
		right := result.Pop()
		left := result.Pop()
		if right == nil {
			break
		}
		if left == nil {
			result.Push(right)
			break
		}

		if merged := p.mergeEntityPair(result, left, right); merged != nil {
			result.Push(merged)
			continue
		}

		right.Flags |= EntityFlagNoMergeWithLeft
		saved = append(saved, right)
		result.Push(left)
	}

	for i := len(saved) - 1; i >= 0; i-- {
		result.Push(saved[i])
	}
}

// mergeCompileTimes repeats mergeCompileTimesOnce to a fixed point: each
// sweep can only shrink the chain or leave it unchanged, so stop once a
// sweep changes nothing (spec.md §8's entity-list-merge-is-a-fixed-point
// invariant) or the chain is down to one entity.
func (p *Process) mergeCompileTimes(result *Result) {
	for {
		before := result.Count()
		p.mergeCompileTimesOnce(result)
		if before == 1 || before == result.Count() {
			return
		}
	}
}
