package medspan

// partialEntity is the single entity under construction while walking a
// token sequence. Offsets stay in the tokenizer's 0-based half-open rune
// convention until finalization.
type partialEntity struct {
	start int
	end   int
	typ   EntityType
}

// reconstruct merges a token-aligned BIO label sequence into entity spans.
// Tokens must be ordered by position and non-overlapping; both are
// guaranteed by the tokenizers behind TokenLabeler.
//
// The walk keeps at most one open entity:
//
//   - "O", a marker, or an unknown type suffix closes the open entity.
//   - "B-<TYPE>" closes the open entity and opens a new one.
//   - "I-<TYPE>" matching the open entity's type extends its end; gaps
//     between token spans are absorbed because offsets come from the
//     tokenizer's own span map.
//   - A dangling "I-<TYPE>" (nothing open, or a type mismatch) is repaired
//     by treating it as "B-<TYPE>". Real model output contains these and
//     dropping them loses entities.
func reconstruct(text string, tokens []TokenLabel) []Entity {
	total := runeLen(text)

	var ents []Entity
	var cur *partialEntity

	finalize := func() {
		if cur == nil {
			return
		}
		if e, ok := cur.close(text, total); ok {
			ents = append(ents, e)
		}
		cur = nil
	}

	for _, tok := range tokens {
		// Sequence markers carry no span and never close an open entity.
		if tok.End <= tok.Start || isMarkerTag(tok.Tag) {
			continue
		}
		prefix, typ, ok := parseTag(tok.Tag)
		if !ok {
			finalize()
			continue
		}
		if prefix == 'I' && cur != nil && cur.typ == typ {
			cur.end = tok.End
			continue
		}
		finalize()
		cur = &partialEntity{start: tok.Start, end: tok.End, typ: typ}
	}
	finalize()

	return ents
}

// close converts the accumulated 0-based half-open span into a public
// Entity with 1-based inclusive offsets. This is the only place the
// conversion happens. Spans that fall entirely outside the text after
// clamping are discarded.
func (p *partialEntity) close(text string, total int) (Entity, bool) {
	start := p.start + 1
	stop := p.end
	if start < 1 {
		start = 1
	}
	if stop > total {
		stop = total
	}
	if start > stop {
		return Entity{}, false
	}
	return Entity{
		Start: start,
		Stop:  stop,
		Label: p.typ,
		Text:  sliceRunes(text, start, stop),
	}, true
}
