package medspan

import (
	"log/slog"
	"regexp"
)

// Fallback pattern battery, used when no model backend is available. Only
// DRUG, DOSAGE and FREQUENCY are covered; the remaining four types are not
// reliably expressible as patterns, so fallback mode simply does not find
// them. That is an accepted accuracy degradation, not a defect.
var (
	// Common drug names that no morphology rule catches.
	reDrugLexicon = regexp.MustCompile(`(?i)\b(?:aspirin|ibuprofen|paracetamol|acetaminophen|amoxicillin|metformin|atorvastatin|simvastatin|lisinopril|omeprazole|warfarin|insulin|morphine|codeine|prednisone|levothyroxine|amlodipine|metoprolol|gabapentin|sertraline|fluoxetine|albuterol|furosemide|hydrochlorothiazide|clopidogrel|tramadol)\b`)

	// Drug-typical suffix morphology (penicillins, statins, beta blockers, ...).
	reDrugSuffix = regexp.MustCompile(`(?i)\b[a-z]{2,}(?:cillin|mycin|micin|azole|prazole|sartan|statin|dipine|olol|pril|oxetine|azepam|triptan|cycline|floxacin|dronate|parin|vir|mab|nib)\b`)

	// Amount followed by a unit, with or without a separating space.
	reDosageAmount = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:mg|mcg|µg|g|ml|l|units?|iu|meq|cc|puffs?|drops?|tab(?:let)?s?|cap(?:sule)?s?|sprays?)\b`)

	// Single-word schedules.
	reFreqWord = regexp.MustCompile(`(?i)\b(?:daily|nightly|weekly|monthly|hourly)\b`)
	// "twice a day", "three times per week", ...
	reFreqPhrase = regexp.MustCompile(`(?i)\b(?:once|twice|three times|four times)\s+(?:a|per)\s+(?:day|night|week|month|hour)\b`)
	// "every 4 hours", "every other day", "every morning", ...
	reFreqEvery = regexp.MustCompile(`(?i)\bevery\s+(?:\d+\s+(?:minutes?|hours?|days?|weeks?|months?)|other\s+day|morning|afternoon|evening|night|day|week|month)\b`)
	// Latin prescription shorthand.
	reFreqAbbrev = regexp.MustCompile(`(?i)\b(?:qd|bid|tid|qid|qhs|qam|qpm|prn|q\d+h)\b`)
)

type patternGroup struct {
	typ EntityType
	res []*regexp.Regexp
}

var patternGroups = []patternGroup{
	{typ: Drug, res: []*regexp.Regexp{reDrugLexicon, reDrugSuffix}},
	{typ: Dosage, res: []*regexp.Regexp{reDosageAmount}},
	{typ: Frequency, res: []*regexp.Regexp{reFreqPhrase, reFreqEvery, reFreqWord, reFreqAbbrev}},
}

// FallbackPatterns returns the pattern sources of the fallback battery,
// keyed by the entity type each group produces. The returned map is a copy.
func FallbackPatterns() map[EntityType][]string {
	out := make(map[EntityType][]string, len(patternGroups))
	for _, g := range patternGroups {
		srcs := make([]string, len(g.res))
		for i, re := range g.res {
			srcs[i] = re.String()
		}
		out[g.typ] = srcs
	}
	return out
}

// extractPatterns scans text with every pattern group and returns the
// matches as entities. Matches from different groups may overlap; exact
// duplicate spans of the same type are collapsed. A group that panics while
// matching is dropped for this text and the remaining groups still
// contribute.
func extractPatterns(text string, log *slog.Logger) []Entity {
	if text == "" {
		return nil
	}

	type spanKey struct {
		start, stop int
		typ         EntityType
	}
	seen := make(map[spanKey]bool)

	var ents []Entity
	for _, g := range patternGroups {
		matches := scanGroup(text, g, log)
		for _, e := range matches {
			k := spanKey{e.Start, e.Stop, e.Label}
			if seen[k] {
				continue
			}
			seen[k] = true
			ents = append(ents, e)
		}
	}
	return ents
}

// scanGroup runs one group's patterns over text, converting regexp byte
// offsets to the 1-based inclusive rune convention. The recover guard keeps
// a pathological pattern or input from taking down the whole call.
func scanGroup(text string, g patternGroup, log *slog.Logger) (ents []Entity) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("pattern group failed, skipping", "type", g.typ, "panic", r)
			ents = nil
		}
	}()

	for _, re := range g.res {
		for _, m := range re.FindAllStringIndex(text, -1) {
			start := byteToRune(text, m[0]) + 1
			stop := byteToRune(text, m[1])
			if start > stop {
				continue
			}
			ents = append(ents, Entity{
				Start: start,
				Stop:  stop,
				Label: g.typ,
				Text:  text[m[0]:m[1]],
			})
		}
	}
	return ents
}
