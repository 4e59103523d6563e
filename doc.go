// Package medspan extracts structured medication entities from unstructured
// clinical text: drug names, strengths, dosages, durations, frequencies,
// forms and routes, each as a typed, character-span-accurate slice of the
// original note.
//
// # Problem Statement
//
// Clinical notes bury prescription facts in free text ("Take 10mg aspirin
// daily for two weeks"). EHR pipelines need those facts as typed spans they
// can anchor back to the source, which means two hard problems:
//
//   - Merging sub-word model predictions: transformer NER models emit one
//     BIO tag per token piece, and turning those into clean entity spans
//     means handling merge boundaries, marker tokens, and the malformed tag
//     sequences real models produce.
//   - Staying available without a model: when no model can be loaded the
//     pipeline should degrade to pattern matching, not fail.
//
// # Basic Usage
//
// Construct an Extractor once and process texts from any goroutine:
//
//	ctx := context.Background()
//	ex, err := medspan.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, _ := ex.Process(ctx, "Take 10mg aspirin daily")
//	for _, e := range doc.Entities {
//	    fmt.Println(e) // DOSAGE("10mg")[6:9], DRUG("aspirin")[11:17], ...
//	}
//
// New tries each model in DefaultModelCandidates (preceded by WithModel's
// choice, if any) and transparently falls back to the built-in regex
// battery when none loads. Strict callers disable that:
//
//	ex, err := medspan.New(ctx,
//	    medspan.WithModel("Clinical-AI-Apollo/Medical-NER"),
//	    medspan.WithoutFallback(),
//	)
//	if errors.Is(err, medspan.ErrStrictLoadFailed) {
//	    // the named model is unavailable; nothing was silently degraded
//	}
//
// # Offsets
//
// Entity offsets are 1-based inclusive rune positions, so for every entity
// the invariant holds that its Text equals the rune slice of the document
// text at [Start, Stop], including for arbitrary unicode input.
//
// # Batch Processing
//
// ProcessBatch fans texts out across a Runner (errgroup-backed by default)
// and chunks model inference by the configured batch size:
//
//	docs, err := ex.ProcessBatch(ctx, notes)
//
// Results are order-preserving and deterministic: the same text always
// yields the same entities, batched or not.
//
// # Backends
//
// The default Loader builds hugot ONNX token-classification pipelines. Any
// backend implementing TokenLabeler can be swapped in via WithLabeler,
// including the optional generative-model annotator (NewLLMAnnotator).
// Pattern-only operation needs no backend at all and covers DRUG, DOSAGE
// and FREQUENCY.
package medspan
