package medspan

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ProcessFile reads a clinical note from disk and extracts entities from
// it. Only plain-text content is accepted; binary formats (PDF, DOCX,
// images) return ErrUnsupportedContent; converting those to text is the
// caller's concern.
func (x *Extractor) ProcessFile(ctx context.Context, path string) (*Document, error) {
	text, err := readTextFile(path)
	if err != nil {
		return nil, err
	}
	return x.Process(ctx, text)
}

// ProcessFiles reads each file and extracts entities from all of them,
// order-preserving. Reading happens up front so a bad file fails the call
// before any inference runs.
func (x *Extractor) ProcessFiles(ctx context.Context, paths []string) ([]*Document, error) {
	texts := make([]string, len(paths))
	for i, path := range paths {
		text, err := readTextFile(path)
		if err != nil {
			return nil, err
		}
		texts[i] = text
	}
	return x.ProcessBatch(ctx, texts)
}

// readTextFile loads a file and verifies by content sniffing that it holds
// plain text.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", nil
	}
	mtype := mimetype.Detect(data)
	if !isTextMIME(mtype) {
		return "", fmt.Errorf("%s: detected %s: %w", path, mtype.String(), ErrUnsupportedContent)
	}
	return string(data), nil
}

// isTextMIME walks the detected type and its parents looking for text/plain,
// so subtypes like text/csv or application/json pass as well.
func isTextMIME(mtype *mimetype.MIME) bool {
	for t := mtype; t != nil; t = t.Parent() {
		if t.Is("text/plain") {
			return true
		}
	}
	return strings.HasPrefix(mtype.String(), "text/")
}
