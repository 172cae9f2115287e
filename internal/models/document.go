package models

import "errors"

var (
	// ErrMalformedEdit reports a change whose offset span falls outside the
	// document it is applied to. The whole batch is rejected.
	ErrMalformedEdit = errors.New("malformed edit")

	// ErrDocumentTooLarge reports a batch whose result would exceed the
	// configured document size cap.
	ErrDocumentTooLarge = errors.New("document too large")
)

// DefaultMaxDocumentBytes caps document growth at 1 MiB unless configured.
const DefaultMaxDocumentBytes = 1 << 20

// ApplyChanges splices each change into text left to right. Offsets count
// characters, not bytes, and each change is validated against the result of
// the previous one. Any invalid change rejects the batch and returns text
// unchanged; a partial prefix is never applied.
func ApplyChanges(text string, changes []Change, maxBytes int) (string, error) {
	doc := []rune(text)
	for _, change := range changes {
		if change.RangeOffset < 0 || change.RangeLength < 0 || change.RangeOffset+change.RangeLength > len(doc) {
			return text, ErrMalformedEdit
		}
		insert := []rune(change.Text)
		next := make([]rune, 0, len(doc)-change.RangeLength+len(insert))
		next = append(next, doc[:change.RangeOffset]...)
		next = append(next, insert...)
		next = append(next, doc[change.RangeOffset+change.RangeLength:]...)
		doc = next
	}
	out := string(doc)
	if maxBytes > 0 && len(out) > maxBytes {
		return text, ErrDocumentTooLarge
	}
	return out, nil
}
