package domain

// Record is a single pre-serialized event payload. The engine treats it
// as opaque: the bytes are trusted verbatim and are never re-parsed or
// re-validated. Producers must supply compact, single-line fragments
// with no unescaped brackets or newlines, since records are joined into
// composite payloads by naive concatenation.
type Record string

// Size returns the byte length of the record.
func (r Record) Size() int {
	return len(r)
}
