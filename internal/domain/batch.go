package domain

import "strings"

// Batch is an ordered sequence of records awaiting flush. It maintains
// the invariant that TotalBytes equals the sum of the sizes of the
// records it holds.
//
// A Batch is not safe for concurrent use; callers serialize access
// through the accumulator.
type Batch struct {
	records    []Record
	totalBytes int
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{records: make([]Record, 0)}
}

// Append adds a record to the tail of the batch.
func (b *Batch) Append(r Record) {
	b.records = append(b.records, r)
	b.totalBytes += r.Size()
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	return len(b.records)
}

// Empty returns true if the batch holds no records.
func (b *Batch) Empty() bool {
	return len(b.records) == 0
}

// TotalBytes returns the sum of record sizes in the batch.
func (b *Batch) TotalBytes() int {
	return b.totalBytes
}

// Records returns the records in submission order. The returned slice
// is the batch's backing store; callers only read it after the batch
// has been detached from the accumulator.
func (b *Batch) Records() []Record {
	return b.records
}

// Payload serializes the batch into one composite payload: each record
// joined with a literal comma, wrapped in a single pair of brackets.
// Records A and B become "[A,B]". The fragments are trusted byte for
// byte; a malformed record corrupts the payload, which is the
// compatibility contract inherited from the original wire format.
func (b *Batch) Payload() string {
	var sb strings.Builder
	sb.Grow(b.totalBytes + len(b.records) + 1)
	sb.WriteByte('[')
	for i, r := range b.records {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(string(r))
	}
	sb.WriteByte(']')
	return sb.String()
}
