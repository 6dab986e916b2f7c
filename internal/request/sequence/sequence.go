// Package sequence derives human-readable PO numbers of the form
// PREFIX-YYMM-NNNN. Numbering is scoped to a year-month bucket: the
// sequence increments by one within a bucket and resets to 1 when the
// bucket changes.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/procurehq/intake/internal/request/domain"
)

// Bucket returns the year-month bucket key for t, e.g. "2501" for
// January 2025.
func Bucket(t time.Time) string {
	return t.Format("0601")
}

// Format renders a PO number from its parts. The sequence is zero-padded
// to four digits.
func Format(prefix, bucket string, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, bucket, seq)
}

// Parse splits a PO number into its bucket key and sequence number.
// It returns domain.ErrCorruptSequence when id does not match
// prefix-BUCKET-NNNN.
func Parse(prefix, id string) (string, int, error) {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q has no %q prefix", domain.ErrCorruptSequence, id, prefix)
	}
	bucket, seqText, ok := strings.Cut(rest, "-")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q has no sequence part", domain.ErrCorruptSequence, id)
	}
	if len(bucket) != 4 || !digits(bucket) {
		return "", 0, fmt.Errorf("%w: %q has malformed bucket %q", domain.ErrCorruptSequence, id, bucket)
	}
	seq, err := strconv.Atoi(seqText)
	if err != nil || seq < 1 {
		return "", 0, fmt.Errorf("%w: %q has malformed sequence %q", domain.ErrCorruptSequence, id, seqText)
	}
	return bucket, seq, nil
}

// Next computes the identifier following last for the bucket containing
// now. An empty last means the store holds no records yet and yields
// sequence 1. A malformed last is surfaced as domain.ErrCorruptSequence
// rather than silently restarting the sequence, which could mint a
// duplicate identifier after a corrupt write.
func Next(prefix, last string, now time.Time) (string, error) {
	bucket := Bucket(now)
	if last == "" {
		return Format(prefix, bucket, 1), nil
	}
	lastBucket, lastSeq, err := Parse(prefix, last)
	if err != nil {
		return "", err
	}
	if lastBucket != bucket {
		return Format(prefix, bucket, 1), nil
	}
	return Format(prefix, bucket, lastSeq+1), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
