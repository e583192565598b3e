package snapshot

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Fingerprint hashes the canonical JSON form of s. Equal snapshots have
// equal fingerprints; map keys are encoded in sorted order.
func (s Snapshot) Fingerprint() uint64 {
	data, _ := json.Marshal(s)
	return xxhash.Sum64(data)
}

// FingerprintHex is Fingerprint formatted for display and cache keys.
func (s Snapshot) FingerprintHex() string {
	return strconv.FormatUint(s.Fingerprint(), 16)
}

// Diff returns a line diff of the YAML forms of a and b, with "-" and "+"
// prefixes on removed and added lines. Equal snapshots give "".
func Diff(a, b Snapshot) (string, error) {
	left, err := a.YAML()
	if err != nil {
		return "", err
	}
	right, err := b.YAML()
	if err != nil {
		return "", err
	}
	if string(left) == string(right) {
		return "", nil
	}

	dmp := diffmatchpatch.New()
	l, r, lines := dmp.DiffLinesToChars(string(left), string(right))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(l, r, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				out.WriteByte('\n')
			}
		}
	}
	return out.String(), nil
}
