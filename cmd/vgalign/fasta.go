package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"vargo/external"
	"vargo/internal/errs"
)

// loadFASTA reads a plain multi-record FASTA file into memory. This is the
// CLI's own minimal loader, not the "FASTA indexer" external collaborator
// spec.md §1 scopes out of this system: it exists only so the command line
// has something to hand builder.Build as an external.ReferenceProvider,
// grounded on the teacher's ReadSequence (dna_aligner/io/reader.go), widened
// from a single raw sequence to '>'-delimited multi-record parsing.
func loadFASTA(path string) (*external.InMemoryReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vgalign: %w: %w", errs.ErrInvalidInput, err)
	}
	defer f.Close()

	var order []string
	seqs := make(map[string]string)
	var cur string
	var b strings.Builder

	flush := func() {
		if cur != "" {
			seqs[cur] = b.String()
			b.Reset()
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("vgalign: %w: empty FASTA header line", errs.ErrInvalidInput)
			}
			cur = fields[0]
			order = append(order, cur)
			continue
		}
		if cur == "" {
			return nil, fmt.Errorf("vgalign: %w: FASTA data before any header line", errs.ErrInvalidInput)
		}
		b.WriteString(strings.TrimSpace(line))
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vgalign: %w: %w", errs.ErrResource, err)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("vgalign: %w: empty FASTA file %q", errs.ErrInvalidInput, path)
	}
	return external.NewInMemoryReference(order, seqs), nil
}
