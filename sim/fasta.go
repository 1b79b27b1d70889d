package sim

import (
	"fmt"
	"io"
)

// WriteFASTA emits r in spec.md §6.3's two-line format: a header line of
// ';'-delimited key=value meta fields, then the sequence.
func WriteFASTA(w io.Writer, r Read) error {
	_, err := fmt.Fprintf(w, ">pos=%d;sub=%d;ind=%d;vnd=%d;vbs=%d\n%s\n",
		r.Pos, r.Sub, r.Ind, r.Vnd, r.Vbs, r.Seq)
	return err
}
