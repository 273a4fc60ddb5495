package wad

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/repeale/fp-go/option"
)

// PrintTree writes the level's BSP as an indented tree, root first, right child before
// left.
func PrintTree(w io.Writer, l *Level) error {
	if len(l.Nodes) == 0 {
		_, err := fmt.Fprintln(w, "- subsector 0")
		return err
	}

	var printRecursive func(child uint16, prefix string, depth int) error
	printRecursive = func(child uint16, prefix string, depth int) error {
		if child&SubsectorFlag != 0 {
			id := int(child &^ SubsectorFlag)
			if opt.IsNone(l.Subsector(id)) {
				return errors.Wrapf(ErrCorruptBSP, "subsector %d out of range", id)
			}
			ss := l.Subsectors[id]
			_, err := fmt.Fprintf(w, "%s- subsector %d (%d segs from %d)\n", prefix, id, ss.NumSegments, ss.FirstSegment)
			return err
		}
		if int(child) >= len(l.Nodes) {
			return errors.Wrapf(ErrCorruptBSP, "node %d out of range", child)
		}
		if depth > len(l.Nodes) {
			return errors.Wrapf(ErrCorruptBSP, "node %d: tree deeper than node count", child)
		}
		n := l.Nodes[child]
		if _, err := fmt.Fprintf(w, "%s- node %d (%d,%d)+(%d,%d)\n", prefix, child, n.X, n.Y, n.DX, n.DY); err != nil {
			return err
		}
		if err := printRecursive(n.RightChild, prefix+"   ", depth+1); err != nil {
			return err
		}
		return printRecursive(n.LeftChild, prefix+"   ", depth+1)
	}

	return printRecursive(uint16(len(l.Nodes)-1), "", 0)
}
