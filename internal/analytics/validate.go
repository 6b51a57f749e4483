package analytics

import (
	"errors"
	"fmt"

	"github.com/dexlab/dexlab/pkg/types"
)

// Record shape violations reported by Validate.
var (
	ErrNoTypes          = errors.New("record has no types")
	ErrNegativeBST      = errors.New("bst is negative")
	ErrCaptureRateRange = errors.New("capture rate outside 0..255")
)

// Validate checks that every record carries the fields Analyze relies on.
// It returns the first violation found, naming the record.
func Validate(roster []types.Pokemon) error {
	for _, p := range roster {
		var err error
		switch {
		case len(p.Types) == 0:
			err = ErrNoTypes
		case p.BST < 0:
			err = ErrNegativeBST
		case p.CaptureRate < 0 || p.CaptureRate > 255:
			err = ErrCaptureRateRange
		}
		if err != nil {
			return fmt.Errorf("analytics: #%d %s: %w", p.ID, p.Name, err)
		}
	}
	return nil
}

// AnalyzeStrict validates roster and, if it is well formed, analyzes it.
func (e *Engine) AnalyzeStrict(roster []types.Pokemon) (Report, error) {
	if err := Validate(roster); err != nil {
		return Report{}, err
	}
	return e.Analyze(roster), nil
}
