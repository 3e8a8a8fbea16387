package invoice

import (
	"errors"
	"fmt"
)

// ErrUnparseableTable marks a table region whose recognized text had fewer
// than two non-empty lines. It is stored as the table's value, not returned.
var ErrUnparseableTable = errors.New("unable to parse table")

// Stage names the external collaborator that failed.
type Stage string

const (
	StageLoad      Stage = "load"
	StageDetect    Stage = "detect"
	StageRecognize Stage = "recognize"
)

// CollaboratorError reports a failure of the image loader, detector or
// recognizer. It is the only error that aborts processing of a document.
type CollaboratorError struct {
	Stage   Stage
	ImageID string
	Label   string // region label, set for StageRecognize
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s failed for %s (region %s): %v", e.Stage, e.ImageID, e.Label, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.ImageID, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
