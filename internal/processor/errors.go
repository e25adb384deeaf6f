package processor

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL    = errors.New("invalid video url")
	ErrAcquisition   = errors.New("audio acquisition failed")
	ErrTranscription = errors.New("transcription failed")
	ErrSummarization = errors.New("summarization failed")
	ErrPersistence   = errors.New("history save failed")
)

// Stage names a pipeline step.
type Stage string

const (
	StageAcquisition   Stage = "acquisition"
	StageTranscription Stage = "transcription"
	StageSummarization Stage = "summarization"
	StagePersistence   Stage = "persistence"
)

// StageError is the failure of one pipeline step. Its message is the
// underlying error's message, unmodified.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the failed stage.
func (e *StageError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *StageError) sentinel() error {
	switch e.Stage {
	case StageAcquisition:
		return ErrAcquisition
	case StageTranscription:
		return ErrTranscription
	case StageSummarization:
		return ErrSummarization
	case StagePersistence:
		return ErrPersistence
	default:
		return nil
	}
}

func stageFailure(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf reports which step err came from, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func invalidURL(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidURL, reason)
}
