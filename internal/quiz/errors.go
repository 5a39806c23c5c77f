package quiz

import "errors"

var (
	// ErrNoContentIndexed means the course has no chunks to generate from.
	ErrNoContentIndexed = errors.New("course has no indexed content")

	// ErrAlreadySubmitted means the quiz already has a result.
	ErrAlreadySubmitted = errors.New("quiz already submitted")

	// ErrOwnership means the submission's student does not own the quiz.
	ErrOwnership = errors.New("quiz belongs to another student")

	// ErrNotFound is returned by repositories for missing records.
	ErrNotFound = errors.New("not found")
)
