package storage

import "errors"

// ErrNoSnapshot is returned when no ingestion snapshot has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// ErrInvalidSupplemental is returned when a supplemental record is missing
// its question or answer.
var ErrInvalidSupplemental = errors.New("supplemental record requires a question and an answer")
