package reader

import "errors"

var (
	// ErrArchive indicates the file is not a readable zip container.
	ErrArchive = errors.New("reader: not a valid epub archive")

	// ErrPageOutOfRange is returned for a page number past the end of the book.
	ErrPageOutOfRange = errors.New("reader: page out of range")

	// ErrPercentOutOfRange is returned for a percentage outside [0, 100].
	ErrPercentOutOfRange = errors.New("reader: percentage out of range")
)
