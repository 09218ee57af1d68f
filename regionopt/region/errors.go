package region

import "errors"

// Callers match these with errors.Is. ErrInvalidSector and ErrInvalidLength
// mean the region file itself is corrupt for that cell; the rest of the file
// stays usable. ErrChunkTooLarge and ErrOutOfBounds reject caller input
// before anything is mutated.
var (
	ErrNotFound      = errors.New("region file does not exist")
	ErrReadOnly      = errors.New("region file is read-only")
	ErrOutOfBounds   = errors.New("chunk coordinate out of bounds")
	ErrInvalidSector = errors.New("invalid sector")
	ErrInvalidLength = errors.New("invalid chunk length")
	ErrChunkTooLarge = errors.New("maximum chunk size is 1MB")
)
