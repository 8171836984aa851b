package feed

import "strconv"

// CursorCodec encodes pagination state as an opaque token.
//
// A cursor is a non-negative offset into the deterministically ordered
// candidate sequence for a given strategy and filter set. Cursors are not
// portable across strategies or filter combinations; callers must pass the
// same filters on every page of one walk.
type CursorCodec struct{}

// Decode parses a cursor token into an offset.
//
// A malformed, negative, or empty token decodes to offset 0. Decoding never
// fails; a bad cursor restarts the walk from the beginning rather than
// surfacing an error.
func (CursorCodec) Decode(token string) int {
	if token == "" {
		return 0
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// Encode renders an offset as a cursor token.
func (CursorCodec) Encode(offset int) string {
	if offset < 0 {
		offset = 0
	}
	return strconv.Itoa(offset)
}
