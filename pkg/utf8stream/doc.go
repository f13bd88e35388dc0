// Package utf8stream reassembles text from a byte stream read in fixed-size
// chunks without ever splitting a multi-byte UTF-8 character.
//
// Network bodies arrive in reads whose boundaries have nothing to do with
// character boundaries. A chunk may end in the middle of a two, three or
// four byte sequence. The reader keeps such an incomplete trailing sequence
// (at most three bytes) at the start of its buffer and reads the next chunk
// behind it, so only fully decoded characters ever reach the accumulated
// text.
//
// # Usage
//
//	text, err := utf8stream.ReadAll(resp.Body, utf8stream.DefaultChunkSize)
//	switch {
//	case errors.Is(err, utf8stream.ErrMalformedStream):
//	    // invalid or truncated UTF-8; text is empty and must not be used
//	case err != nil:
//	    // *IncompleteError: the stream failed mid-way, text is what was
//	    // decoded before the failure
//	}
package utf8stream
