package utf8stream

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the buffer size used when none is configured.
const DefaultChunkSize = 256

// maxConsecutiveEmptyReads matches bufio: a reader returning (0, nil) this
// many times in a row is treated as broken.
const maxConsecutiveEmptyReads = 100

// ErrMalformedStream is matched by every *MalformedError.
var ErrMalformedStream = errors.New("utf8stream: malformed utf-8")

// MalformedError reports invalid UTF-8 in the stream. Offset is the byte
// position of the first byte that could not be decoded. Truncated is set
// when the stream ended inside a multi-byte character.
type MalformedError struct {
	Offset    int64
	Truncated bool
}

func (e *MalformedError) Error() string {
	if e.Truncated {
		return fmt.Sprintf("utf8stream: stream ended inside a multi-byte character at byte %d", e.Offset)
	}
	return fmt.Sprintf("utf8stream: invalid utf-8 at byte %d", e.Offset)
}

// Is matches ErrMalformedStream.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedStream
}

// IncompleteError reports that the underlying reader failed before end of
// stream. The text returned alongside it is valid but possibly incomplete.
type IncompleteError struct {
	Err error
}

func (e *IncompleteError) Error() string {
	return "utf8stream: read interrupted: " + e.Err.Error()
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

// Reader decodes a stream chunk by chunk.
type Reader struct {
	// ChunkSize is the number of bytes requested per read. Values below
	// utf8.UTFMax are raised to it so a pending tail always leaves room for
	// at least one more byte.
	ChunkSize int
}

// ReadAll reads r to EOF using chunks of chunkSize bytes.
func ReadAll(r io.Reader, chunkSize int) (string, error) {
	return Reader{ChunkSize: chunkSize}.ReadAll(r)
}

// ReadAll reads r to EOF and returns the decoded text.
//
// On malformed input it returns an empty string and a *MalformedError. If r
// fails with anything other than io.EOF it returns the text decoded so far
// and an *IncompleteError.
func (c Reader) ReadAll(r io.Reader) (string, error) {
	size := c.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	buf := make([]byte, size)

	var (
		text     strings.Builder
		tail     int
		consumed int64
		empty    int
	)
	for {
		n, err := r.Read(buf[tail:])
		if n > 0 {
			empty = 0
			data := buf[:tail+n]
			k, ok := validPrefix(data)
			if !ok {
				return "", &MalformedError{Offset: consumed + int64(k)}
			}
			text.Write(data[:k])
			consumed += int64(k)
			// pending bytes move to the front; copy handles the overlap
			tail = copy(buf, data[k:])
		}

		switch {
		case err == io.EOF:
			if tail > 0 {
				return "", &MalformedError{Offset: consumed, Truncated: true}
			}
			return text.String(), nil
		case err != nil:
			return text.String(), &IncompleteError{Err: err}
		case n == 0:
			empty++
			if empty >= maxConsecutiveEmptyReads {
				return text.String(), &IncompleteError{Err: io.ErrNoProgress}
			}
		}
	}
}

// validPrefix returns the length of the longest prefix of data made of
// complete characters. ok is false when the bytes after that prefix can
// never become valid UTF-8; when ok is true they are at most three bytes
// starting a character that the next read may complete.
func validPrefix(data []byte) (k int, ok bool) {
	if utf8.Valid(data) {
		return len(data), true
	}
	i := 0
	for i < len(data) {
		if data[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i, !utf8.FullRune(data[i:])
		}
		i += size
	}
	return i, true
}
