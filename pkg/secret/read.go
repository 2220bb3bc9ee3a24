package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/Blue-Moss-Labs/Mangle/pkg/wipe"
)

// stdinReader is shared across non-terminal password reads so a second
// prompt does not lose input buffered by the first.
var stdinReader *bufio.Reader

// NewFromReader reads at most limit bytes from r into a buffer. It returns
// an error if the source is empty or holds more than limit bytes. The
// intermediate read buffer is zeroed before returning.
func NewFromReader(r io.Reader, limit int64) (*Buffer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("secret: read limit must be positive, got %d", limit)
	}

	// Read one byte past the limit so an oversized source is detectable.
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		wipe.Zero(data)
		return nil, fmt.Errorf("secret: reading source: %w", err)
	}
	if int64(len(data)) > limit {
		wipe.Zero(data)
		return nil, fmt.Errorf("secret: source exceeds %d byte limit", limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("secret: source is empty")
	}

	// NewFromBytes copies into protected memory and zeroes data.
	return NewFromBytes(data)
}

// ReadFromPath reads a secret from a file path, or from stdin if path is
// "-". Leading and trailing whitespace is trimmed before storing, and every
// intermediate copy is zeroed. Returns an error if the source is empty
// after trimming.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("secret: reading stdin: %w", err)
			}
			return nil, fmt.Errorf("secret: stdin is empty")
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("secret: %w", err)
		}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		wipe.Zero(data)
		return nil, fmt.Errorf("secret: source is empty")
	}

	// NewFromBytes copies into protected memory and zeroes trimmed. The
	// whitespace prefix and suffix are not covered by trimmed, so zero the
	// full read afterwards.
	buffer, err := NewFromBytes(trimmed)
	wipe.Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// ReadPassword prompts on stderr and reads a password from stdin. When
// stdin is a terminal, echo is disabled for the read. The raw input is
// moved into a buffer and zeroed.
func ReadPassword(prompt string) (*Buffer, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Not a terminal, read a line directly. The shared reader keeps
		// buffered input intact across multiple prompts.
		if stdinReader == nil {
			stdinReader = bufio.NewReader(os.Stdin)
		}
		line, err := stdinReader.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, fmt.Errorf("secret: reading password: %w", err)
		}
		// Handle both \n and \r\n line endings.
		line = bytes.TrimSuffix(line, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(line) == 0 {
			return nil, fmt.Errorf("secret: password is empty")
		}
		return NewFromBytes(line)
	}

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		wipe.Zero(password)
		return nil, fmt.Errorf("secret: reading password: %w", err)
	}
	if len(password) == 0 {
		return nil, fmt.Errorf("secret: password is empty")
	}

	return NewFromBytes(password)
}
