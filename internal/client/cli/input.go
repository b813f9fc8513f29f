package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword    = term.ReadPassword
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// paragraphEnd terminates a multi-line answer.
const paragraphEnd = "."

// ReadLine writes "label: " to w and returns the next trimmed line from r.
// A last line without a trailing newline still counts as an answer.
func ReadLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	line, err := r.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
	default:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret reads a password. On a terminal the input is not echoed; piped
// input is read as a plain line from r. The caller wipes the result.
func ReadSecret(r *bufio.Reader, w io.Writer, label string) ([]byte, error) {
	if !stdinIsTerminal() {
		line, err := ReadLine(r, w, label)
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}

	fmt.Fprintf(w, "%s: ", label)
	secret, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return secret, nil
}

// ReadParagraph collects lines until one holding only "." or EOF. Blank lines
// inside the text are kept. An empty first line returns current unchanged.
func ReadParagraph(r *bufio.Reader, w io.Writer, label, current string) (string, error) {
	fmt.Fprintf(w, "%s (finish with a single %q line, Enter keeps current)\n", label, paragraphEnd)
	if current != "" {
		fmt.Fprintf(w, "current:\n%s\n", current)
	}

	var b strings.Builder
	for first := true; ; first = false {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		text := strings.TrimRight(line, "\r\n")
		if first && text == "" {
			return current, nil
		}
		if text == paragraphEnd {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(b.String()), nil
}
