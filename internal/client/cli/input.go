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

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads one line from reader, trimmed.
// A final line without a newline is accepted.
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal without echo. The caller
// should wipe the returned slice.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetChoice prompts with the allowed values and returns the chosen one; an
// empty answer yields def. Unknown answers are rejected.
func GetChoice(reader *bufio.Reader, prompt string, choices []string, def string, w io.Writer) (string, error) {
	answer, err := getSimpleText(reader, fmt.Sprintf("%s [%s] (default %s)", prompt, strings.Join(choices, "/"), def), w)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	for _, c := range choices {
		if strings.EqualFold(c, answer) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChoice, answer)
}
