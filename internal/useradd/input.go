package useradd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/kubelearn/internal/shared"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

// promptPassword asks twice on the terminal behind fd and returns the
// password when both entries match. The caller wipes the result.
func promptPassword(fd int, w io.Writer) ([]byte, error) {
	first, err := readOnce(fd, w, "Password: ")
	if err != nil {
		return nil, err
	}
	second, err := readOnce(fd, w, "Repeat password: ")
	if err != nil {
		shared.WipeByteArray(first)
		return nil, err
	}
	defer shared.WipeByteArray(second)

	if string(first) != string(second) {
		shared.WipeByteArray(first)
		return nil, errPasswordMismatch
	}
	return first, nil
}

func readOnce(fd int, w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

// readLine reads one line from r, for passwords piped on stdin. A last line
// without a newline is accepted.
func readLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
