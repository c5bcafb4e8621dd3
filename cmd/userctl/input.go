package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword
var readPassword = term.ReadPassword

// GetSimpleText prints prompt to w and reads one trimmed line from reader.
// A final line without newline is accepted.
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

// GetPassword reads a password from the terminal without echo.
// The caller should wipe the returned slice.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetNewPassword asks twice and fails when the entries differ
func GetNewPassword(w io.Writer, username string) ([]byte, error) {
	first, err := GetPassword(w, fmt.Sprintf("Password for %s", username))
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, errors.New("password must not be empty")
	}

	second, err := GetPassword(w, "Repeat password")
	if err != nil {
		wipe(first)
		return nil, err
	}
	defer wipe(second)

	if string(first) != string(second) {
		wipe(first)
		return nil, errors.New("passwords do not match")
	}

	return first, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
