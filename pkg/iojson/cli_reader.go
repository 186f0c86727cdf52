package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const defaultFileUsage = "path to JSON file (reads from stdin if not provided)"

// FileReader decodes a single JSON document of type T from the file named by
// its --file flag, or from stdin when the flag is empty. Unknown top-level
// keys and trailing data are rejected.
type FileReader[T any] struct {
	// Usage describes the expected document in --help.
	Usage string
	// Stdin replaces os.Stdin when set.
	Stdin io.Reader

	path string
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	usage := fr.Usage
	if usage == "" {
		usage = defaultFileUsage
	}
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       usage,
		Destination: &fr.path,
	}
}

func (fr *FileReader[T]) Read() (T, error) {
	var input T

	reader, closer, err := fr.open()
	if err != nil {
		return input, err
	}
	defer closer()

	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return input, errors.New("decode JSON: input is empty")
		}
		return input, fmt.Errorf("decode JSON: %w", err)
	}
	if dec.More() {
		return input, errors.New("decode JSON: unexpected data after the document")
	}

	return input, nil
}

func (fr *FileReader[T]) open() (io.Reader, func(), error) {
	switch {
	case fr.path != "":
		f, err := os.Open(fr.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", fr.path, err)
		}
		return f, func() { _ = f.Close() }, nil
	case fr.Stdin != nil:
		return fr.Stdin, func() {}, nil
	case term.IsTerminal(int(os.Stdin.Fd())):
		return nil, nil, errors.New("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
	default:
		return os.Stdin, func() {}, nil
	}
}
