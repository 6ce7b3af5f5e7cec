// Package source loads translation units from disk or standard input.
package source

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// StdinName is the display name used for input read from "-".
const StdinName = "<stdin>"

// File is an immutable source buffer.
type File struct {
	Name string
	Data []byte
}

// FromString wraps text as a named buffer.
func FromString(name, text string) *File {
	return &File{Name: name, Data: []byte(text)}
}

// Read loads path, or stdin when path is "-".
func Read(path string, stdin io.Reader) (*File, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "read standard input")
		}
		return &File{Name: StdinName, Data: data}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return &File{Name: path, Data: data}, nil
}
