package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

type formFile struct {
	field    string
	filename string
	open     func() (io.ReadCloser, error)
}

// Form is a multipart body. Fields and files are written in the order added.
type Form struct {
	fields [][2]string
	files  []formFile
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{}
}

// Set appends a text field
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// AddFile attaches the file at path, read when the form is sent
func (f *Form) AddFile(field, path string) *Form {
	f.files = append(f.files, formFile{
		field:    field,
		filename: filepath.Base(path),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	})
	return f
}

// AddFileContent attaches in-memory content under filename
func (f *Form) AddFileContent(field, filename string, content []byte) *Form {
	f.files = append(f.files, formFile{
		field:    field,
		filename: filename,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	})
	return f
}

// Value returns the first value of a text field
func (f *Form) Value(name string) (string, bool) {
	for _, kv := range f.fields {
		if kv[0] == name {
			return kv[1], true
		}
	}
	return "", false
}

// FileCount is the number of attached files
func (f *Form) FileCount() int {
	return len(f.files)
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}

	for _, file := range f.files {
		if err := writeFile(w, file); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, file formFile) error {
	r, err := file.open()
	if err != nil {
		return fmt.Errorf("attach %s: %w", file.filename, err)
	}
	defer r.Close()

	part, err := w.CreateFormFile(file.field, file.filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("attach %s: %w", file.filename, err)
	}
	return nil
}
