package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form builds a multipart/form-data body. Field and file order is preserved,
// which matters for the parallel images/captions lists on image upload.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

// NewForm returns an empty form.
func NewForm() *Form { return &Form{} }

// Add appends a text field. Repeated names are allowed.
func (f *Form) Add(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part read from r.
func (f *Form) AddFile(field, filename string, r io.Reader) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return nil
}

// AddFileBytes appends a file part with in-memory content.
func (f *Form) AddFileBytes(field, filename string, content []byte) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

func (f *Form) encode() (contentType string, body io.Reader, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return "", nil, err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return "", nil, err
		}
		if _, err := part.Write(file.content); err != nil {
			return "", nil, err
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), &buf, nil
}
