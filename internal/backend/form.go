// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormFile is one file part of a multipart request.
type FormFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Form is a multipart/form-data body.
type Form struct {
	fields [][2]string
	files  []FormFile
}

// Field appends a text field.
func (form *Form) Field(name, value string) *Form {
	form.fields = append(form.fields, [2]string{name, value})
	return form
}

// File appends a file part.
func (form *Form) File(file FormFile) *Form {
	form.files = append(form.files, file)
	return form
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (form *Form) encode() (io.Reader, string, error) {
	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)

	for _, field := range form.fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("multipart_field_failed: %w", err)
		}
	}

	for _, file := range form.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Name)))

		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("multipart_file_failed: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("multipart_file_failed: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart_close_failed: %w", err)
	}

	return &buffer, writer.FormDataContentType(), nil
}
