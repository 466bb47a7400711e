package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// BuildBody renders the template as multipart form data. File fields carry data
// under filename. It returns the body and its Content-Type header value.
func BuildBody(t Template, data []byte, filename string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range t.Fields {
		if !f.File {
			if err := writer.WriteField(f.Name, f.Value); err != nil {
				return nil, "", errors.InternalError("failed to write form field").
					WithCause(err).
					WithContext("field", f.Name).
					Build()
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Name), quoteEscaper.Replace(filename)))
		h.Set("Content-Type", ContentType(filename))
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", errors.InternalError("failed to create file part").
				WithCause(err).
				WithContext("field", f.Name).
				Build()
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", errors.InternalError("failed to write file part").
				WithCause(err).
				Build()
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", errors.InternalError("failed to close form writer").
			WithCause(err).
			Build()
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
