package intake

import (
	"encoding/base64"
	"errors"
	"strings"
)

var errNotDataURI = errors.New("not a base64 data URI")

// EncodeDataURI renders payload as "data:<mime>;base64,<payload>", directly
// usable as an <img> src.
func EncodeDataURI(mime string, payload []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(payload)))
	b.WriteString("data:")
	b.WriteString(mime)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(payload))
	return b.String()
}

// DecodeDataURI splits a base64 data URI back into its MIME type and payload.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errNotDataURI
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errNotDataURI
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, errNotDataURI
	}
	payload, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, err
	}
	return mime, payload, nil
}
