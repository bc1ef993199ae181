package hmac

import (
	"fmt"
	"sort"
	"strings"

	whatwg "github.com/nlnwa/whatwg-url/url"
)

// CanonicalString returns the string that's signed for a request, before it's wrapped
// in the secret: the request path, followed by each non-reserved query parameter's
// name and value in sorted order, followed by the JSON body unless the request is a
// multipart upload
func CanonicalString(req RequestDescription) (string, error) {
	path, err := requestPath(req.URI)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(path)
	writeParams(&b, req.Query)

	if req.Headers[HeaderContentType] != ContentTypeMultipart && len(req.Body) > 0 {
		body, err := parseValue(req.Body)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		if !body.isEmpty() {
			body.stringify(&b)
		}
	}
	return b.String(), nil
}

// requestPath returns the pathname of an absolute URI as a WHATWG URL parser reports
// it: percent-encoded, with dot segments (encoded or not) resolved, backslashes read as
// slashes for special schemes, and '/' for a URI with a host but no path
func requestPath(uri string) (string, error) {
	u, err := whatwg.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: '%s' is not an absolute URI", ErrInvalidURI, uri)
	}
	return u.Pathname(), nil
}

// writeParams writes each parameter name immediately followed by its value, ordered by
// name, skipping reserved parameters
func writeParams(b *strings.Builder, params QueryParams) {
	keys := make([]string, 0, len(params))
	for key := range params {
		if !isReservedParam(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(params[key])
	}
}
