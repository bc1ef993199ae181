package hmac

const (
	// ParamAccessToken is the name of a query parameter that carries an access token;
	// it's never covered by the signature
	ParamAccessToken = "access_token"

	// ParamSign is the name of the query parameter that carries the signature itself
	// when the signed request is sent; it's never covered by the signature
	ParamSign = "sign"

	// HeaderContentType is the header key checked to decide whether the body is
	// signed. The lookup is case-sensitive: 'Content-Type' is not recognized.
	HeaderContentType = "content-type"

	// ContentTypeMultipart is the only content-type value for which the body is left
	// out of the signature. A value with parameters (e.g. a boundary) does not match.
	ContentTypeMultipart = "multipart/form-data"
)

// isReservedParam reports whether a query parameter is signature metadata rather than
// payload data
func isReservedParam(key string) bool {
	return key == ParamAccessToken || key == ParamSign
}
