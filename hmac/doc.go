// Package hmac computes request signatures for a remote API that authenticates callers
// with a shared app secret. A request description (target URI, query parameters,
// headers, and JSON body) is reduced to a canonical string, the string is wrapped in
// the secret, and the result is signed with HMAC-SHA256 keyed by that same secret:
//
//	sig, err := hmac.Sign(hmac.RequestDescription{
//		URI:   "https://api.example.com/v1/messages",
//		Query: hmac.QueryParams{"a": "1", "b": "2"},
//	}, appSecret)
//
// The canonicalization is fixed by contract with the remote verifier, quirks included:
// only the exact lowercase 'content-type' header key is consulted, and only the exact
// value 'multipart/form-data' suppresses the body. Changing either breaks signatures
// that the remote side will otherwise accept.
//
// Signing is a pure function of its inputs: nothing is cached, and Sign may be called
// concurrently from any number of goroutines.
package hmac
