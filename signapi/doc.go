// Package signapi defines the invocation contract shared by every transport that
// exposes the signer: a request carries a request description ('requestOption') and an
// app secret ('app_secret'), and a response carries either a signature or an error.
// It also implements the HTTP transport, which serves that contract as JSON over POST.
package signapi
