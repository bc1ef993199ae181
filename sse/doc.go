// Package sse serves a live feed of JSON messages as Server-Sent Events. The
// request-signer uses it to let operators watch audit events as signing calls finish.
package sse
