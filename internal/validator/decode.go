package validator

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// ReadResponseBody drains resp.Body, transparently decoding a brotli
// Content-Encoding so validator rules see the decompressed bytes even
// against a target service that brotli-compresses its responses.
func ReadResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "br" {
		r = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(r)
}
