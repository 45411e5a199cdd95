package httpx

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// AcceptEncoding lists every coding DecodeBody understands.
const AcceptEncoding = "gzip, br, zstd, deflate"

var decoders = map[string]func([]byte) ([]byte, error){
	"br": func(b []byte) ([]byte, error) {
		return io.ReadAll(brotli.NewReader(bytes.NewReader(b)))
	},
	"gzip": func(b []byte) ([]byte, error) {
		gr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		return readAndClose(gr)
	},
	"zstd": func(b []byte) ([]byte, error) {
		dec, err := zstd.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	},
	"deflate": func(b []byte) ([]byte, error) {
		// RFC 9110 deflate is zlib framed, some servers send it raw.
		if zr, err := zlib.NewReader(bytes.NewReader(b)); err == nil {
			return readAndClose(zr)
		}
		return readAndClose(flate.NewReader(bytes.NewReader(b)))
	},
}

func readAndClose(rc io.ReadCloser) ([]byte, error) {
	out, err := io.ReadAll(rc)
	if cerr := rc.Close(); err == nil {
		err = cerr
	}
	return out, err
}

// DecodeBody undoes a Content-Encoding header value. Codings are removed
// last to first, so "gzip, br" means brotli is decoded before gzip.
func DecodeBody(contentEncoding string, body []byte) ([]byte, bool, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return body, false, nil
	}
	codings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		switch coding {
		case "", "identity":
			continue
		}
		decode, ok := decoders[coding]
		if !ok {
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", codings[i])
		}
		out, err := decode(body)
		if err != nil {
			return nil, false, fmt.Errorf("decode %s body: %w", coding, err)
		}
		body = out
		changed = true
	}
	return body, changed, nil
}
