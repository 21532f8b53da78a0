package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// decodeBody unwraps Content-Encoding layers, last applied first. Unknown
// codings leave the body as is.
func decodeBody(body io.Reader, contentEncoding string) (io.Reader, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	codings := strings.Split(contentEncoding, ",")
	r := body
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		next, closer, err := decoder(r, coding)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("decode %s body: %w", coding, err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		r = next
	}
	return r, closeAll, nil
}

func decoder(r io.Reader, coding string) (io.Reader, func(), error) {
	switch coding {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r)
		if errors.Is(err, io.EOF) {
			return strings.NewReader(""), nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	case "deflate":
		return inflate(r)
	case "br":
		return brotli.NewReader(r), nil, nil
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	default:
		return r, nil, nil
	}
}

// inflate accepts both zlib-wrapped and raw deflate streams; servers send
// either under "deflate"
func inflate(r io.Reader) (io.Reader, func(), error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.NewReader(""), nil, nil
		}
		return nil, nil, err
	}
	if head[0]&0x0f == 8 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0 {
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { zr.Close() }, nil
	}
	fr := flate.NewReader(br)
	return fr, func() { fr.Close() }, nil
}
