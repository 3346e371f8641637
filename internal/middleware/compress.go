package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressionMethod is a Content-Encoding the server can produce.
type CompressionMethod interface {
	Name() string
	Writer(w io.Writer) (FlusherWriter, error)
}

// FlusherWriter is a compressing writer.
type FlusherWriter interface {
	io.Writer
	Flush() error
	Close() error
}

type ZstdCompression struct{}

func (ZstdCompression) Name() string { return "zstd" }

func (ZstdCompression) Writer(w io.Writer) (FlusherWriter, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

type GzipCompression struct{}

func (GzipCompression) Name() string { return "gzip" }

func (GzipCompression) Writer(w io.Writer) (FlusherWriter, error) {
	return gzip.NewWriterLevel(w, gzip.DefaultCompression)
}

// Compress encodes compressible responses with the best method the client
// accepts, in the order given.
func Compress(methods ...CompressionMethod) func(http.Handler) http.Handler {
	if len(methods) == 0 {
		methods = []CompressionMethod{ZstdCompression{}, GzipCompression{}}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := negotiate(r, methods)
			if method == nil || r.Method == http.MethodHead || r.Header.Get("Upgrade") != "" {
				next.ServeHTTP(w, r)
				return
			}

			cw := &compressWriter{ResponseWriter: w, method: method}
			defer cw.close()
			next.ServeHTTP(cw, r)
		})
	}
}

func negotiate(r *http.Request, methods []CompressionMethod) CompressionMethod {
	accepted := map[string]bool{}
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if name == "" {
			continue
		}
		q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
		accepted[strings.ToLower(name)] = q != "q=0" && q != "q=0.0" && q != "q=0.000"
	}
	for _, m := range methods {
		if accepted[m.Name()] {
			return m
		}
	}
	return nil
}

type compressWriter struct {
	http.ResponseWriter
	method      CompressionMethod
	fw          FlusherWriter
	wroteHeader bool
}

func (cw *compressWriter) WriteHeader(status int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true

	h := cw.Header()
	h.Add("Vary", "Accept-Encoding")
	if shouldCompress(status, h) {
		fw, err := cw.method.Writer(cw.ResponseWriter)
		if err != nil {
			slog.Warn("init compression", "method", cw.method.Name(), "error", err)
		} else {
			cw.fw = fw
			h.Del("Content-Length")
			h.Set("Content-Encoding", cw.method.Name())
		}
	}
	cw.ResponseWriter.WriteHeader(status)
}

func (cw *compressWriter) Write(p []byte) (int, error) {
	if !cw.wroteHeader {
		if cw.Header().Get("Content-Type") == "" {
			cw.Header().Set("Content-Type", http.DetectContentType(p))
		}
		cw.WriteHeader(http.StatusOK)
	}
	if cw.fw != nil {
		return cw.fw.Write(p)
	}
	return cw.ResponseWriter.Write(p)
}

func (cw *compressWriter) Flush() {
	if cw.fw != nil {
		if err := cw.fw.Flush(); err != nil {
			return
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

func (cw *compressWriter) close() {
	if cw.fw != nil {
		if err := cw.fw.Close(); err != nil {
			slog.Debug("close compressor", "error", err)
		}
	}
}

func shouldCompress(status int, h http.Header) bool {
	if status < 200 || status == http.StatusNoContent || status == http.StatusNotModified || status == http.StatusPartialContent {
		return false
	}
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := strings.ToLower(h.Get("Content-Type"))
	switch {
	case strings.HasPrefix(ct, "text/"),
		strings.HasPrefix(ct, "application/json"),
		strings.HasPrefix(ct, "application/javascript"),
		strings.HasPrefix(ct, "application/wasm"),
		strings.HasPrefix(ct, "image/svg+xml"):
		return true
	}
	return false
}
