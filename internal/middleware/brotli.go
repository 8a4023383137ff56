package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type BrotliConfig struct {
	Quality int
	// MinLength is the body size below which responses go out uncompressed.
	MinLength int
	Skipper   func(c *gin.Context) bool
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brotliWriter buffers the start of a body until it knows whether the
// response is large enough, and of a textual type, to be worth compressing.
type brotliWriter struct {
	gin.ResponseWriter
	enc       *brotli.Writer
	quality   int
	minLength int
	buf       []byte
	decided   bool
	compress  bool
}

func (w *brotliWriter) Write(p []byte) (int, error) {
	if w.decided {
		if w.compress {
			return w.enc.Write(p)
		}
		return w.ResponseWriter.Write(p)
	}

	w.buf = append(w.buf, p...)
	if len(w.buf) < w.minLength {
		return len(p), nil
	}
	w.decide(true)
	if err := w.flushBuf(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush sends what is buffered so far, compressed or not.
func (w *brotliWriter) Flush() {
	if !w.decided {
		w.decide(false)
	}
	_ = w.flushBuf()
	if w.compress {
		_ = w.enc.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *brotliWriter) decide(large bool) {
	w.decided = true
	w.compress = large && compressible(w.Header().Get("Content-Type"))
	if w.compress {
		w.Header().Set("Content-Encoding", "br")
		w.Header().Del("Content-Length")
		w.enc = brotli.NewWriterLevel(w.ResponseWriter, w.quality)
	}
}

func (w *brotliWriter) flushBuf() error {
	if len(w.buf) == 0 {
		return nil
	}
	var err error
	if w.compress {
		_, err = w.enc.Write(w.buf)
	} else {
		_, err = w.ResponseWriter.Write(w.buf)
	}
	w.buf = w.buf[:0]
	return err
}

func (w *brotliWriter) finish() error {
	if !w.decided {
		w.decide(false)
	}
	if err := w.flushBuf(); err != nil {
		return err
	}
	if w.compress {
		return w.enc.Close()
	}
	return nil
}

func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isUpgrade(c.Request) || (cfg.Skipper != nil && cfg.Skipper(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = bw
		defer func() {
			if err := bw.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

// isUpgrade reports a WebSocket handshake, which must reach the handler unwrapped.
func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func compressible(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json") || strings.HasPrefix(contentType, "text/")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
