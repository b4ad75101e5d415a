package main

import (
	"io"
	"net/http"
	"strings"
)

const cacheSourceHeader = "X-Cache-Source"

type proxyResponseWriter struct {
	w http.ResponseWriter
}

func (w *proxyResponseWriter) WriteOK(contentType, source string, reader io.ReadCloser) {
	w.w.Header().Set("Content-Type", contentType)
	w.w.Header().Set(cacheSourceHeader, source)
	w.w.WriteHeader(http.StatusOK)
	io.Copy(w.w, reader)
	reader.Close()
}

func (w *proxyResponseWriter) WriteError(code int, message string) {
	w.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.w.WriteHeader(code)
	io.Copy(w.w, strings.NewReader(message))
}

// WriteErrorWithFallback serves the unprocessed image, the error is only
// visible in the status code.
func (w *proxyResponseWriter) WriteErrorWithFallback(code int, message string, fallbackImageReader io.ReadCloser) {
	w.w.Header().Set("X-Processing-Error", message)
	w.w.WriteHeader(code)
	io.Copy(w.w, fallbackImageReader)
	fallbackImageReader.Close()
}
