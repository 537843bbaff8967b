// Package responsewriter records the status and size of an HTTP response
// for the logging, metrics and tracing middleware.
package responsewriter

import "net/http"

// Recorder is an http.ResponseWriter that remembers what was sent.
type Recorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

// Wrap returns w itself when it is already a Recorder, so stacked
// middleware share one record of the response.
func Wrap(w http.ResponseWriter) *Recorder {
	if rec, ok := w.(*Recorder); ok {
		return rec
	}
	return &Recorder{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader forwards the first status only; later calls are dropped the
// way net/http drops superfluous WriteHeader calls.
func (r *Recorder) WriteHeader(status int) {
	if r.written {
		return
	}
	r.status = status
	r.written = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *Recorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// StatusCode is 200 until a handler writes something else.
func (r *Recorder) StatusCode() int { return r.status }

func (r *Recorder) BytesWritten() int { return r.bytes }

// Written reports whether the header has gone out.
func (r *Recorder) Written() bool { return r.written }

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *Recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
