package transport

import "io"

// ProgressFunc receives the running count of bytes handed to the transport
// and the expected total. It is called from the goroutine driving the
// upload; implementations should return quickly.
type ProgressFunc func(written, total int64)

// progressInterval is the byte distance between progress reports.
const progressInterval = 4 << 20

// progressReader counts bytes as the HTTP transport drains the source
// reader, reporting on a cooperative schedule instead of from a background
// timer. A final report is made when the source is exhausted so the caller
// always observes the terminal count.
type progressReader struct {
	src      io.Reader
	total    int64
	written  int64
	reported int64
	done     bool
	report   ProgressFunc
}

func newProgressReader(src io.Reader, total int64, report ProgressFunc) *progressReader {
	return &progressReader{src: src, total: total, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.src.Read(b)
	p.written += int64(n)

	if p.report != nil {
		if p.written-p.reported >= progressInterval {
			p.reported = p.written
			p.report(p.written, p.total)
		}
		if err == io.EOF && !p.done {
			p.done = true
			p.report(p.written, p.total)
		}
	}
	return n, err
}
