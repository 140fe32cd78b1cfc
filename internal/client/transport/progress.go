package transport

import (
	"io"
	"sync"
)

// progressReader reports the share of total read so far. Only increases
// are reported.
type progressReader struct {
	r      io.Reader
	total  int64
	report ProgressFunc

	mu   sync.Mutex
	read int64
	last int
}

func newProgressReader(r io.Reader, total int64, report ProgressFunc) *progressReader {
	if report == nil {
		report = func(int) {}
	}
	return &progressReader{r: r, total: total, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

func (p *progressReader) advance(n int64) {
	p.mu.Lock()
	p.read += n
	pct := Percent(p.read, p.total)
	if pct <= p.last {
		p.mu.Unlock()
		return
	}
	p.last = pct
	p.mu.Unlock()

	p.report(pct)
}

// seekProgressReader is a progressReader over a seekable body. SDKs that
// rewind the body to retry or checksum it restart the count; reported
// progress still never goes down.
type seekProgressReader struct {
	*progressReader
	rs io.ReadSeeker
}

func newSeekProgressReader(rs io.ReadSeeker, total int64, report ProgressFunc) *seekProgressReader {
	return &seekProgressReader{progressReader: newProgressReader(rs, total, report), rs: rs}
}

func (s *seekProgressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.rs.Seek(offset, whence)
	if err == nil {
		s.mu.Lock()
		s.read = pos
		s.mu.Unlock()
	}
	return pos, err
}

// progressCounter is an io.Reader that only counts: the MinIO client
// calls Read with a slice as long as the bytes it just sent.
type progressCounter struct {
	*progressReader
}

func newProgressCounter(total int64, report ProgressFunc) *progressCounter {
	return &progressCounter{newProgressReader(nil, total, report)}
}

func (c *progressCounter) Read(b []byte) (int, error) {
	c.advance(int64(len(b)))
	return len(b), nil
}
