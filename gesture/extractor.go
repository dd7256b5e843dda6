package gesture

import (
	"context"
	"fmt"
)

type extractResult struct {
	text string
	err  error
}

type extractRequest struct {
	ctx   context.Context
	reply chan extractResult
}

// extractor owns calls into the TextReader on its own goroutine.
// The sampling loop hands it a request and blocks for the reply, bounded
// by the request context; a reply arriving after the caller gave up is
// discarded.
type extractor struct {
	reader TextReader
	reqs   chan extractRequest
	quit   chan struct{}
}

func newExtractor(reader TextReader) *extractor {
	e := &extractor{
		reader: reader,
		reqs:   make(chan extractRequest),
		quit:   make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *extractor) run() {
	for {
		select {
		case <-e.quit:
			return
		case req := <-e.reqs:
			req.reply <- e.read(req.ctx)
		}
	}
}

func (e *extractor) read(ctx context.Context) (res extractResult) {
	defer func() {
		if r := recover(); r != nil {
			res = extractResult{err: fmt.Errorf("text reader panic: %v", r)}
		}
	}()
	text, err := e.reader.ReadSelectedText(ctx)
	return extractResult{text: text, err: err}
}

// extract blocks until the reader replies or ctx is done.
func (e *extractor) extract(ctx context.Context) (string, error) {
	req := extractRequest{ctx: ctx, reply: make(chan extractResult, 1)}

	select {
	case e.reqs <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// close stops the worker. A call in progress is not interrupted; the
// worker exits once it returns.
func (e *extractor) close() {
	close(e.quit)
}
