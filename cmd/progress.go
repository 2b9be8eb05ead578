package cmd

import (
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"
)

const progressTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}`

// progressBar renders transfer progress on stderr when it is a terminal
type progressBar struct {
	bar *pb.ProgressBar
}

func newProgressBar(prefix string) *progressBar {
	p := &progressBar{}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return p
	}

	bar := pb.New64(0)
	bar.SetTemplateString(progressTemplate)
	bar.SetWriter(os.Stderr)
	bar.Set(pb.Bytes, true)
	bar.Set(pb.SIBytesPrefix, true)
	bar.Set("prefix", prefix)
	p.bar = bar
	return p
}

// Wrap starts the bar sized to size and returns a reader that advances it
func (p *progressBar) Wrap(r io.Reader, size int64) io.Reader {
	if p.bar == nil {
		return r
	}
	p.bar.SetTotal(size)
	p.bar.Start()
	return p.bar.NewProxyReader(r)
}

func (p *progressBar) Finish() {
	if p.bar != nil && p.bar.IsStarted() {
		p.bar.Finish()
	}
}
