package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// scanIndicator redraws a single status line while a scan is in flight.
type scanIndicator struct {
	out      io.Writer
	url      string
	interval time.Duration

	mu      sync.Mutex
	frame   int
	started time.Time
	running bool

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newScanIndicator(out io.Writer, url string, interval time.Duration) *scanIndicator {
	if interval <= 0 {
		interval = 120 * time.Millisecond
	}
	return &scanIndicator{
		out:      out,
		url:      url,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (p *scanIndicator) Start() {
	p.mu.Lock()
	p.started = time.Now()
	p.running = true
	p.mu.Unlock()
	go p.loop()
}

// Stop waits for the redraw goroutine to exit and clears the line.
func (p *scanIndicator) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		running := p.running
		p.mu.Unlock()

		close(p.done)
		if running {
			<-p.stopped
		}
		fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", 80))
	})
}

func (p *scanIndicator) loop() {
	defer close(p.stopped)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.print()
	for {
		select {
		case <-ticker.C:
			p.print()
		case <-p.done:
			return
		}
	}
}

func (p *scanIndicator) print() {
	p.mu.Lock()
	frame := spinnerFrames[p.frame%len(spinnerFrames)]
	p.frame++
	elapsed := time.Since(p.started).Seconds()
	p.mu.Unlock()

	fmt.Fprintf(p.out, "\r%s Scanning %s (%.1fs)", colorInfo(frame), p.url, elapsed)
}
