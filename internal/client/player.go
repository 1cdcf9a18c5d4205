package client

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoMovie = errors.New("no movie loaded")

// MediaListener receives the events a media element fires after its state changes.
type MediaListener interface {
	OnLocalPlay()
	OnLocalPause()
	OnLocalSeeked()
}

// VirtualPlayer is a clock driven media element for terminal use. Like a browser
// video element it fires its events asynchronously, after the call that caused them.
type VirtualPlayer struct {
	mu        sync.Mutex
	movie     string
	position  float64
	playing   bool
	startedAt time.Time
	now       func() time.Time

	listener MediaListener
	events   chan func(MediaListener)
}

func NewVirtualPlayer() *VirtualPlayer {
	return &VirtualPlayer{
		now:    time.Now,
		events: make(chan func(MediaListener), 32),
	}
}

func (p *VirtualPlayer) SetListener(l MediaListener) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.listener = l
}

// Run delivers queued events to the listener until ctx is done.
func (p *VirtualPlayer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fire := <-p.events:
			p.mu.Lock()
			l := p.listener
			p.mu.Unlock()
			if l != nil {
				fire(l)
			}
		}
	}
}

func (p *VirtualPlayer) fire(event func(MediaListener)) {
	select {
	case p.events <- event:
	default:
	}
}

func (p *VirtualPlayer) currentTime() float64 {
	if !p.playing {
		return p.position
	}

	return p.position + p.now().Sub(p.startedAt).Seconds()
}

func (p *VirtualPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.currentTime()
}

func (p *VirtualPlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return !p.playing
}

func (p *VirtualPlayer) Movie() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.movie
}

// Load replaces the movie and rewinds. It fires no playback events.
func (p *VirtualPlayer) Load(file string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.movie = file
	p.position = 0
	p.playing = false
}

func (p *VirtualPlayer) SetCurrentTime(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.position = max(t, 0)
	p.startedAt = p.now()
	p.fire(MediaListener.OnLocalSeeked)
}

func (p *VirtualPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.movie == "" {
		return ErrNoMovie
	}

	if p.playing {
		return nil
	}

	p.playing = true
	p.startedAt = p.now()
	p.fire(MediaListener.OnLocalPlay)

	return nil
}

func (p *VirtualPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return
	}

	p.position = p.currentTime()
	p.playing = false
	p.fire(MediaListener.OnLocalPause)
}
