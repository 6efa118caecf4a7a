package tui

import "github.com/mmcdole/explorador/internal/reveal"

// ChannelObserver adapts reveal results to a channel for Bubble Tea.
type ChannelObserver struct {
	ch   chan<- reveal.Result
	done <-chan struct{}
}

// NewChannelObserver creates a new channel-based observer. Sends are
// abandoned once done is closed.
func NewChannelObserver(ch chan<- reveal.Result, done <-chan struct{}) *ChannelObserver {
	return &ChannelObserver{ch: ch, done: done}
}

// OnLoad delivers a result, blocking until the UI takes it or shuts down.
func (o *ChannelObserver) OnLoad(r reveal.Result) {
	select {
	case o.ch <- r:
	case <-o.done:
	}
}
