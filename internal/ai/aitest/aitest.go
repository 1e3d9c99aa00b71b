// Package aitest provides scripted ai.Provider doubles for tests.
package aitest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"inkpress/internal/ai"
)

// Reply is one scripted provider answer. A zero Reply with Err unset and
// NoCandidates false is a normal completion of Text.
type Reply struct {
	Text         string
	FinishReason string
	NoCandidates bool
	Err          error
}

// OK returns a normal completion of text.
func OK(text string) Reply { return Reply{Text: text, FinishReason: "STOP"} }

// Stopped returns a completion that ended with reason.
func Stopped(reason string) Reply { return Reply{Text: "partial", FinishReason: reason} }

// Provider answers requests from a queue of replies, or from Func when set.
// It records every request it receives.
type Provider struct {
	mu       sync.Mutex
	replies  []Reply
	requests []ai.Request

	// Func, when set, computes the reply for each request instead of the queue.
	Func func(ai.Request) Reply
	// Delay makes every call take this long, or until ctx is done.
	Delay time.Duration
}

// New returns a Provider that plays replies in order.
func New(replies ...Reply) *Provider {
	return &Provider{replies: replies}
}

// Articles returns a Provider that answers every article prompt with a
// markdown body mentioning the title and every excerpt prompt with a
// one-line summary.
func Articles() *Provider {
	return &Provider{Func: func(r ai.Request) Reply {
		if strings.Contains(r.Prompt, "Article body:") {
			return OK("A short summary of the article.")
		}
		return OK("## Introduction\n\nAn article. " + r.Prompt)
	}}
}

func (p *Provider) Name() string { return "scripted" }

func (p *Provider) Complete(ctx context.Context, r ai.Request) (*ai.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	p.mu.Lock()
	p.requests = append(p.requests, r)
	var reply Reply
	switch {
	case p.Func != nil:
		p.mu.Unlock()
		reply = p.Func(r)
	case len(p.replies) == 0:
		p.mu.Unlock()
		return nil, errors.New("aitest: no scripted reply left")
	default:
		reply = p.replies[0]
		p.replies = p.replies[1:]
		p.mu.Unlock()
	}

	if reply.Err != nil {
		return nil, reply.Err
	}
	if reply.NoCandidates {
		return nil, nil
	}
	finish := reply.FinishReason
	return &ai.Completion{
		Text:         reply.Text,
		FinishReason: finish,
		Finished:     finish == "" || finish == "STOP",
	}, nil
}

// Requests returns a copy of every request received so far.
func (p *Provider) Requests() []ai.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ai.Request(nil), p.requests...)
}

// Calls returns the number of requests received.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}
