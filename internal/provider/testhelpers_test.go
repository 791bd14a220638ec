// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package provider_test

import (
	"context"
	"errors"
	"sync"

	"github.com/studyhelper/studyhelper/internal/provider"
)

// fakeProvider plays back one scripted reply per Stream call and repeats the
// last reply once the script runs out.
type fakeProvider struct {
	name    string
	replies []fakeReply

	mu       sync.Mutex
	requests []provider.Request
	closed   bool
}

type fakeReply struct {
	text      string
	streamErr string // sent as the final chunk
	openErr   error  // returned by Stream itself
	hang      bool   // blocks until the context ends
}

func newFakeProvider(name string, replies ...fakeReply) *fakeProvider {
	return &fakeProvider{name: name, replies: replies}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeProvider) LastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeProvider) Stream(ctx context.Context, req provider.Request) (<-chan provider.Chunk, error) {
	f.mu.Lock()
	reply := fakeReply{text: "ok"}
	if n := len(f.replies); n > 0 {
		reply = f.replies[min(len(f.requests), n-1)]
	}
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if reply.openErr != nil {
		return nil, reply.openErr
	}

	out := make(chan provider.Chunk, 2)
	go func() {
		defer close(out)
		switch {
		case reply.hang:
			<-ctx.Done()
		case reply.streamErr != "":
			out <- provider.Chunk{Err: errors.New(reply.streamErr)}
		default:
			out <- provider.Chunk{Text: reply.text}
			out <- provider.Chunk{Usage: &provider.Usage{InputTokens: 3, OutputTokens: 2}}
		}
	}()
	return out, nil
}
