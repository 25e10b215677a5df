// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/robo-tui/internal/model"
)

func replying(text string, sources ...model.GroundingChunk) Sender {
	return SenderFunc(func(context.Context, string) (*model.Reply, error) {
		return &model.Reply{Text: text, Sources: sources}, nil
	})
}

func failing(err error) Sender {
	return SenderFunc(func(context.Context, string) (*model.Reply, error) {
		return nil, err
	})
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_Success(t *testing.T) {
	chunk := model.GroundingChunk{Web: &model.WebChunk{URI: "u", Title: "T"}}
	c := New(replying("Here you go", chunk))

	require.True(t, c.Submit(context.Background(), "  parks nearby?  "))

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.AuthorUser, msgs[1].Author)
	assert.Equal(t, "  parks nearby?  ", msgs[1].Text, "user text is stored raw")
	assert.Equal(t, model.AuthorBot, msgs[2].Author)
	assert.Equal(t, "Here you go", msgs[2].Text)
	assert.Equal(t, []model.GroundingChunk{chunk}, msgs[2].Sources)
	assert.False(t, c.InFlight())
	assert.Empty(t, c.LastError())
}

func TestSubmit_Failure(t *testing.T) {
	c := New(failing(errors.New("quota exceeded")))

	require.True(t, c.Submit(context.Background(), "hi"))

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	last := msgs[2]
	assert.Equal(t, model.AuthorBot, last.Author)
	assert.Equal(t, "Sorry, I couldn't get a response. Please try again. Error: quota exceeded", last.Text)
	assert.Equal(t, "Sorry, I ran into an issue: quota exceeded", c.LastError())
	assert.False(t, c.InFlight())
}

func TestSubmit_FailureWithoutDescription(t *testing.T) {
	c := New(failing(errors.New("")))
	c.Submit(context.Background(), "hi")

	assert.Equal(t, "Sorry, I ran into an issue: An unknown error occurred.", c.LastError())
	assert.True(t, strings.HasSuffix(c.Log().Last().Text, "An unknown error occurred."))
}

func TestSubmit_NilReplyIsFailure(t *testing.T) {
	c := New(SenderFunc(func(context.Context, string) (*model.Reply, error) { return nil, nil }))
	c.Submit(context.Background(), "hi")

	assert.Equal(t, 3, c.Log().Len())
	assert.NotEmpty(t, c.LastError())
}

func TestSubmit_LogGrowsByTwo(t *testing.T) {
	calls := 0
	c := New(SenderFunc(func(context.Context, string) (*model.Reply, error) {
		calls++
		if calls%2 == 0 {
			return nil, errors.New("flaky")
		}
		return &model.Reply{Text: "ok"}, nil
	}))

	for i := 1; i <= 4; i++ {
		before := c.Log().Len()
		require.True(t, c.Submit(context.Background(), "q"))
		assert.Equal(t, before+2, c.Log().Len(), "submit %d", i)
	}
}

func TestSubmit_EmptyReplyIsFailure(t *testing.T) {
	for _, reply := range []*model.Reply{nil, {}, {Text: " \n"}} {
		c := New(SenderFunc(func(context.Context, string) (*model.Reply, error) {
			return reply, nil
		}))

		require.True(t, c.Submit(context.Background(), "q"))
		assert.Equal(t, BannerPrefix+errNoReply.Error(), c.LastError())
		last := c.Messages()[c.Log().Len()-1]
		assert.Equal(t, FailurePrefix+errNoReply.Error(), last.Text)
		assert.Equal(t, PhaseIdle, c.Phase())
	}
}

func TestSubmit_BlankInputIgnored(t *testing.T) {
	sent := false
	c := New(SenderFunc(func(context.Context, string) (*model.Reply, error) {
		sent = true
		return &model.Reply{}, nil
	}))

	for _, input := range []string{"", "   ", "\n\t "} {
		assert.False(t, c.Submit(context.Background(), input), "input %q", input)
	}
	assert.Equal(t, 1, c.Log().Len())
	assert.False(t, sent)
	assert.Equal(t, PhaseIdle, c.Phase())
}

func TestSubmit_ClearsPreviousError(t *testing.T) {
	fail := true
	c := New(SenderFunc(func(context.Context, string) (*model.Reply, error) {
		if fail {
			return nil, errors.New("down")
		}
		return &model.Reply{Text: "up"}, nil
	}))

	c.Submit(context.Background(), "a")
	require.NotEmpty(t, c.LastError())

	fail = false
	turn, ok := c.Begin("b")
	require.True(t, ok)
	assert.Empty(t, c.LastError(), "banner cleared when the next cycle starts")
	c.Complete(turn, &model.Reply{Text: "up"}, nil)
	assert.Empty(t, c.LastError())
}

// =============================================================================
// BEGIN / COMPLETE TESTS
// =============================================================================

func TestBegin_RejectsWhileInFlight(t *testing.T) {
	c := New(replying("ok"))

	turn, ok := c.Begin("first")
	require.True(t, ok)
	assert.True(t, c.InFlight())

	_, ok = c.Begin("second")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Log().Len(), "rejected submit must not log")

	c.Complete(turn, &model.Reply{Text: "done"}, nil)
	assert.False(t, c.InFlight())
	assert.Equal(t, 3, c.Log().Len())
}

func TestComplete_StaleTurnIgnored(t *testing.T) {
	c := New(replying("ok"))

	turn, _ := c.Begin("first")
	c.Complete(turn, &model.Reply{Text: "one"}, nil)
	c.Complete(turn, &model.Reply{Text: "dup"}, nil)

	assert.Equal(t, 3, c.Log().Len())
	assert.Equal(t, "one", c.Log().Last().Text)
}

// =============================================================================
// ADVISORY TESTS
// =============================================================================

func TestAdvisory(t *testing.T) {
	c := New(replying("ok"))

	c.SetAdvisory("no location")
	assert.Equal(t, "no location", c.LastError())
	assert.Equal(t, 1, c.Log().Len(), "advisory is not logged")

	c.ClearAdvisory()
	assert.Empty(t, c.LastError())

	c.SetAdvisory("no location")
	c.Submit(context.Background(), "q")
	assert.Empty(t, c.LastError(), "submit clears the advisory")
}

func TestAdvisory_DoesNotReplaceSendError(t *testing.T) {
	c := New(failing(errors.New("down")))
	c.Submit(context.Background(), "q")
	want := c.LastError()

	c.SetAdvisory("no location")
	assert.Equal(t, want, c.LastError())

	c.ClearAdvisory()
	assert.Equal(t, want, c.LastError())
}

// =============================================================================
// LISTENER TESTS
// =============================================================================

func TestOnChange(t *testing.T) {
	var mu sync.Mutex
	var changes []Change
	c := New(replying("ok"))
	c.OnChange(func(ch Change) {
		mu.Lock()
		changes = append(changes, ch)
		mu.Unlock()
	})

	c.Submit(context.Background(), "q")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 4)
	assert.Equal(t, ChangeMessage, changes[0].Kind)
	assert.Equal(t, model.AuthorUser, changes[0].Message.Author)
	assert.True(t, changes[1].InFlight)
	assert.Equal(t, ChangeMessage, changes[2].Kind)
	assert.Equal(t, model.AuthorBot, changes[2].Message.Author)
	assert.False(t, changes[3].InFlight)
}

func TestController_ConcurrentBegin(t *testing.T) {
	c := New(replying("ok"))
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Begin("q"); ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 2, c.Log().Len())
}
