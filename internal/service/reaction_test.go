package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketforum/internal/model"
)

func TestReactionService_LikeTwiceReturnsToNeutral(t *testing.T) {
	f := newForumFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "topic")

	first, err := f.reaction.ToggleLike(ctx, p.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionLiked, first.State)
	assert.Equal(t, 1, first.LikeCount)

	second, err := f.reaction.ToggleLike(ctx, p.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionNeutral, second.State)
	assert.Equal(t, model.ReactionCounts{}, second.ReactionCounts)
}

func TestReactionService_LikeDislikeDislikeScenario(t *testing.T) {
	f := newForumFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "topic")

	result, err := f.reaction.ToggleLike(ctx, p.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionCounts{LikeCount: 1, DislikeCount: 0}, result.ReactionCounts)

	result, err = f.reaction.ToggleDislike(ctx, p.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionCounts{LikeCount: 0, DislikeCount: 1}, result.ReactionCounts)

	result, err = f.reaction.ToggleDislike(ctx, p.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReactionCounts{LikeCount: 0, DislikeCount: 0}, result.ReactionCounts)
	assert.Equal(t, model.ReactionNeutral, result.State)
}

func TestReactionService_UsersCountedIndependently(t *testing.T) {
	f := newForumFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "topic")

	_, err := f.reaction.ToggleLike(ctx, p.ID, f.alice.ID)
	require.NoError(t, err)
	result, err := f.reaction.ToggleDislike(ctx, p.ID, f.bob.ID)
	require.NoError(t, err)

	assert.Equal(t, model.ReactionCounts{LikeCount: 1, DislikeCount: 1}, result.ReactionCounts)
	assert.Equal(t, model.ReactionDisliked, result.State)
}

func TestReactionService_MissingPost(t *testing.T) {
	f := newForumFixture(t)

	_, err := f.reaction.ToggleLike(context.Background(), 404, f.bob.ID)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	_, err = f.reaction.ToggleDislike(context.Background(), 404, f.bob.ID)
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestReactionService_CountsNeverExceedReactingUsers(t *testing.T) {
	f := newForumFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "topic")

	const users = 8
	const pressesPerUser = 25

	var wg sync.WaitGroup
	for u := int64(1); u <= users; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for i := 0; i < pressesPerUser; i++ {
				toggle := f.reaction.ToggleLike
				if (int(userID)+i)%3 == 0 {
					toggle = f.reaction.ToggleDislike
				}
				result, err := toggle(ctx, p.ID, userID)
				if !assert.NoError(t, err) {
					return
				}
				assert.LessOrEqual(t, result.LikeCount+result.DislikeCount, users)
				assert.GreaterOrEqual(t, result.LikeCount, 0)
				assert.GreaterOrEqual(t, result.DislikeCount, 0)
			}
		}(u)
	}
	wg.Wait()

	got, err := f.forum.GetPost(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, f.store.ReactingUsers(p.ID), got.LikeCount+got.DislikeCount)
}
