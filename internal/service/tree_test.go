package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var treeFlagSets = map[string]string{
	"per_level": "batched_comment_tree=off",
	"batched":   "batched_comment_tree=on",
}

func TestCommentTree_NestedChain(t *testing.T) {
	for name, flags := range treeFlagSets {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, flags, nil, 0)
			ctx := context.Background()
			u := e.user("ann")
			post := e.post(u.ID, "chain")

			c1 := e.comment(u.ID, post.ID, "C1")
			c2 := e.reply(u.ID, c1.ID, "C2")
			c3 := e.reply(u.ID, c2.ID, "C3")

			nodes, err := e.tree.AssembleReplies(ctx, post.ID, nil)
			require.NoError(t, err)
			require.Len(t, nodes, 1)
			assert.Equal(t, c1.ID, nodes[0].ID)
			require.Len(t, nodes[0].Replies, 1)
			assert.Equal(t, c2.ID, nodes[0].Replies[0].ID)
			require.Len(t, nodes[0].Replies[0].Replies, 1)
			assert.Equal(t, c3.ID, nodes[0].Replies[0].Replies[0].ID)
			assert.Empty(t, nodes[0].Replies[0].Replies[0].Replies)
			assert.Equal(t, "ann Writer", nodes[0].AuthorName)

			require.NoError(t, e.comments.DeleteComment(ctx, u.ID, c2.ID))
			nodes, err = e.tree.AssembleReplies(ctx, post.ID, nil)
			require.NoError(t, err)
			require.Len(t, nodes, 1)
			assert.Empty(t, nodes[0].Replies)
			assert.Equal(t, 1, CountNodes(nodes))
		})
	}
}

func TestCommentTree_StrategiesAgree(t *testing.T) {
	build := func(flags string) []CommentNode {
		e := newEngine(t, flags, nil, 0)
		ctx := context.Background()
		a, b, c := e.user("a"), e.user("b"), e.user("c")
		post := e.post(a.ID, "busy thread")
		other := e.post(b.ID, "other thread")

		t1 := e.comment(b.ID, post.ID, "first")
		t2 := e.comment(c.ID, post.ID, "second")
		e.comment(a.ID, other.ID, "elsewhere")
		r1 := e.reply(a.ID, t1.ID, "reply one")
		e.reply(c.ID, t1.ID, "reply two")
		e.reply(b.ID, r1.ID, "deep")
		gone := e.reply(b.ID, t2.ID, "removed")
		e.reply(a.ID, gone.ID, "under removed")
		require.NoError(t, e.comments.DeleteComment(ctx, b.ID, gone.ID))

		_, err := e.comments.UpdateComment(ctx, b.ID, t1.ID, "first, edited")
		require.NoError(t, err)
		for _, u := range []*models.User{a, b, c} {
			e.vote(u.ID, models.CommentTarget(t1.ID), models.ReactionSentiment)
		}
		e.vote(a.ID, models.CommentTarget(r1.ID), models.ReactionSentiment)

		nodes, err := e.tree.AssembleReplies(ctx, post.ID, nil)
		require.NoError(t, err)
		return nodes
	}

	perLevel := build(treeFlagSets["per_level"])
	batched := build(treeFlagSets["batched"])
	assert.Equal(t, perLevel, batched)

	require.Len(t, perLevel, 2)
	first := perLevel[0]
	assert.Equal(t, "first, edited", first.Text)
	assert.True(t, first.IsEdited)
	assert.Equal(t, int64(3), first.Votes)
	require.Len(t, first.Replies, 2)
	assert.Equal(t, "reply one", first.Replies[0].Text)
	assert.Equal(t, int64(1), first.Replies[0].Votes)
	assert.Equal(t, "reply two", first.Replies[1].Text)
	require.Len(t, first.Replies[0].Replies, 1)
	assert.Empty(t, perLevel[1].Replies)
	assert.Equal(t, 5, CountNodes(perLevel))
}

func TestCommentTree_SubtreeFromParent(t *testing.T) {
	for name, flags := range treeFlagSets {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, flags, nil, 0)
			u := e.user("u")
			post := e.post(u.ID, "p")
			top := e.comment(u.ID, post.ID, "top")
			r1 := e.reply(u.ID, top.ID, "r1")
			e.reply(u.ID, r1.ID, "r1a")
			e.reply(u.ID, top.ID, "r2")

			parent := top.ID
			nodes, err := e.tree.AssembleReplies(context.Background(), post.ID, &parent)
			require.NoError(t, err)
			require.Len(t, nodes, 2)
			assert.Equal(t, "r1", nodes[0].Text)
			assert.Len(t, nodes[0].Replies, 1)
			assert.Equal(t, "r2", nodes[1].Text)

			empty, err := e.tree.AssembleReplies(context.Background(), 999, nil)
			require.NoError(t, err)
			assert.Empty(t, empty)

			other := e.post(u.ID, "other")
			foreign, err := e.tree.AssembleReplies(context.Background(), other.ID, &parent)
			require.NoError(t, err)
			assert.Empty(t, foreign, "a parent from another post has no replies in this thread")
		})
	}
}
