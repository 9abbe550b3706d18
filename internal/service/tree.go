package service

import (
	"context"
	"time"

	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// CommentNode is one comment of an assembled thread with its replies.
type CommentNode struct {
	ID              uint          `json:"id"`
	Text            string        `json:"text"`
	PostID          *uint         `json:"postId,omitempty"`
	ParentCommentID *uint         `json:"parentCommentId,omitempty"`
	CreatedBy       uint          `json:"createdBy"`
	AuthorName      string        `json:"authorName"`
	CreatedAt       time.Time     `json:"createdAt"`
	LastModifiedAt  *time.Time    `json:"lastModifiedAt,omitempty"`
	IsEdited        bool          `json:"isEdited"`
	Votes           int64         `json:"votes"`
	Replies         []CommentNode `json:"replies"`
}

func newCommentNode(c *models.Comment, votes int64, author string, replies []CommentNode) CommentNode {
	if replies == nil {
		replies = []CommentNode{}
	}
	return CommentNode{
		ID:              c.ID,
		Text:            c.Text,
		PostID:          c.PostID,
		ParentCommentID: c.ParentCommentID,
		CreatedBy:       c.CreatedBy,
		AuthorName:      author,
		CreatedAt:       c.CreatedAt,
		LastModifiedAt:  c.LastModifiedAt,
		IsEdited:        c.IsEdited(),
		Votes:           votes,
		Replies:         replies,
	}
}

// CountNodes returns the number of comments in nodes and all their replies.
func CountNodes(nodes []CommentNode) int {
	n := len(nodes)
	for _, node := range nodes {
		n += CountNodes(node.Replies)
	}
	return n
}

const (
	treeStrategyPerLevel = "per_level"
	treeStrategyBatched  = "batched"
)

// CommentTreeAssembler materializes nested reply trees from flat comments.
// Only active comments are included and an inactive comment hides its
// whole subtree.
type CommentTreeAssembler struct {
	comments  repository.CommentRepository
	reactions repository.ReactionRepository
	users     repository.UserRepository
	flags     *featureflags.Manager
}

func NewCommentTreeAssembler(
	comments repository.CommentRepository,
	reactions repository.ReactionRepository,
	users repository.UserRepository,
	flags *featureflags.Manager,
) *CommentTreeAssembler {
	return &CommentTreeAssembler{comments: comments, reactions: reactions, users: users, flags: flags}
}

// AssembleReplies returns the thread under parentID, or the top-level
// comments of postID when parentID is nil. Siblings are ordered by creation
// time, then id.
func (a *CommentTreeAssembler) AssembleReplies(ctx context.Context, postID uint, parentID *uint) (nodes []CommentNode, err error) {
	strategy := treeStrategyPerLevel
	if a.flags.Enabled(featureflags.BatchedCommentTree, 0) {
		strategy = treeStrategyBatched
	}
	ctx, span := observability.StartSpan(ctx, "tree", strategy)
	defer func() { observability.EndSpan(span, err) }()

	if strategy == treeStrategyBatched {
		nodes, err = a.batched(ctx, postID, parentID)
	} else {
		nodes, err = a.perLevel(ctx, postID, parentID, make(map[uint]bool))
	}
	if err != nil {
		return nil, err
	}
	observability.CommentTreeNodes.WithLabelValues(strategy).Observe(float64(CountNodes(nodes)))
	return nodes, nil
}

func (a *CommentTreeAssembler) authorName(ctx context.Context, id uint) (string, error) {
	u, err := a.users.GetByID(ctx, id)
	if models.HasCode(err, models.CodeNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.DisplayName(), nil
}

// perLevel issues one query per level plus one tally and one author lookup
// per comment.
func (a *CommentTreeAssembler) perLevel(ctx context.Context, postID uint, parentID *uint, visited map[uint]bool) ([]CommentNode, error) {
	var level []*models.Comment
	var err error
	if parentID == nil {
		level, err = a.comments.ListActiveTopLevel(ctx, postID)
	} else {
		level, err = a.comments.ListActiveReplies(ctx, []uint{*parentID})
	}
	if err != nil {
		return nil, err
	}

	nodes := make([]CommentNode, 0, len(level))
	for _, c := range level {
		if visited[c.ID] || !inThread(c, postID) {
			continue
		}
		visited[c.ID] = true

		votes, err := a.reactions.CountActiveForComment(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		name, err := a.authorName(ctx, c.CreatedBy)
		if err != nil {
			return nil, err
		}
		id := c.ID
		children, err := a.perLevel(ctx, postID, &id, visited)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, newCommentNode(c, votes, name, children))
	}
	return nodes, nil
}

// inThread reports whether c belongs to the thread rooted at postID. A
// parent id taken from another post yields no replies.
func inThread(c *models.Comment, postID uint) bool {
	return c.PostID != nil && *c.PostID == postID
}

// batched loads the post's whole thread, its tallies and its authors in
// three queries and links the tree in memory.
func (a *CommentTreeAssembler) batched(ctx context.Context, postID uint, parentID *uint) ([]CommentNode, error) {
	all, err := a.comments.ListActiveByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	var roots []*models.Comment
	children := make(map[uint][]*models.Comment)
	for _, c := range all {
		switch {
		case c.TargetIsPost:
			roots = append(roots, c)
		case c.ParentCommentID != nil:
			children[*c.ParentCommentID] = append(children[*c.ParentCommentID], c)
		}
	}
	if parentID != nil {
		roots = children[*parentID]
	}

	// Collect only what is reachable so detached replies cost nothing.
	var ids []uint
	authorSet := make(map[uint]struct{})
	seen := make(map[uint]bool)
	queue := append([]*models.Comment(nil), roots...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		ids = append(ids, c.ID)
		authorSet[c.CreatedBy] = struct{}{}
		queue = append(queue, children[c.ID]...)
	}
	if len(ids) == 0 {
		return []CommentNode{}, nil
	}

	tallies, err := a.reactions.CountActiveForComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]uint, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}
	authors, err := a.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	var build func(level []*models.Comment, visited map[uint]bool) []CommentNode
	build = func(level []*models.Comment, visited map[uint]bool) []CommentNode {
		nodes := make([]CommentNode, 0, len(level))
		for _, c := range level {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			nodes = append(nodes, newCommentNode(c, tallies[c.ID], authors[c.CreatedBy].DisplayName(), build(children[c.ID], visited)))
		}
		return nodes
	}
	return build(roots, make(map[uint]bool)), nil
}
