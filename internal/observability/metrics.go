package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesCast counts accepted votes by target kind and reaction kind.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_votes_cast_total",
		Help: "Total number of votes cast",
	}, []string{"target", "kind"})

	// VoteConflicts counts vote inserts that hit the active-vote unique index.
	VoteConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_vote_conflicts_total",
		Help: "Total number of concurrent vote conflicts retried",
	})

	// VotesRetracted counts reactions deactivated by owner retraction.
	VotesRetracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_votes_retracted_total",
		Help: "Total number of reactions deactivated by retraction",
	}, []string{"target"})

	// RevisionsWritten counts audit snapshots by entity.
	RevisionsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_revisions_written_total",
		Help: "Total number of revision snapshots written",
	}, []string{"entity"})

	// CommentTreeNodes observes the size of assembled comment trees.
	CommentTreeNodes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_comment_tree_nodes",
		Help:    "Number of nodes in assembled comment trees",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"strategy"})

	// CacheLookups counts dashboard cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})
)
