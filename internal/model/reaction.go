package model

import (
	"errors"
	"fmt"
)

// ReactionState is a user's reaction to a post. The zero value is neutral,
// which is also what an absent post_reactions row means.
type ReactionState int8

const (
	ReactionNeutral  ReactionState = 0
	ReactionLiked    ReactionState = 1
	ReactionDisliked ReactionState = -1
)

// Toggle returns the state after the user presses the button for target.
//
//	neutral  --like-->    liked
//	liked    --like-->    neutral
//	disliked --like-->    liked
//	neutral  --dislike--> disliked
//	disliked --dislike--> neutral
//	liked    --dislike--> disliked
func (s ReactionState) Toggle(target ReactionState) ReactionState {
	if s == target {
		return ReactionNeutral
	}
	return target
}

// CountDeltas returns how the like and dislike counters move when a
// user's state changes from s to next.
func (s ReactionState) CountDeltas(next ReactionState) (likeDelta, dislikeDelta int) {
	if s == next {
		return 0, 0
	}
	switch s {
	case ReactionLiked:
		likeDelta--
	case ReactionDisliked:
		dislikeDelta--
	}
	switch next {
	case ReactionLiked:
		likeDelta++
	case ReactionDisliked:
		dislikeDelta++
	}
	return likeDelta, dislikeDelta
}

func (s ReactionState) String() string {
	switch s {
	case ReactionLiked:
		return "liked"
	case ReactionDisliked:
		return "disliked"
	default:
		return "neutral"
	}
}

func (s ReactionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ReactionState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "liked":
		*s = ReactionLiked
	case "disliked":
		*s = ReactionDisliked
	case "neutral", "":
		*s = ReactionNeutral
	default:
		return fmt.Errorf("unknown reaction state %q", text)
	}
	return nil
}

// ReactionCounts is returned by the like/dislike toggles.
type ReactionCounts struct {
	LikeCount    int `db:"like_count" json:"like_count"`
	DislikeCount int `db:"dislike_count" json:"dislike_count"`
}

// ReactionResult is the outcome of one toggle.
type ReactionResult struct {
	ReactionCounts
	State ReactionState `json:"my_reaction"`
}

var ErrInvalidReaction = errors.New("invalid reaction")
