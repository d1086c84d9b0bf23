package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Post is a top-level forum contribution. Posts are never parented.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"-"`
	Content      string    `db:"content" json:"content"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	DislikeCount int       `db:"dislike_count" json:"dislike_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Joined fields (not in forum_posts table)
	Author     *UserSummary  `json:"author,omitempty"`
	Replies    []Reply       `json:"replies,omitempty"`
	MyReaction ReactionState `json:"my_reaction"`
}

// Reply is a flat response attached to exactly one post.
type Reply struct {
	ID        int64        `db:"id" json:"id"`
	PostID    int64        `db:"post_id" json:"post_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Content   string       `db:"content" json:"content"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"`
}

// CreatePostRequest is the request body for POST /forum/posts.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// CreateReplyRequest is the request body for POST /forum/reply.
type CreateReplyRequest struct {
	Content      string `json:"content"`
	ParentPostID int64  `json:"parent_post_id"`
}

// PostListResponse is the forum home response.
type PostListResponse struct {
	Posts []Post `json:"posts"`
}

// ReplyListResponse lists the replies of one post.
type ReplyListResponse struct {
	Replies []Reply `json:"replies"`
}

// Forum constraints
const (
	MaxForumContentLength = 1000 // characters, not bytes
)

// Forum errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrContentRequired = errors.New("content is required")
	ErrContentTooLong  = errors.New("content too long")
	ErrContentInvalid  = errors.New("content is not valid UTF-8")
)

// ValidateForumContent checks a post or reply body against the forum bounds.
func ValidateForumContent(content string) error {
	if len(content) == 0 {
		return ErrContentRequired
	}
	if !utf8.ValidString(content) {
		return ErrContentInvalid
	}
	if utf8.RuneCountInString(content) > MaxForumContentLength {
		return ErrContentTooLong
	}
	return nil
}
