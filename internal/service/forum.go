package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"marketforum/internal/metrics"
	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// ForumService handles posts and their flat replies.
type ForumService struct {
	postRepo     repository.ForumPostRepository
	replyRepo    repository.ReplyRepository
	reactionRepo repository.ReactionRepository
	userRepo     repository.UserRepository
}

func NewForumService(
	postRepo repository.ForumPostRepository,
	replyRepo repository.ReplyRepository,
	reactionRepo repository.ReactionRepository,
	userRepo repository.UserRepository,
) *ForumService {
	return &ForumService{
		postRepo:     postRepo,
		replyRepo:    replyRepo,
		reactionRepo: reactionRepo,
		userRepo:     userRepo,
	}
}

// CreatePost validates the content and stores a new top-level post.
func (s *ForumService) CreatePost(ctx context.Context, userID int64, req *model.CreatePostRequest) (*model.Post, error) {
	if err := model.ValidateForumContent(req.Content); err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, userID, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	metrics.PostsCreated.Inc()

	if err := s.attachAuthors(ctx, []*model.Post{post}, nil); err != nil {
		log.Warnf("[ForumService] Failed to attach author: post=%d err=%v", post.ID, err)
	}
	log.Printf("[ForumService] Created post=%d user=%d", post.ID, userID)
	return post, nil
}

// ListTopLevelPosts returns every post newest first, each with its replies.
// viewerID is 0 for anonymous readers; MyReaction is then neutral.
func (s *ForumService) ListTopLevelPosts(ctx context.Context, viewerID int64) ([]model.Post, error) {
	posts, err := s.postRepo.ListTopLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if len(posts) == 0 {
		return []model.Post{}, nil
	}

	postIDs := lo.Map(posts, func(p model.Post, _ int) int64 { return p.ID })
	repliesByPost, err := s.replyRepo.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}

	ptrs := make([]*model.Post, len(posts))
	for i := range posts {
		posts[i].Replies = repliesByPost[posts[i].ID]
		if posts[i].Replies == nil {
			posts[i].Replies = []model.Reply{}
		}
		ptrs[i] = &posts[i]
	}

	if err := s.attachViewerStates(ctx, viewerID, ptrs); err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, ptrs, nil); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns one post with its replies.
func (s *ForumService) GetPost(ctx context.Context, postID, viewerID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	replies, err := s.replyRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	post.Replies = replies

	ptrs := []*model.Post{post}
	if err := s.attachViewerStates(ctx, viewerID, ptrs); err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, ptrs, nil); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateReply attaches a reply to an existing post. Content is checked
// before the store is touched, so an invalid reply to a missing post reports
// the content problem.
func (s *ForumService) CreateReply(ctx context.Context, userID int64, req *model.CreateReplyRequest) (*model.Reply, error) {
	if err := model.ValidateForumContent(req.Content); err != nil {
		return nil, err
	}

	reply, err := s.replyRepo.Create(ctx, req.ParentPostID, userID, req.Content)
	if err != nil {
		if err == model.ErrPostNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create reply: %w", err)
	}
	metrics.RepliesCreated.Inc()

	if err := s.attachAuthors(ctx, nil, []*model.Reply{reply}); err != nil {
		log.Warnf("[ForumService] Failed to attach author: reply=%d err=%v", reply.ID, err)
	}
	log.Printf("[ForumService] Created reply=%d post=%d user=%d", reply.ID, req.ParentPostID, userID)
	return reply, nil
}

// ListReplies returns the replies of one post, newest first.
func (s *ForumService) ListReplies(ctx context.Context, postID int64) ([]model.Reply, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	replies, err := s.replyRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}

	ptrs := make([]*model.Reply, len(replies))
	for i := range replies {
		ptrs[i] = &replies[i]
	}
	if err := s.attachAuthors(ctx, nil, ptrs); err != nil {
		return nil, err
	}
	return replies, nil
}

func (s *ForumService) attachViewerStates(ctx context.Context, viewerID int64, posts []*model.Post) error {
	if viewerID == 0 {
		return nil
	}
	postIDs := lo.Map(posts, func(p *model.Post, _ int) int64 { return p.ID })
	states, err := s.reactionRepo.States(ctx, viewerID, postIDs)
	if err != nil {
		return fmt.Errorf("failed to load reactions: %w", err)
	}
	for _, p := range posts {
		p.MyReaction = states[p.ID]
	}
	return nil
}

// attachAuthors fills Author on posts, their replies and standalone replies
// with a single user lookup.
func (s *ForumService) attachAuthors(ctx context.Context, posts []*model.Post, replies []*model.Reply) error {
	for _, p := range posts {
		for i := range p.Replies {
			replies = append(replies, &p.Replies[i])
		}
	}

	userIDs := lo.Uniq(append(
		lo.Map(posts, func(p *model.Post, _ int) int64 { return p.UserID }),
		lo.Map(replies, func(r *model.Reply, _ int) int64 { return r.UserID })...,
	))
	if len(userIDs) == 0 {
		return nil
	}

	summaries, err := s.userRepo.GetSummaries(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}
	for _, p := range posts {
		if u, ok := summaries[p.UserID]; ok {
			p.Author = &u
		}
	}
	for _, r := range replies {
		if u, ok := summaries[r.UserID]; ok {
			r.Author = &u
		}
	}
	return nil
}
