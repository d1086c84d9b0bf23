// Package memory is an in-process forum store. It backs the service and
// handler tests and follows the same contracts as the Postgres repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"marketforum/internal/model"
	"marketforum/internal/repository"
)

type reactionKey struct {
	postID int64
	userID int64
}

// Store holds users, posts, replies and reactions behind one mutex, which
// serializes reaction toggles the way the post row lock does in Postgres.
type Store struct {
	mu sync.Mutex

	users     map[int64]model.User
	posts     map[int64]model.Post
	replies   map[int64]model.Reply
	reactions map[reactionKey]model.ReactionState

	nextUserID  int64
	nextPostID  int64
	nextReplyID int64
}

func New() *Store {
	return &Store{
		users:     make(map[int64]model.User),
		posts:     make(map[int64]model.Post),
		replies:   make(map[int64]model.Reply),
		reactions: make(map[reactionKey]model.ReactionState),
	}
}

func (s *Store) Users() repository.UserRepository { return userStore{s} }
func (s *Store) Posts() repository.ForumPostRepository { return postStore{s} }
func (s *Store) Replies() repository.ReplyRepository { return replyStore{s} }
func (s *Store) Reactions() repository.ReactionRepository { return reactionStore{s} }

// ReplyCount returns the number of stored replies across all posts.
func (s *Store) ReplyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.replies)
}

// ReactingUsers returns how many users hold a non-neutral reaction on postID.
func (s *Store) ReactingUsers(postID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.reactions {
		if k.postID == postID {
			n++
		}
	}
	return n
}

type userStore struct{ s *Store }

func (u userStore) Create(ctx context.Context, user *model.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == user.Username {
			return model.ErrUsernameExists
		}
	}
	u.s.nextUserID++
	now := time.Now()
	user.ID = u.s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	u.s.users[user.ID] = *user
	return nil
}

func (u userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &user, nil
}

func (u userStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, user := range u.s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (u userStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := u.GetByUsername(ctx, username)
	return err == nil, nil
}

func (u userStore) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	result := make(map[int64]model.UserSummary, len(ids))
	for _, id := range ids {
		if user, ok := u.s.users[id]; ok {
			result[id] = *user.Summary()
		}
	}
	return result, nil
}

type postStore struct{ s *Store }

func (p postStore) Create(ctx context.Context, userID int64, content string) (*model.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	p.s.nextPostID++
	post := model.Post{
		ID:        p.s.nextPostID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	p.s.posts[post.ID] = post
	return &post, nil
}

func (p postStore) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	post, ok := p.s.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	return &post, nil
}

func (p postStore) ListTopLevel(ctx context.Context) ([]model.Post, error) {
	p.s.mu.Lock()
	posts := make([]model.Post, 0, len(p.s.posts))
	for _, post := range p.s.posts {
		posts = append(posts, post)
	}
	p.s.mu.Unlock()

	sort.Slice(posts, func(i, j int) bool {
		return newerFirst(posts[i].CreatedAt, posts[i].ID, posts[j].CreatedAt, posts[j].ID)
	})
	return posts, nil
}

func (p postStore) Exists(ctx context.Context, postID int64) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	_, ok := p.s.posts[postID]
	return ok, nil
}

type replyStore struct{ s *Store }

func (r replyStore) Create(ctx context.Context, postID, userID int64, content string) (*model.Reply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return nil, model.ErrPostNotFound
	}
	r.s.nextReplyID++
	reply := model.Reply{
		ID:        r.s.nextReplyID,
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	r.s.replies[reply.ID] = reply
	return &reply, nil
}

func (r replyStore) ListByPost(ctx context.Context, postID int64) ([]model.Reply, error) {
	grouped, err := r.ListByPosts(ctx, []int64{postID})
	if err != nil {
		return nil, err
	}
	if replies, ok := grouped[postID]; ok {
		return replies, nil
	}
	return []model.Reply{}, nil
}

func (r replyStore) ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Reply, error) {
	wanted := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}

	r.s.mu.Lock()
	grouped := make(map[int64][]model.Reply)
	for _, reply := range r.s.replies {
		if wanted[reply.PostID] {
			grouped[reply.PostID] = append(grouped[reply.PostID], reply)
		}
	}
	r.s.mu.Unlock()

	for _, replies := range grouped {
		sort.Slice(replies, func(i, j int) bool {
			return newerFirst(replies[i].CreatedAt, replies[i].ID, replies[j].CreatedAt, replies[j].ID)
		})
	}
	return grouped, nil
}

type reactionStore struct{ s *Store }

func (r reactionStore) Toggle(ctx context.Context, postID, userID int64, target model.ReactionState) (*model.ReactionResult, error) {
	if target != model.ReactionLiked && target != model.ReactionDisliked {
		return nil, model.ErrInvalidReaction
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post, ok := r.s.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}

	key := reactionKey{postID: postID, userID: userID}
	current := r.s.reactions[key]
	next := current.Toggle(target)
	if next == model.ReactionNeutral {
		delete(r.s.reactions, key)
	} else {
		r.s.reactions[key] = next
	}

	likeDelta, dislikeDelta := current.CountDeltas(next)
	post.LikeCount += likeDelta
	post.DislikeCount += dislikeDelta
	r.s.posts[postID] = post

	return &model.ReactionResult{
		ReactionCounts: model.ReactionCounts{LikeCount: post.LikeCount, DislikeCount: post.DislikeCount},
		State:          next,
	}, nil
}

func (r reactionStore) States(ctx context.Context, userID int64, postIDs []int64) (map[int64]model.ReactionState, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	states := make(map[int64]model.ReactionState)
	for _, postID := range postIDs {
		if state, ok := r.s.reactions[reactionKey{postID: postID, userID: userID}]; ok {
			states[postID] = state
		}
	}
	return states, nil
}

// newerFirst orders by creation time, then id, both descending.
func newerFirst(aTime time.Time, aID int64, bTime time.Time, bID int64) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aID > bID
}
