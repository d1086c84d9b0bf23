package repository

import (
	"context"
	"time"

	"marketforum/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// GetSummaries returns author attributions keyed by user id.
	GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ForumPostRepository interface {
	Create(ctx context.Context, userID int64, content string) (*model.Post, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// ListTopLevel returns every post, newest first.
	ListTopLevel(ctx context.Context) ([]model.Post, error)
	Exists(ctx context.Context, postID int64) (bool, error)
}

type ReplyRepository interface {
	// Create inserts a reply only if the parent post exists; otherwise it
	// returns model.ErrPostNotFound and writes nothing.
	Create(ctx context.Context, postID, userID int64, content string) (*model.Reply, error)
	ListByPost(ctx context.Context, postID int64) ([]model.Reply, error)
	// ListByPosts returns replies grouped by post id, each group newest first.
	ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Reply, error)
}

type ReactionRepository interface {
	// Toggle moves the (post, user) reaction according to target and returns
	// the post's counters after the change. Toggles on the same post are
	// serialized.
	Toggle(ctx context.Context, postID, userID int64, target model.ReactionState) (*model.ReactionResult, error)
	// States returns the user's non-neutral reactions among postIDs.
	States(ctx context.Context, userID int64, postIDs []int64) (map[int64]model.ReactionState, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, name string) (*model.Category, error)
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// List returns all products, or those of one category when categoryID is set.
	List(ctx context.Context, categoryID *int64) ([]model.Product, error)
	SearchByName(ctx context.Context, query string, limit int) ([]model.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, productID, userID int64, text string) (*model.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.Review, error)
}

type CartRepository interface {
	// AddItem inserts the product with quantity 1, or bumps the quantity.
	AddItem(ctx context.Context, userID, productID int64) (quantity int, err error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	ListItems(ctx context.Context, userID int64) ([]model.CartItem, error)
}

type FavoriteRepository interface {
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
	List(ctx context.Context, userID int64) ([]model.Product, error)
}
