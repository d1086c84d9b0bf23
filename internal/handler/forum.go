package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"marketforum/internal/httputil"
	"marketforum/internal/model"
	"marketforum/internal/service"
	"marketforum/internal/transport/http/middleware"
)

// ForumRedirectPath is where form submissions land after a reply.
const ForumRedirectPath = "/forum/"

type ForumHandler struct {
	forumService *service.ForumService
}

func NewForumHandler(forumService *service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// ListPosts handles GET /forum/
// Returns every top-level post newest first, each with its replies.
func (h *ForumHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	posts, err := h.forumService.ListTopLevelPosts(r.Context(), viewerID)
	if err != nil {
		log.Errorf("[ForumHandler] List posts: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.PostListResponse{Posts: posts})
}

// CreatePost handles POST /forum/posts
func (h *ForumHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.forumService.CreatePost(r.Context(), userID, &req)
	if err != nil {
		if writeContentError(w, err) {
			return
		}
		log.Errorf("[ForumHandler] Create post: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GetPost handles GET /forum/posts/{id}
func (h *ForumHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	post, err := h.forumService.GetPost(r.Context(), postID, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Errorf("[ForumHandler] Get post: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// ListReplies handles GET /forum/posts/{id}/replies
func (h *ForumHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	replies, err := h.forumService.ListReplies(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Errorf("[ForumHandler] List replies: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to list replies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ReplyListResponse{Replies: replies})
}

// CreateReply handles POST /forum/reply
// Accepts JSON or an HTML form. Form submissions are redirected back to the
// forum with 303; JSON callers get the created reply.
func (h *ForumHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	h.createReply(w, r, 0)
}

// CreatePostReply handles POST /forum/posts/{id}/replies
// Same as CreateReply with the parent taken from the path. A
// parent_post_id in the body is ignored.
func (h *ForumHandler) CreatePostReply(w http.ResponseWriter, r *http.Request) {
	postID, ok := idParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}
	h.createReply(w, r, postID)
}

// createReply reads the parent from the body unless parentID is set.
func (h *ForumHandler) createReply(w http.ResponseWriter, r *http.Request, parentID int64) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	isForm := isFormRequest(r)
	var req model.CreateReplyRequest
	if isForm {
		if err := r.ParseForm(); err != nil {
			httputil.WriteBadRequest(w, "Invalid form data")
			return
		}
		req.Content = r.PostFormValue("content")
		if parentID == 0 {
			formParent, err := strconv.ParseInt(r.PostFormValue("parent_post_id"), 10, 64)
			if err != nil {
				httputil.WriteBadRequest(w, "Invalid parent_post_id")
				return
			}
			req.ParentPostID = formParent
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if parentID != 0 {
		req.ParentPostID = parentID
	}

	reply, err := h.forumService.CreateReply(r.Context(), userID, &req)
	if err != nil {
		if writeContentError(w, err) {
			return
		}
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Errorf("[ForumHandler] Create reply: user=%d post=%d err=%v", userID, req.ParentPostID, err)
		httputil.WriteInternalError(w, "Failed to create reply")
		return
	}

	if isForm {
		http.Redirect(w, r, ForumRedirectPath, http.StatusSeeOther)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, reply)
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || strings.HasPrefix(mediaType, "multipart/")
}

// writeContentError answers forum content validation failures. It reports
// whether err was one.
func writeContentError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, model.ErrContentRequired):
		httputil.WriteValidationError(w, "Content is required")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteValidationError(w, "Content too long (max 1000 characters)")
	case errors.Is(err, model.ErrContentInvalid):
		httputil.WriteValidationError(w, "Content must be valid UTF-8 text")
	default:
		return false
	}
	return true
}
