package mockapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thomas/lookbook-terminal/internal/api"
)

var reactionKinds = []string{"like", "love", "fire", "wow"}

// ============================================
// Posts
// ============================================

func (s *Server) listPosts(c *gin.Context) {
	s.store.mu.RLock()
	posts := slices.Clone(s.store.posts)
	s.store.mu.RUnlock()

	slices.SortStableFunc(posts, func(a, b api.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	c.JSON(http.StatusOK, posts)
}

func (s *Server) getPost(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	i := s.store.postIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "post not found")
		return
	}
	c.JSON(http.StatusOK, s.store.posts[i])
}

func (s *Server) createPost(c *gin.Context) {
	var post api.Post
	if err := c.ShouldBindJSON(&post); err != nil || strings.TrimSpace(post.Title) == "" {
		fail(c, http.StatusBadRequest, "post title is required")
		return
	}
	post.ID = uuid.NewString()
	post.CreatedAt = s.nowFunc().UTC()
	post.Reactions = api.Reactions{}
	post.Comments = 0

	s.store.mu.Lock()
	s.store.posts = append(s.store.posts, post)
	s.store.mu.Unlock()

	c.JSON(http.StatusCreated, post)
}

func (s *Server) updatePost(c *gin.Context) {
	var post api.Post
	if err := c.ShouldBindJSON(&post); err != nil || strings.TrimSpace(post.Title) == "" {
		fail(c, http.StatusBadRequest, "post title is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	i := s.store.postIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "post not found")
		return
	}
	existing := s.store.posts[i]
	post.ID = existing.ID
	post.CreatedAt = existing.CreatedAt
	post.Reactions = existing.Reactions
	post.Comments = existing.Comments
	s.store.posts[i] = post

	c.JSON(http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := c.Param("id")
	i := s.store.postIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "post not found")
		return
	}
	s.store.posts = slices.Delete(s.store.posts, i, i+1)
	delete(s.store.comments, id)
	c.Status(http.StatusNoContent)
}

// ============================================
// Comments and reactions
// ============================================

func (s *Server) listComments(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	id := c.Param("id")
	if s.store.postIndex(id) < 0 {
		fail(c, http.StatusNotFound, "post not found")
		return
	}
	comments := s.store.comments[id]
	if comments == nil {
		comments = []api.Comment{}
	}
	c.JSON(http.StatusOK, comments)
}

func commentAuthor(u api.User) string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if u.Profile != nil && u.Profile.FirstName != "" {
		return strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
	}
	if u.FirstName != "" {
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u.Email
}

func (s *Server) addComment(c *gin.Context) {
	var req api.Comment
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		fail(c, http.StatusBadRequest, "comment body is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := c.Param("id")
	i := s.store.postIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "post not found")
		return
	}

	comment := api.Comment{
		ID:        uuid.NewString(),
		PostID:    id,
		Author:    commentAuthor(currentAccount(c).user),
		Body:      strings.TrimSpace(req.Body),
		CreatedAt: s.nowFunc().UTC(),
	}
	s.store.comments[id] = append(s.store.comments[id], comment)
	s.store.posts[i].Comments = len(s.store.comments[id])

	c.JSON(http.StatusCreated, comment)
}

func (s *Server) deleteComment(c *gin.Context) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := c.Param("id")
	i := s.store.postIndex(id)
	if i < 0 {
		fail(c, http.StatusNotFound, "post not found")
		return
	}

	commentID := c.Param("commentId")
	comments := s.store.comments[id]
	j := slices.IndexFunc(comments, func(cm api.Comment) bool { return cm.ID == commentID })
	if j < 0 {
		fail(c, http.StatusNotFound, "comment not found")
		return
	}
	s.store.comments[id] = slices.Delete(comments, j, j+1)
	s.store.posts[i].Comments = len(s.store.comments[id])

	c.Status(http.StatusNoContent)
}

// react counts a reaction. Reactions are anonymous and not deduplicated.
func (s *Server) react(c *gin.Context) {
	var req struct {
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !slices.Contains(reactionKinds, req.Type) {
		fail(c, http.StatusBadRequest, "reaction type must be one of "+strings.Join(reactionKinds, ", "))
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	i := s.store.postIndex(c.Param("id"))
	if i < 0 {
		fail(c, http.StatusNotFound, "post not found")
		return
	}
	if s.store.posts[i].Reactions == nil {
		s.store.posts[i].Reactions = api.Reactions{}
	}
	s.store.posts[i].Reactions[req.Type]++

	c.JSON(http.StatusOK, s.store.posts[i].Reactions)
}

// ============================================
// Content blocks
// ============================================

func (s *Server) getContent(c *gin.Context) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	block, ok := s.store.content[c.Param("key")]
	if !ok {
		fail(c, http.StatusNotFound, "content not found")
		return
	}
	c.JSON(http.StatusOK, block)
}

func (s *Server) putContent(c *gin.Context) {
	var block api.ContentBlock
	if err := c.ShouldBindJSON(&block); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	block.Key = c.Param("key")
	block.UpdatedAt = s.nowFunc().UTC()

	s.store.mu.Lock()
	s.store.content[block.Key] = block
	s.store.mu.Unlock()

	c.JSON(http.StatusOK, block)
}
