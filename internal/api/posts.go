package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ============================================
// Lookbook Posts
// ============================================

// Posts lists lookbook posts, newest first.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.doRequest(ctx, http.MethodGet, "/posts", nil, nil, &posts); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Post fetches one post.
func (c *Client) Post(ctx context.Context, id string) (*Post, error) {
	var post Post
	if err := c.doRequest(ctx, http.MethodGet, postPath(id), nil, nil, &post); err != nil {
		return nil, fmt.Errorf("fetching post %s: %w", id, err)
	}
	return &post, nil
}

// CreatePost publishes a post.
func (c *Client) CreatePost(ctx context.Context, post Post) (*Post, error) {
	var created Post
	if err := c.doRequest(ctx, http.MethodPost, "/posts", nil, post, &created); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return &created, nil
}

// UpdatePost replaces a post.
func (c *Client) UpdatePost(ctx context.Context, id string, post Post) (*Post, error) {
	var updated Post
	if err := c.doRequest(ctx, http.MethodPut, postPath(id), nil, post, &updated); err != nil {
		return nil, fmt.Errorf("updating post %s: %w", id, err)
	}
	return &updated, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, postPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	return nil
}

// Comments lists the comments of a post, oldest first.
func (c *Client) Comments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	if err := c.doRequest(ctx, http.MethodGet, postPath(postID)+"/comments", nil, nil, &comments); err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// AddComment comments on a post.
func (c *Client) AddComment(ctx context.Context, postID, body string) (*Comment, error) {
	req := Comment{Body: body}
	var created Comment
	if err := c.doRequest(ctx, http.MethodPost, postPath(postID)+"/comments", nil, req, &created); err != nil {
		return nil, fmt.Errorf("adding comment: %w", err)
	}
	return &created, nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	endpoint := postPath(postID) + "/comments/" + url.PathEscape(commentID)
	if err := c.doRequest(ctx, http.MethodDelete, endpoint, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

// React adds a reaction of the given kind and returns the post's new counts.
func (c *Client) React(ctx context.Context, postID, kind string) (Reactions, error) {
	req := struct {
		Type string `json:"type"`
	}{Type: kind}

	var counts Reactions
	if err := c.doRequest(ctx, http.MethodPost, postPath(postID)+"/reactions", nil, req, &counts); err != nil {
		return nil, fmt.Errorf("reacting to post: %w", err)
	}
	return counts, nil
}

func postPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}

// ============================================
// Content Blocks
// ============================================

// Content fetches a content block by key.
func (c *Client) Content(ctx context.Context, key string) (*ContentBlock, error) {
	var block ContentBlock
	if err := c.doRequest(ctx, http.MethodGet, "/content/"+url.PathEscape(key), nil, nil, &block); err != nil {
		return nil, fmt.Errorf("fetching content %s: %w", key, err)
	}
	return &block, nil
}

// PutContent stores a content block under its key.
func (c *Client) PutContent(ctx context.Context, block ContentBlock) (*ContentBlock, error) {
	var saved ContentBlock
	if err := c.doRequest(ctx, http.MethodPut, "/content/"+url.PathEscape(block.Key), nil, block, &saved); err != nil {
		return nil, fmt.Errorf("saving content %s: %w", block.Key, err)
	}
	return &saved, nil
}
