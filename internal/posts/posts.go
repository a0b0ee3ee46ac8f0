// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package posts manages blog posts through the CMS API. Every call goes
// through the session-carrying gateway, so an expired credential is handled
// the same way here as anywhere else.
package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"inkwell/cli/internal/gateway"
)

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus validates s. Empty means no filter.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StatusDraft, StatusPublished:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q (want draft or published)", s)
	}
}

// Post is a blog post as returned by the API.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content,omitempty"`
	Status      Status     `json:"status"`
	Tags        []string   `json:"tags,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Service wraps the posts endpoints.
type Service struct {
	api  *gateway.Client
	path string
	now  func() time.Time
}

// NewService creates a Service for the posts collection at path.
func NewService(api *gateway.Client, path string) *Service {
	if strings.TrimSpace(path) == "" {
		path = "/api/posts"
	}
	return &Service{api: api, path: strings.TrimRight(path, "/"), now: time.Now}
}

// List returns posts, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]Post, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}
	var raw json.RawMessage
	if err := s.api.Get(ctx, s.path, q, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw)
}

// Get returns the post with id.
func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	if err := checkID(id); err != nil {
		return Post{}, err
	}
	var raw json.RawMessage
	if err := s.api.Get(ctx, s.item(id), nil, &raw); err != nil {
		return Post{}, err
	}
	return decodeOne(raw)
}

// Create submits d as a new post. A missing slug is derived from the title
// and a missing status defaults to draft.
func (s *Service) Create(ctx context.Context, d Draft) (Post, error) {
	d, err := d.normalize()
	if err != nil {
		return Post{}, err
	}
	var raw json.RawMessage
	if err := s.api.Post(ctx, s.path, d, &raw); err != nil {
		return Post{}, err
	}
	return decodeOne(raw)
}

type publishRequest struct {
	Status      Status    `json:"status"`
	PublishedAt time.Time `json:"published_at"`
}

// Publish marks the post published as of now.
func (s *Service) Publish(ctx context.Context, id string) (Post, error) {
	if err := checkID(id); err != nil {
		return Post{}, err
	}
	var raw json.RawMessage
	body := publishRequest{Status: StatusPublished, PublishedAt: s.now().UTC()}
	if err := s.api.Patch(ctx, s.item(id), body, &raw); err != nil {
		return Post{}, err
	}
	return decodeOne(raw)
}

// Delete removes the post with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.api.Delete(ctx, s.item(id), nil)
}

func (s *Service) item(id string) string {
	return s.path + "/" + url.PathEscape(strings.TrimSpace(id))
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("post id is required")
	}
	return nil
}

// decodeList accepts a bare array or an envelope under "posts" or "data".
func decodeList(raw json.RawMessage) ([]Post, error) {
	var list []Post
	if len(raw) == 0 {
		return list, nil
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var env struct {
		Posts []Post `json:"posts"`
		Data  []Post `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	if env.Posts != nil {
		return env.Posts, nil
	}
	return env.Data, nil
}

// decodeOne accepts a bare post or an envelope under "post" or "data".
func decodeOne(raw json.RawMessage) (Post, error) {
	var env struct {
		Post *Post `json:"post"`
		Data *Post `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Post{}, fmt.Errorf("decode post: %w", err)
	}
	switch {
	case env.Post != nil:
		return *env.Post, nil
	case env.Data != nil:
		return *env.Data, nil
	}
	var p Post
	if err := json.Unmarshal(raw, &p); err != nil {
		return Post{}, fmt.Errorf("decode post: %w", err)
	}
	return p, nil
}
