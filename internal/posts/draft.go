// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package posts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Draft is the payload for a new post. It is read from a markdown file whose
// YAML front matter carries the metadata and whose body is the content.
type Draft struct {
	Title      string   `yaml:"title" json:"title"`
	Slug       string   `yaml:"slug" json:"slug"`
	Excerpt    string   `yaml:"excerpt" json:"excerpt,omitempty"`
	Tags       []string `yaml:"tags" json:"tags,omitempty"`
	CoverImage string   `yaml:"cover_image" json:"cover_image,omitempty"`
	Status     Status   `yaml:"status" json:"status"`
	Content    string   `yaml:"-" json:"content"`
}

var frontMatterDelim = []byte("---")

// LoadDraft reads a markdown draft from path.
func LoadDraft(path string) (Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Draft{}, fmt.Errorf("read draft: %w", err)
	}
	d, err := ParseDraft(data)
	if err != nil {
		return Draft{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDraft splits optional front matter from the markdown body. Without a
// title in the front matter, a leading "# Heading" becomes the title and is
// removed from the content.
func ParseDraft(data []byte) (Draft, error) {
	var d Draft
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	body := data

	if meta, rest, ok := cutFrontMatter(data); ok {
		if err := yaml.Unmarshal(meta, &d); err != nil {
			return Draft{}, fmt.Errorf("parse front matter: %w", err)
		}
		body = rest
	}

	content := strings.TrimSpace(string(body))
	if strings.TrimSpace(d.Title) == "" && strings.HasPrefix(content, "# ") {
		heading, rest, _ := strings.Cut(content, "\n")
		d.Title = strings.TrimSpace(strings.TrimPrefix(heading, "# "))
		content = strings.TrimSpace(rest)
	}
	d.Content = content
	return d, nil
}

// cutFrontMatter returns the YAML between a leading "---" line and the next
// "---" line.
func cutFrontMatter(data []byte) (meta, rest []byte, ok bool) {
	first, after, found := bytes.Cut(data, []byte("\n"))
	if !found || !bytes.Equal(bytes.TrimSpace(first), frontMatterDelim) {
		return nil, data, false
	}
	for off := 0; off < len(after); {
		line := after[off:]
		end := bytes.IndexByte(line, '\n')
		if end < 0 {
			end = len(line)
		}
		if bytes.Equal(bytes.TrimSpace(line[:end]), frontMatterDelim) {
			next := off + end + 1
			if next > len(after) {
				next = len(after)
			}
			return after[:off], after[next:], true
		}
		off += end + 1
	}
	return nil, data, false
}

// normalize fills defaults and validates the draft before it is sent.
func (d Draft) normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return d, errors.New("post title is required")
	}
	d.Slug = strings.TrimSpace(d.Slug)
	if d.Slug == "" {
		d.Slug = Slugify(d.Title)
	}
	if d.Slug == "" {
		return d, fmt.Errorf("cannot derive a slug from title %q", d.Title)
	}
	st, err := ParseStatus(string(d.Status))
	if err != nil {
		return d, err
	}
	if st == "" {
		st = StatusDraft
	}
	d.Status = st
	tags := d.Tags[:0:0]
	for _, t := range d.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	d.Tags = tags
	return d, nil
}
