package posts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Draft
	}{
		{
			name: "front matter",
			in: "---\n" +
				"title: Shipping the editor\n" +
				"slug: shipping-editor\n" +
				"tags: [release, editor]\n" +
				"cover_image: /img/editor.png\n" +
				"status: published\n" +
				"---\n\n" +
				"Body text.\n",
			want: Draft{
				Title:      "Shipping the editor",
				Slug:       "shipping-editor",
				Tags:       []string{"release", "editor"},
				CoverImage: "/img/editor.png",
				Status:     StatusPublished,
				Content:    "Body text.",
			},
		},
		{
			name: "heading becomes title",
			in:   "# First post\n\nHello.\n",
			want: Draft{Title: "First post", Content: "Hello."},
		},
		{
			name: "front matter title wins over heading",
			in:   "---\ntitle: Meta\n---\n# Heading\nText",
			want: Draft{Title: "Meta", Content: "# Heading\nText"},
		},
		{
			name: "unclosed front matter is content",
			in:   "---\ntitle: nope\n",
			want: Draft{Content: "---\ntitle: nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDraft([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDraftBadYAML(t *testing.T) {
	_, err := ParseDraft([]byte("---\ntitle: [unclosed\n---\nbody"))
	assert.Error(t, err)
}

func TestLoadDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.md")
	require.NoError(t, os.WriteFile(path, []byte("---\r\ntitle: Windows\r\n---\r\nbody\r\n"), 0o600))

	d, err := LoadDraft(path)
	require.NoError(t, err)
	assert.Equal(t, "Windows", d.Title)
	assert.Equal(t, "body", d.Content)
}

func TestDraftNormalize(t *testing.T) {
	d, err := Draft{Title: " Café notes ", Tags: []string{" go ", ""}}.normalize()
	require.NoError(t, err)
	assert.Equal(t, "Café notes", d.Title)
	assert.Equal(t, "cafe-notes", d.Slug)
	assert.Equal(t, StatusDraft, d.Status)
	assert.Equal(t, []string{"go"}, d.Tags)

	_, err = Draft{}.normalize()
	assert.Error(t, err)

	_, err = Draft{Title: "x", Status: "archived"}.normalize()
	assert.Error(t, err)
}
