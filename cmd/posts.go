// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	inkerrors "inkwell/cli/internal/errors"
	"inkwell/cli/internal/posts"
	"inkwell/cli/internal/terminal"
)

var (
	postsStatus    string
	postsFile      string
	postsTitle     string
	postsPublish   bool
	postsAssumeYes bool
)

// stdinInteractive gates interactive confirmation prompts.
var stdinInteractive = terminal.IsInteractive

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"post"},
	Short:   "Manage blog posts",
}

func newPostsService() (*posts.Service, error) {
	store, err := requireSession()
	if err != nil {
		return nil, err
	}
	return posts.NewService(newAPIClient(store), cfg.Endpoints.Posts), nil
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := posts.ParseStatus(postsStatus)
		if err != nil {
			return inkerrors.Wrap(inkerrors.InvalidInput, "invalid --status", err)
		}
		svc, err := newPostsService()
		if err != nil {
			return err
		}

		list, err := svc.List(cmd.Context(), status)
		if err != nil {
			return apiError(err, "listing posts")
		}
		if len(list) == 0 {
			pterm.Info.Println("No posts yet. Create one with: inkwell posts create --file post.md")
			return nil
		}

		data := pterm.TableData{{"ID", "Title", "Slug", "Status", "Updated"}}
		for _, p := range list {
			updated := ""
			if !p.UpdatedAt.IsZero() {
				updated = p.UpdatedAt.Local().Format("2006-01-02 15:04")
			}
			data = append(data, []string{p.ID, p.Title, p.Slug, statusLabel(p.Status), updated})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var postsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newPostsService()
		if err != nil {
			return err
		}
		p, err := svc.Get(cmd.Context(), args[0])
		if err != nil {
			return apiError(err, "fetching post")
		}
		printPost(p)
		return nil
	},
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post from a markdown file",
	Long: `Create a post from a markdown file. Metadata comes from YAML front matter:

  ---
  title: Shipping the editor
  slug: shipping-editor
  excerpt: What changed in the new editor
  tags: [release, editor]
  cover_image: /img/editor.png
  ---

Without a slug one is derived from the title. New posts are drafts unless
--publish is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(postsFile) == "" {
			return inkerrors.New(inkerrors.InvalidInput, "--file is required")
		}
		draft, err := posts.LoadDraft(postsFile)
		if err != nil {
			return inkerrors.Wrap(inkerrors.InvalidInput, "load draft", err)
		}
		if postsTitle != "" {
			draft.Title = postsTitle
		}
		if postsPublish {
			draft.Status = posts.StatusPublished
		}

		svc, err := newPostsService()
		if err != nil {
			return err
		}
		p, err := svc.Create(cmd.Context(), draft)
		if err != nil {
			return apiError(err, "creating post")
		}
		pterm.Success.Printf("Created %q (%s)\n", p.Title, p.ID)
		return nil
	},
}

var postsPublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Publish a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newPostsService()
		if err != nil {
			return err
		}
		p, err := svc.Publish(cmd.Context(), args[0])
		if err != nil {
			return apiError(err, "publishing post")
		}
		pterm.Success.Printf("Published %q\n", p.Title)
		return nil
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !postsAssumeYes {
			if !stdinInteractive() {
				return inkerrors.New(inkerrors.InvalidInput, "cannot ask for confirmation without a terminal; pass --yes to delete")
			}
			ok, err := pterm.DefaultInteractiveConfirm.
				WithDefaultValue(false).
				Show(fmt.Sprintf("Delete post %s?", args[0]))
			if err != nil {
				return inkerrors.Wrap(inkerrors.InvalidInput, "confirmation prompt failed; pass --yes to delete", err)
			}
			if !ok {
				pterm.Info.Println("Cancelled.")
				return nil
			}
		}
		svc, err := newPostsService()
		if err != nil {
			return err
		}
		if err := svc.Delete(cmd.Context(), args[0]); err != nil {
			return apiError(err, "deleting post")
		}
		pterm.Success.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func statusLabel(s posts.Status) string {
	if s == posts.StatusPublished {
		return pterm.FgGreen.Sprint(string(s))
	}
	return pterm.FgYellow.Sprint(string(s))
}

func printPost(p posts.Post) {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:      %s\n", p.ID)
	fmt.Fprintf(&b, "Slug:    %s\n", p.Slug)
	fmt.Fprintf(&b, "Status:  %s\n", statusLabel(p.Status))
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Tags:    %s\n", strings.Join(p.Tags, ", "))
	}
	if p.PublishedAt != nil {
		fmt.Fprintf(&b, "Published: %s\n", p.PublishedAt.Local().Format("2006-01-02 15:04"))
	}
	if p.Excerpt != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Excerpt)
	}
	pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(p.Title)).
		WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
		Println(strings.TrimRight(b.String(), "\n"))
}

func init() {
	rootCmd.AddCommand(postsCmd)
	postsCmd.AddCommand(postsListCmd, postsGetCmd, postsCreateCmd, postsPublishCmd, postsDeleteCmd)

	postsListCmd.Flags().StringVar(&postsStatus, "status", "", "Filter by status (draft|published)")
	postsCreateCmd.Flags().StringVarP(&postsFile, "file", "f", "", "Markdown file with YAML front matter")
	postsCreateCmd.Flags().StringVar(&postsTitle, "title", "", "Override the title")
	postsCreateCmd.Flags().BoolVar(&postsPublish, "publish", false, "Publish immediately")
	postsDeleteCmd.Flags().BoolVarP(&postsAssumeYes, "yes", "y", false, "Do not ask for confirmation")
}
