package tui

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/catalog"
)

// heroContentKey is the content block shown at the top of the storefront.
const heroContentKey = "hero"

type (
	lookbookChangedMsg struct {
		status string
	}
	commentDeletedMsg struct {
		postID string
		status string
	}
	categoryChangedMsg struct {
		status string
	}
	contentLoadedMsg struct {
		block *api.ContentBlock
	}
	contentSavedMsg struct {
		block *api.ContentBlock
	}
)

// ============================================
// Form details
// ============================================

type postDetails struct {
	base     api.Post
	Title    string
	Body     string
	CoverURL string
	Products string
}

func newPostDetails(p api.Post) *postDetails {
	d := &postDetails{base: p, Title: p.Title, Body: p.Body}
	if len(p.Media) > 0 {
		d.CoverURL = p.Media[0].URL
	}
	d.Products = strings.Join(p.ProductIDs, ", ")
	return d
}

// post applies the form to the post it was opened for. The cover replaces the
// first media entry; an empty cover removes it.
func (d *postDetails) post() api.Post {
	p := d.base
	p.Title = strings.TrimSpace(d.Title)
	p.Body = strings.TrimSpace(d.Body)

	var first *catalog.Media
	var rest []catalog.Media
	if len(p.Media) > 0 {
		first, rest = &p.Media[0], p.Media[1:]
	}
	switch cover := strings.TrimSpace(d.CoverURL); {
	case cover == "":
		p.Media = rest
	case first != nil && first.URL == cover:
	default:
		p.Media = append([]catalog.Media{coverMedia(cover)}, rest...)
	}

	p.ProductIDs = nil
	for _, id := range strings.Split(d.Products, ",") {
		if id = strings.TrimSpace(id); id != "" {
			p.ProductIDs = append(p.ProductIDs, id)
		}
	}
	return p
}

func coverMedia(url string) catalog.Media {
	switch strings.ToLower(path.Ext(url)) {
	case ".mp4", ".webm", ".mov":
		return catalog.Media{URL: url, Type: catalog.MediaTypeVideo}
	}
	return catalog.Media{URL: url}
}

type categoryDetails struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

func (d *categoryDetails) category() api.Category {
	return api.Category{
		ID:          d.ID,
		Name:        strings.TrimSpace(d.Name),
		Slug:        strings.TrimSpace(d.Slug),
		Description: strings.TrimSpace(d.Description),
	}
}

type contentDetails struct {
	base  api.ContentBlock
	Title string
	Body  string
}

func (d *contentDetails) block() api.ContentBlock {
	b := d.base
	b.Title = strings.TrimSpace(d.Title)
	b.Body = strings.TrimSpace(d.Body)
	return b
}

func newPostForm(d *postDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&d.Title).Validate(required("title")),
			huh.NewText().Title("Body").Value(&d.Body).CharLimit(5000),
			huh.NewInput().Title("Cover image or video URL").Value(&d.CoverURL),
			huh.NewInput().Title("Featured product ids").Description("Comma separated").Value(&d.Products),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func newCategoryForm(d *categoryDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&d.Name).Validate(required("name")),
			huh.NewInput().Title("Slug").Description("Left empty, derived from the name").Value(&d.Slug),
			huh.NewInput().Title("Description").Value(&d.Description),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func newContentForm(d *contentDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Headline").Value(&d.Title).Validate(required("headline")),
			huh.NewText().Title("Body").Value(&d.Body).CharLimit(2000),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

// ============================================
// Lookbook
// ============================================

func (m AdminModel) openLookbook() (AdminModel, tea.Cmd) {
	m.view = AdminViewLookbook
	m.loading = true
	m.err = nil
	return m, m.loadPosts()
}

func (m AdminModel) loadPosts() tea.Cmd {
	return func() tea.Msg {
		posts, err := m.deps.Client.Posts(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return postsLoadedMsg{posts: posts}
	}
}

func (m AdminModel) selectedPost() *api.Post {
	if m.postIdx >= len(m.posts) {
		return nil
	}
	return &m.posts[m.postIdx]
}

func (m AdminModel) handleLookbookKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.postIdx > 0 {
			m.postIdx--
		}
	case "down", "j":
		if m.postIdx < len(m.posts)-1 {
			m.postIdx++
		}
	case "n":
		return m.openPostForm(api.Post{})
	case "e":
		if p := m.selectedPost(); p != nil {
			return m.openPostForm(*p)
		}
	case "d":
		if p := m.selectedPost(); p != nil {
			return m.confirmDelete(p.Title, m.deletePost(*p))
		}
	case "enter":
		if p := m.selectedPost(); p != nil {
			return m.openComments(*p)
		}
	}
	return m, nil
}

func (m AdminModel) openPostForm(p api.Post) (AdminModel, tea.Cmd) {
	m.post = newPostDetails(p)
	m.err = nil
	m.view = AdminViewPostForm
	m.form = newPostForm(m.post)
	return m, m.form.Init()
}

func (m AdminModel) savePost(p api.Post) tea.Cmd {
	return func() tea.Msg {
		if p.ID == "" {
			if _, err := m.deps.Client.CreatePost(m.ctx, p); err != nil {
				return errMsg{err: err}
			}
			return lookbookChangedMsg{status: "Published " + p.Title}
		}
		if _, err := m.deps.Client.UpdatePost(m.ctx, p.ID, p); err != nil {
			return errMsg{err: err}
		}
		return lookbookChangedMsg{status: "Updated " + p.Title}
	}
}

func (m AdminModel) deletePost(p api.Post) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Client.DeletePost(m.ctx, p.ID); err != nil {
			return errMsg{err: err}
		}
		return lookbookChangedMsg{status: "Deleted " + p.Title}
	}
}

func (m AdminModel) viewLookbook() string {
	var sb strings.Builder

	if len(m.posts) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No posts yet."))
		sb.WriteString("\n")
	}
	for i, p := range m.posts {
		line := fmt.Sprintf("%-36s %s  %d comments", p.Title, p.CreatedAt.Format("2006-01-02"), p.Comments)
		if i == m.postIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
		} else {
			sb.WriteString(m.styles.Row.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • enter comments • n new • e edit • d delete"))
	return sb.String()
}

// ============================================
// Comments
// ============================================

func (m AdminModel) openComments(p api.Post) (AdminModel, tea.Cmd) {
	m.view = AdminViewComments
	m.commentPost = p
	m.comments = nil
	m.commentIdx = 0
	m.loading = true
	m.err = nil
	return m, m.loadComments(p.ID)
}

func (m AdminModel) loadComments(postID string) tea.Cmd {
	return func() tea.Msg {
		comments, err := m.deps.Client.Comments(m.ctx, postID)
		if err != nil {
			return errMsg{err: err}
		}
		return commentsLoadedMsg{postID: postID, comments: comments}
	}
}

func (m AdminModel) handleCommentsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.commentIdx > 0 {
			m.commentIdx--
		}
	case "down", "j":
		if m.commentIdx < len(m.comments)-1 {
			m.commentIdx++
		}
	case "d":
		if m.commentIdx < len(m.comments) {
			c := m.comments[m.commentIdx]
			return m.confirmDelete("the comment by "+c.Author, m.deleteComment(m.commentPost.ID, c))
		}
	case "esc":
		return m.openLookbook()
	}
	return m, nil
}

func (m AdminModel) deleteComment(postID string, c api.Comment) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Client.DeleteComment(m.ctx, postID, c.ID); err != nil {
			return errMsg{err: err}
		}
		return commentDeletedMsg{postID: postID, status: "Deleted the comment by " + c.Author}
	}
}

func (m AdminModel) viewComments() string {
	var sb strings.Builder
	sb.WriteString(m.styles.ListTitle.Render(m.commentPost.Title))
	sb.WriteString("\n")

	if len(m.comments) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No comments."))
		sb.WriteString("\n")
	}
	for i, c := range m.comments {
		line := fmt.Sprintf("%s: %s", c.Author, Excerpt(c.Body, 60))
		if i == m.commentIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
		} else {
			sb.WriteString(m.styles.Row.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • d delete • esc back"))
	return sb.String()
}

// ============================================
// Catalog: categories and site copy
// ============================================

func (m AdminModel) openCatalog() (AdminModel, tea.Cmd) {
	m.view = AdminViewCatalog
	m.loading = true
	m.err = nil
	return m, m.loadCategories()
}

// loadCategories bypasses the shared catalog cache so edits show up at once.
func (m AdminModel) loadCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := m.deps.Client.Categories(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return categoriesLoadedMsg{categories: categories}
	}
}

func (m AdminModel) handleCatalogKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.categoryIdx > 0 {
			m.categoryIdx--
		}
	case "down", "j":
		if m.categoryIdx < len(m.categories)-1 {
			m.categoryIdx++
		}
	case "n":
		return m.openCategoryForm(api.Category{})
	case "e":
		if m.categoryIdx < len(m.categories) {
			return m.openCategoryForm(m.categories[m.categoryIdx])
		}
	case "d":
		if m.categoryIdx < len(m.categories) {
			c := m.categories[m.categoryIdx]
			return m.confirmDelete(c.Name, m.deleteCategory(c))
		}
	case "h":
		m.loading = true
		m.err = nil
		return m, m.loadContent(heroContentKey)
	}
	return m, nil
}

func (m AdminModel) openCategoryForm(c api.Category) (AdminModel, tea.Cmd) {
	m.category = &categoryDetails{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description}
	m.err = nil
	m.view = AdminViewCategoryForm
	m.form = newCategoryForm(m.category)
	return m, m.form.Init()
}

func (m AdminModel) saveCategory(c api.Category) tea.Cmd {
	return func() tea.Msg {
		if c.ID == "" {
			if _, err := m.deps.Client.CreateCategory(m.ctx, c); err != nil {
				return errMsg{err: err}
			}
			return categoryChangedMsg{status: "Added " + c.Name}
		}
		if _, err := m.deps.Client.UpdateCategory(m.ctx, c.ID, c); err != nil {
			return errMsg{err: err}
		}
		return categoryChangedMsg{status: "Updated " + c.Name}
	}
}

func (m AdminModel) deleteCategory(c api.Category) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Client.DeleteCategory(m.ctx, c.ID); err != nil {
			return errMsg{err: err}
		}
		return categoryChangedMsg{status: "Deleted " + c.Name}
	}
}

// loadContent fetches a content block. A block that does not exist yet opens empty.
func (m AdminModel) loadContent(key string) tea.Cmd {
	return func() tea.Msg {
		block, err := m.deps.Client.Content(m.ctx, key)
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return contentLoadedMsg{block: &api.ContentBlock{Key: key}}
		}
		if err != nil {
			return errMsg{err: err}
		}
		return contentLoadedMsg{block: block}
	}
}

func (m AdminModel) openContentForm(b api.ContentBlock) (AdminModel, tea.Cmd) {
	m.content = &contentDetails{base: b, Title: b.Title, Body: b.Body}
	m.err = nil
	m.view = AdminViewContentForm
	m.form = newContentForm(m.content)
	return m, m.form.Init()
}

func (m AdminModel) saveContent(b api.ContentBlock) tea.Cmd {
	return func() tea.Msg {
		saved, err := m.deps.Client.PutContent(m.ctx, b)
		if err != nil {
			return errMsg{err: err}
		}
		return contentSavedMsg{block: saved}
	}
}

func (m AdminModel) viewCatalog() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Subtle.Render("Categories"))
	sb.WriteString("\n")
	if len(m.categories) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No categories."))
		sb.WriteString("\n")
	}
	for i, c := range m.categories {
		line := fmt.Sprintf("%-24s /%s", c.Name, c.Slug)
		if i == m.categoryIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(line))
		} else {
			sb.WriteString(m.styles.Row.Render(line))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • n new • e edit • d delete • h edit hero banner"))
	return sb.String()
}
