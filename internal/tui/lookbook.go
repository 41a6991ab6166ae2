package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/thomas/lookbook-terminal/internal/api"
)

type (
	postsLoadedMsg struct {
		posts []api.Post
	}
	commentsLoadedMsg struct {
		postID   string
		comments []api.Comment
	}
	commentAddedMsg struct {
		comment *api.Comment
	}
	reactedMsg struct {
		postID    string
		reactions api.Reactions
	}
	contactSentMsg struct{}
)

var reactionKinds = []struct {
	key  string
	kind string
	icon string
}{
	{"1", "like", "👍"},
	{"2", "love", "♥"},
	{"3", "fire", "🔥"},
	{"4", "wow", "✨"},
}

const excerptLength = 90

// ============================================
// Lookbook feed
// ============================================

func (m Model) openLookbook() (tea.Model, tea.Cmd) {
	m.viewState = ViewLookbook
	m.loading = true
	m.err = nil
	return m, m.loadPosts()
}

func (m Model) loadPosts() tea.Cmd {
	return func() tea.Msg {
		posts, err := m.deps.Client.Posts(m.ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return postsLoadedMsg{posts: posts}
	}
}

func (m Model) handleLookbookKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewState = ViewProductList
	case "up", "k":
		if m.postIdx > 0 {
			m.postIdx--
		}
	case "down", "j":
		if m.postIdx < len(m.posts)-1 {
			m.postIdx++
		}
	case "enter":
		if m.postIdx < len(m.posts) {
			post := m.posts[m.postIdx]
			m.post = &post
			m.comments = nil
			m.viewState = ViewPost
			return m, m.loadComments(post.ID)
		}
	}
	return m, nil
}

func (m Model) viewLookbook() string {
	var sb strings.Builder

	sb.WriteString(m.styles.ListTitle.Render("Lookbook"))
	sb.WriteString("\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading stories...")
		return sb.String()
	case len(m.posts) == 0:
		sb.WriteString(m.styles.Subtle.Render("No stories yet."))
		return sb.String()
	}

	for i, p := range m.posts {
		title := p.Title
		if !p.CreatedAt.IsZero() {
			title += "  " + m.styles.Subtle.Render(p.CreatedAt.Format("Jan 2, 2006"))
		}
		if i == m.postIdx {
			sb.WriteString(m.styles.RowActive.String() + " " + m.styles.Highlight.Render(title))
		} else {
			sb.WriteString(m.styles.Row.Render(title))
		}
		sb.WriteString("\n")
		sb.WriteString(m.styles.Row.Render(m.styles.Subtle.Render(Excerpt(p.Body, excerptLength))))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Row.Render(m.reactionSummary(p)))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("↑/↓ select • enter read • esc back"))
	return sb.String()
}

func (m Model) reactionSummary(p api.Post) string {
	parts := make([]string, 0, len(reactionKinds)+1)
	for _, r := range reactionKinds {
		parts = append(parts, fmt.Sprintf("%s %d", r.icon, p.Reactions[r.kind]))
	}
	parts = append(parts, fmt.Sprintf("💬 %d", p.Comments))
	return strings.Join(parts, "  ")
}

// ============================================
// Lookbook post
// ============================================

func (m Model) loadComments(postID string) tea.Cmd {
	return func() tea.Msg {
		comments, err := m.deps.Client.Comments(m.ctx, postID)
		if err != nil {
			return errMsg{err: err}
		}
		return commentsLoadedMsg{postID: postID, comments: comments}
	}
}

func (m Model) handlePostKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.post == nil {
		m.viewState = ViewLookbook
		return m, nil
	}
	key := msg.String()

	if m.writingComment {
		switch key {
		case "enter":
			body := strings.TrimSpace(m.commentInput.Value())
			m.writingComment = false
			m.commentInput.Blur()
			m.commentInput.SetValue("")
			if body == "" {
				return m, nil
			}
			return m, m.addComment(m.post.ID, body)
		case "esc":
			m.writingComment = false
			m.commentInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.commentInput, cmd = m.commentInput.Update(msg)
		return m, cmd
	}

	switch key {
	case "esc", "backspace":
		m.viewState = ViewLookbook
		m.post = nil
		m.comments = nil
		return m, nil
	case "n":
		m.writingComment = true
		m.commentInput.Focus()
		return m, textinput.Blink
	}

	for _, r := range reactionKinds {
		if key == r.key {
			return m, m.react(m.post.ID, r.kind)
		}
	}
	return m, nil
}

func (m Model) addComment(postID, body string) tea.Cmd {
	return func() tea.Msg {
		comment, err := m.deps.Client.AddComment(m.ctx, postID, body)
		if err != nil {
			return errMsg{err: err}
		}
		return commentAddedMsg{comment: comment}
	}
}

func (m Model) react(postID, kind string) tea.Cmd {
	return func() tea.Msg {
		reactions, err := m.deps.Client.React(m.ctx, postID, kind)
		if err != nil {
			return errMsg{err: err}
		}
		return reactedMsg{postID: postID, reactions: reactions}
	}
}

func (m *Model) applyReactions(postID string, reactions api.Reactions) {
	if m.post != nil && m.post.ID == postID {
		m.post.Reactions = reactions
	}
	for i := range m.posts {
		if m.posts[i].ID == postID {
			m.posts[i].Reactions = reactions
		}
	}
}

func (m Model) viewPost() string {
	if m.post == nil {
		return "No story selected"
	}

	var sb strings.Builder
	p := m.post

	sb.WriteString(m.styles.ProductName.Render(p.Title))
	sb.WriteString("\n")
	if body := StripHTML(p.Body); body != "" {
		sb.WriteString(m.styles.ProductDescription.Render(body))
		sb.WriteString("\n")
	}

	for _, media := range p.Media {
		label := "Image: "
		if media.IsVideo() {
			label = "Video: "
		}
		sb.WriteString(m.styles.ProductAttribute.Render(label))
		sb.WriteString(media.URL)
		sb.WriteString("\n")
	}
	if len(p.ProductIDs) > 0 {
		sb.WriteString(m.styles.ProductAttribute.Render("Shop the look: "))
		sb.WriteString(strings.Join(p.ProductIDs, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.reactionSummary(*p))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Subtle.Render("Comments"))
	sb.WriteString("\n")
	if len(m.comments) == 0 {
		sb.WriteString(m.styles.Subtle.Render("  Be the first to comment."))
		sb.WriteString("\n")
	}
	for _, c := range m.comments {
		author := c.Author
		if author == "" {
			author = "anonymous"
		}
		sb.WriteString(fmt.Sprintf("  %s: %s\n", m.styles.Highlight.Render(author), c.Body))
	}

	if m.writingComment {
		sb.WriteString("\n")
		sb.WriteString(m.commentInput.View())
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.HelpBar.Render("1-4 react • n comment • esc back"))
	return m.styles.Box.Render(sb.String())
}

// ============================================
// Contact
// ============================================

type contactDetails struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (d *contactDetails) message() api.ContactMessage {
	return api.ContactMessage{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Subject: strings.TrimSpace(d.Subject),
		Message: strings.TrimSpace(d.Message),
	}
}

func (m Model) openContact() (tea.Model, tea.Cmd) {
	m.contact = &contactDetails{}
	if user := m.deps.Session.User(); user != nil {
		m.contact.Name = user.Name
		m.contact.Email = user.Email
	}
	m.err = nil
	m.form = newContactForm(m.contact)
	m.viewState = ViewContact
	return m, m.form.Init()
}

func newContactForm(d *contactDetails) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&d.Name).Validate(required("name")),
			huh.NewInput().Title("Email").Value(&d.Email).Validate(validEmail),
			huh.NewInput().Title("Subject").Value(&d.Subject),
			huh.NewText().
				Title("Message").
				Value(&d.Message).
				CharLimit(2000).
				Validate(required("message")),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m Model) sendContact(msg api.ContactMessage) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.Client.SendContact(m.ctx, msg); err != nil {
			return errMsg{err: err}
		}
		return contactSentMsg{}
	}
}
