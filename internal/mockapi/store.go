package mockapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/thomas/lookbook-terminal/internal/api"
	"github.com/thomas/lookbook-terminal/internal/catalog"
)

//go:embed testdata/seed.json
var seedFS embed.FS

type seedUser struct {
	api.User
	Password string `json:"password"`
}

type seedData struct {
	Categories []api.Category     `json:"categories"`
	Products   []catalog.Product  `json:"products"`
	Users      []seedUser         `json:"users"`
	Posts      []api.Post         `json:"posts"`
	Content    []api.ContentBlock `json:"content"`
}

// account is a stored user and its password hash.
type account struct {
	user         api.User
	passwordHash []byte
}

func (a *account) id() string {
	return userID(a.user)
}

// userID returns the id of u, falling back to the alternate id field.
func userID(u api.User) string {
	if u.ID != "" {
		return u.ID
	}
	return u.AltID
}

// store is the in-memory state of the backend.
type store struct {
	mu sync.RWMutex

	products   []catalog.Product
	categories []api.Category
	accounts   map[string]*account // by lowercased email
	orders     []api.Order
	posts      []api.Post
	comments   map[string][]api.Comment // by post id
	content    map[string]api.ContentBlock
	messages   []api.ContactMessage
	nextOrder  int

	passwordCost int
}

func loadStore(passwordCost int) (*store, error) {
	data, err := seedFS.ReadFile("testdata/seed.json")
	if err != nil {
		return nil, fmt.Errorf("reading seed: %w", err)
	}

	var seed seedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	s := &store{
		products:     seed.Products,
		categories:   seed.Categories,
		accounts:     make(map[string]*account, len(seed.Users)),
		posts:        seed.Posts,
		comments:     make(map[string][]api.Comment),
		content:      make(map[string]api.ContentBlock, len(seed.Content)),
		nextOrder:    1001,
		passwordCost: passwordCost,
	}
	for _, u := range seed.Users {
		if _, err := s.addAccount(u.User, u.Password); err != nil {
			return nil, fmt.Errorf("seeding user %s: %w", u.Email, err)
		}
	}
	for _, block := range seed.Content {
		s.content[block.Key] = block
	}
	return s, nil
}

// addAccount stores a new account. The caller must hold the write lock or be the loader.
func (s *store) addAccount(u api.User, password string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	a := &account{user: u, passwordHash: hash}
	s.accounts[strings.ToLower(u.Email)] = a
	return a, nil
}

func (s *store) accountByEmail(email string) *account {
	return s.accounts[strings.ToLower(strings.TrimSpace(email))]
}

func (s *store) accountByID(id string) *account {
	for _, a := range s.accounts {
		if a.id() == id {
			return a
		}
	}
	return nil
}

func (s *store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].Matches(id) {
			return i
		}
	}
	return -1
}

func (s *store) categoryIndex(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *store) postIndex(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *store) orderIndex(match func(api.Order) bool) int {
	for i := range s.orders {
		if match(s.orders[i]) {
			return i
		}
	}
	return -1
}
