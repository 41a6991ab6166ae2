// Package session holds the signed-in user and the persisted bearer tokens.
package session

import (
	"strings"

	"github.com/thomas/lookbook-terminal/internal/api"
)

// RoleAdmin is the role value of admin accounts.
const RoleAdmin = "admin"

// Profile is the flat view of a user used by the screens.
type Profile struct {
	ID        string
	Email     string
	Name      string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	City      string
	Postal    string
	Country   string
	Role      string
}

// IsAdmin reports whether the user may use the admin console.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Normalize flattens a server user record. Values from the nested profile take
// precedence over the top-level ones. A nil record yields nil.
func Normalize(raw *api.User) *Profile {
	if raw == nil {
		return nil
	}

	var nested api.UserProfile
	if raw.Profile != nil {
		nested = *raw.Profile
	}

	p := &Profile{
		ID:        firstNonEmpty(raw.ID, raw.AltID),
		Email:     raw.Email,
		FirstName: firstNonEmpty(nested.FirstName, raw.FirstName),
		LastName:  firstNonEmpty(nested.LastName, raw.LastName),
		Phone:     firstNonEmpty(nested.Phone, raw.Phone),
		Address:   firstNonEmpty(nested.Address, raw.Address),
		City:      firstNonEmpty(nested.City, raw.City),
		Postal:    firstNonEmpty(nested.Postal, raw.Postal),
		Country:   firstNonEmpty(nested.Country, raw.Country),
		Role:      raw.Role,
	}

	p.Name = strings.TrimSpace(raw.Name)
	if p.Name == "" {
		p.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	if p.FirstName == "" && p.LastName == "" && p.Name != "" {
		parts := strings.Fields(p.Name)
		p.FirstName = parts[0]
		p.LastName = strings.Join(parts[1:], " ")
	}

	return p
}

// ShippingAddress prefills the checkout form from the profile.
func (p *Profile) ShippingAddress() api.ShippingAddress {
	if p == nil {
		return api.ShippingAddress{}
	}
	return api.ShippingAddress{
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Address: p.Address,
		City:    p.City,
		Postal:  p.Postal,
		Country: p.Country,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
