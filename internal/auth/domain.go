package auth

import (
	"encoding/json"
	"strings"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/shared"
)

// Credentials are posted to /auth/signin.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is posted to /auth/signup.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Session is the outcome of a successful sign-in or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	Profile      *shared.Profile
}

// tokenPayload accepts the token spellings the backend has used.
type tokenPayload struct {
	AccessToken       string          `json:"accessToken"`
	AccessTokenSnake  string          `json:"access_token"`
	Token             string          `json:"token"`
	RefreshToken      string          `json:"refreshToken"`
	RefreshTokenSnake string          `json:"refresh_token"`
	User              json.RawMessage `json:"user"`
}

func (p tokenPayload) access() string {
	return firstNonEmpty(p.AccessToken, p.AccessTokenSnake, p.Token)
}

func (p tokenPayload) refresh() string {
	return firstNonEmpty(p.RefreshToken, p.RefreshTokenSnake)
}

// remoteUser is the profile as sent by the backend. Roles and permissions
// arrive either as plain codes or as objects.
type remoteUser struct {
	ID          apiclient.ID      `json:"id"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        json.RawMessage   `json:"role"`
	Roles       []json.RawMessage `json:"roles"`
	Permissions []json.RawMessage `json:"permissions"`
}

type namedCode struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Permissions []json.RawMessage `json:"permissions"`
}

func (u remoteUser) profile() shared.Profile {
	p := shared.Profile{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
	if p.FirstName == "" && u.Name != "" {
		first, last, _ := strings.Cut(strings.TrimSpace(u.Name), " ")
		p.FirstName, p.LastName = first, strings.TrimSpace(last)
	}

	seenPerm := make(map[string]struct{})
	addPerms := func(raws []json.RawMessage) {
		for _, raw := range raws {
			code, _ := decodeCode(raw)
			if code == "" {
				continue
			}
			if _, ok := seenPerm[code]; ok {
				continue
			}
			seenPerm[code] = struct{}{}
			p.Permissions = append(p.Permissions, code)
		}
	}

	roles := u.Roles
	if len(u.Role) > 0 && string(u.Role) != "null" {
		roles = append(roles, u.Role)
	}
	for _, raw := range roles {
		code, nested := decodeCode(raw)
		if code != "" {
			p.Roles = append(p.Roles, code)
		}
		addPerms(nested)
	}
	addPerms(u.Permissions)
	return p
}

func decodeCode(raw json.RawMessage) (string, []json.RawMessage) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var obj namedCode
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", nil
	}
	return strings.TrimSpace(firstNonEmpty(obj.Code, obj.Name)), obj.Permissions
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
