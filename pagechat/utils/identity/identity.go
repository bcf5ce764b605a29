package identity

import (
	"fmt"
	"os/user"
	"strings"
)

// Profile is what the client knows about the person chatting.
type Profile struct {
	ID         string
	Name       string
	GivenName  string
	FamilyName string
	Username   string
	Email      string
}

// Lookup reads PAGECHAT_USER_NAME / PAGECHAT_USER_EMAIL and falls back to the
// OS account.
func Lookup(getenv func(string) string) (*Profile, error) {
	p := &Profile{
		Name:  strings.TrimSpace(getenv("PAGECHAT_USER_NAME")),
		Email: strings.TrimSpace(getenv("PAGECHAT_USER_EMAIL")),
	}
	if p.Name == "" {
		u, err := user.Current()
		if err != nil {
			return nil, fmt.Errorf("lookup current user: %w", err)
		}
		p.Name = u.Name
		p.Username = u.Username
		p.ID = u.Uid
	}
	if p.Username == "" && p.Email != "" {
		p.Username = strings.SplitN(p.Email, "@", 2)[0]
	}
	if fields := strings.Fields(p.Name); len(fields) > 0 {
		p.GivenName = fields[0]
		p.FamilyName = strings.Join(fields[1:], " ")
	}
	return p, nil
}

// Greeting is the welcome line shown when the chat opens. p may be nil.
func Greeting(p *Profile) string {
	name := ""
	if p != nil {
		switch {
		case p.GivenName != "":
			name = " " + p.GivenName
		case p.Name != "":
			name = " " + p.Name
		case p.Username != "":
			name = " " + p.Username
		}
	}
	return fmt.Sprintf("👋 Hello%s!", name)
}

// Details lists the known profile fields as "Label: value" lines, skipping
// empty ones.
func Details(p *Profile) []string {
	if p == nil {
		return nil
	}
	var lines []string
	for _, f := range []struct{ label, value string }{
		{"First Name", p.GivenName},
		{"Last Name", p.FamilyName},
		{"Full Name", p.Name},
		{"Email", p.Email},
		{"Username", p.Username},
		{"User ID", p.ID},
	} {
		if f.value != "" {
			lines = append(lines, f.label+": "+f.value)
		}
	}
	return lines
}
