package identity

import "testing"

func TestLookupFromEnvironment(t *testing.T) {
	env := map[string]string{
		"PAGECHAT_USER_NAME":  "Ada Lovelace",
		"PAGECHAT_USER_EMAIL": "ada@example.com",
	}
	p, err := Lookup(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.GivenName != "Ada" || p.Username != "ada" {
		t.Errorf("unexpected profile %+v", p)
	}
	if got := Greeting(p); got != "👋 Hello Ada!" {
		t.Errorf("unexpected greeting %q", got)
	}
}

func TestGreetingWithoutProfile(t *testing.T) {
	if got := Greeting(nil); got != "👋 Hello!" {
		t.Errorf("unexpected greeting %q", got)
	}
	if got := Greeting(&Profile{Username: "dev"}); got != "👋 Hello dev!" {
		t.Errorf("unexpected greeting %q", got)
	}
}

func TestDetailsSkipsEmptyFields(t *testing.T) {
	p := &Profile{Name: "Ada King Lovelace", GivenName: "Ada", FamilyName: "King Lovelace", Email: "ada@example.com"}
	got := Details(p)
	want := []string{
		"First Name: Ada",
		"Last Name: King Lovelace",
		"Full Name: Ada King Lovelace",
		"Email: ada@example.com",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if Details(nil) != nil {
		t.Errorf("expected no details without a profile")
	}
}
