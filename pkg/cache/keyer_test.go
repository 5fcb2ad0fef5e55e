package cache

import (
	"strings"
	"testing"
)

func TestSearchKeyCredentialClassSeparation(t *testing.T) {
	k := NewDefaultKeyer()

	anon := k.SearchKey("phnom penh", "followers", 1, "", NoKey)
	authed := k.SearchKey("phnom penh", "followers", 1, "", WithKey)

	if anon == authed {
		t.Error("anonymous and authenticated keys must never collide")
	}
}

func TestSearchKeyComponents(t *testing.T) {
	k := NewDefaultKeyer()
	base := k.SearchKey("cambodia", "followers", 1, "", NoKey)

	variants := []string{
		k.SearchKey("cambodia", "repositories", 1, "", NoKey),
		k.SearchKey("cambodia", "followers", 2, "", NoKey),
		k.SearchKey("cambodia", "followers", 1, "Y3Vyc29y", NoKey),
		k.SearchKey("vietnam", "followers", 1, "", NoKey),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d should produce a distinct key", i)
		}
	}

	// Same parameters, same key.
	if again := k.SearchKey("cambodia", "followers", 1, "", NoKey); again != base {
		t.Error("identical parameters must produce identical keys")
	}

	// Empty cursor and explicit "none" are the same slot.
	if k.SearchKey("cambodia", "followers", 1, "none", NoKey) != base {
		t.Error(`empty cursor should normalize to "none"`)
	}
}

func TestUserKey(t *testing.T) {
	k := NewDefaultKeyer()
	if k.UserKey("octocat", NoKey) == k.UserKey("octocat", WithKey) {
		t.Error("user keys must separate credential classes")
	}
	if k.UserKey("octocat", NoKey) == k.UserKey("defunkt", NoKey) {
		t.Error("distinct logins must produce distinct keys")
	}
	if !strings.HasPrefix(k.UserKey("octocat", NoKey), "user:") {
		t.Error("user keys should carry the user prefix")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "gitranked:")

	key := scoped.SearchKey("cambodia", "followers", 1, "", NoKey)
	if !strings.HasPrefix(key, "gitranked:search:") {
		t.Errorf("scoped key missing prefix: %q", key)
	}
	if strings.TrimPrefix(key, "gitranked:") != inner.SearchKey("cambodia", "followers", 1, "", NoKey) {
		t.Error("scoped key should wrap the inner key unchanged")
	}
}

func TestClassForToken(t *testing.T) {
	if ClassForToken("") != NoKey {
		t.Error("empty token should map to no-key")
	}
	if ClassForToken("ghp_abc") != WithKey {
		t.Error("non-empty token should map to with-key")
	}
}
