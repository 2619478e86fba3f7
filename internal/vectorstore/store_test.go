package vectorstore

import (
	"strings"
	"testing"
)

func TestCollectionName(t *testing.T) {
	cases := []struct {
		name     string
		userID   string
		expected string
	}{
		{name: "plain", userID: "alice", expected: "user_alice"},
		{name: "dashes", userID: "alice-smith", expected: "user_alice_smith"},
		{name: "email", userID: "alice@example.com", expected: "user_alice_at_example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CollectionName(tc.userID); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestCollectionNameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 80)

	got := CollectionName(long)
	if got != "user_"+strings.Repeat("a", 50) {
		t.Fatalf("expected the id to be capped at 50 characters, got %q", got)
	}
}

func TestCollectionNameDeterministic(t *testing.T) {
	if CollectionName("bob@corp-x.io") != CollectionName("bob@corp-x.io") {
		t.Fatalf("expected identical names for identical user ids")
	}
}
