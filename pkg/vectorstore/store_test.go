package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionName(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		want   string
	}{
		{name: "plain id", userID: "alice", want: "u-alice"},
		{name: "uuid style", userID: "5f4c1a2b-0000-4abc-9def-000000000001", want: "u-5f4c1a2b-0000-4abc-9def-000000000001"},
		{name: "underscore", userID: "user_42", want: "u-user_42"},
		{name: "email", userID: "a@b.c", want: "h-6140622e63"},
		{name: "path traversal", userID: "../../etc", want: "h-2e2e2f2e2e2f657463"},
		{name: "unicode", userID: "пользователь", want: "h-d0bfd0bed0bbd18cd0b7d0bed0b2d0b0d182d0b5d0bbd18c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollectionName(tt.userID))
		})
	}
}

// Distinct user ids must never share a collection, including ids crafted to
// collide with the encoded form of another.
func TestCollectionNameInjective(t *testing.T) {
	ids := []string{
		"alice",
		"h-616c696365", // safe id that looks like alice's hex form
		"a.b",
		"a_b",
		"61622e63", // safe id equal to the hex of "ab.c"
		"ab.c",
	}

	seen := map[string]string{}
	for _, id := range ids {
		name := CollectionName(id)
		prev, dup := seen[name]
		assert.False(t, dup, "collision between %q and %q on %q", id, prev, name)
		seen[name] = id
	}
}
