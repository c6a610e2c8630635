package auth

import (
	"testing"
	"time"
)

func TestCanWrite(t *testing.T) {
	admin := User{ID: "u1", Role: RoleAdmin}
	captain := User{ID: "u2", Role: RoleCaptain, TeamID: "team-a"}
	visitor := User{ID: "u3", Role: RoleVisitor}

	cases := []struct {
		name string
		user User
		res  Resource
		want bool
	}{
		{"admin writes teams", admin, Resource{Kind: ResourceTeam}, true},
		{"admin writes matches", admin, Resource{Kind: ResourceMatch}, true},
		{"admin writes any roster", admin, Resource{Kind: ResourcePlayer, TeamID: "team-b"}, true},
		{"captain writes own roster", captain, Resource{Kind: ResourcePlayer, TeamID: "team-a"}, true},
		{"captain cannot write other roster", captain, Resource{Kind: ResourcePlayer, TeamID: "team-b"}, false},
		{"captain cannot write teams", captain, Resource{Kind: ResourceTeam, TeamID: "team-a"}, false},
		{"captain cannot write matches", captain, Resource{Kind: ResourceMatch}, false},
		{"visitor writes nothing", visitor, Resource{Kind: ResourcePlayer, TeamID: "team-a"}, false},
		{"captain without team writes nothing", User{Role: RoleCaptain}, Resource{Kind: ResourcePlayer}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanWrite(tc.user, tc.res); got != tc.want {
				t.Errorf("CanWrite = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	in := User{ID: "u42", Role: RoleCaptain, TeamID: "team-a"}

	token, err := NewToken(secret, in, time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	out, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewToken([]byte("right"), User{ID: "u", Role: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if _, err := ParseToken([]byte("wrong"), token); err == nil {
		t.Error("ParseToken accepted a token signed with another secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("s")
	token, err := NewToken(secret, User{ID: "u", Role: RoleAdmin}, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if _, err := ParseToken(secret, token); err == nil {
		t.Error("ParseToken accepted an expired token")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := ParseToken([]byte("s"), "not-a-token"); err == nil {
		t.Error("ParseToken accepted garbage")
	}
}
