package fresh

import (
	"testing"
)

func TestDefaultAllowList(t *testing.T) {
	a := DefaultAllowList()
	if !a.IsFresh("SecurityUtils", "createSecureToken") {
		t.Fatal("createSecureToken@SecurityUtils should be fresh")
	}
	if a.IsFresh("SecurityUtils", "hash") {
		t.Fatal("hash@SecurityUtils should not be fresh")
	}
	if a.IsFresh("Other", "createSecureToken") {
		t.Fatal("createSecureToken@Other should not be fresh")
	}

	var nothing *AllowList
	if nothing.IsFresh("SecurityUtils", "createSecureToken") {
		t.Fatal("nil allow-list trusts nothing")
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		source    Source
		service   string
		operation string
		want      bool
	}{
		{Source{"Tokens", "issue"}, "Tokens", "issue", true},
		{Source{"?", "issue"}, "Anything", "issue", true},
		{Source{"?", "?"}, "a", "b", true},
		{Source{"?x", "?x"}, "same", "same", true},
		{Source{"?x", "?x"}, "same", "different", false},
		{Source{"?x", "?y"}, "same", "different", true},
		{Source{"Tokens", "?"}, "Other", "issue", false},
	}
	for _, tc := range tests {
		t.Run(tc.source.String(), func(t *testing.T) {
			if got := Matches(tc.source, tc.service, tc.operation); got != tc.want {
				t.Errorf("%s vs %s@%s: got %v", tc.source, tc.operation, tc.service, got)
			}
		})
	}
}

func TestPredicate(t *testing.T) {
	a := &AllowList{
		Predicate: `return _.service === "Vault" && _.operation.indexOf("new") === 0;`,
	}
	if err := a.Compile(); err != nil {
		t.Fatal(err)
	}
	if !a.IsFresh("Vault", "newToken") {
		t.Fatal("newToken@Vault should be fresh")
	}
	if a.IsFresh("Vault", "readToken") {
		t.Fatal("readToken@Vault should not be fresh")
	}
}

func TestPredicateCompileError(t *testing.T) {
	a := &AllowList{Predicate: `return (;`}
	if err := a.Compile(); err == nil {
		t.Fatal("expected a compile error")
	}
	if a.IsFresh("x", "y") {
		t.Fatal("a broken predicate trusts nothing")
	}
}

func TestPredicateNotBoolean(t *testing.T) {
	a := &AllowList{Predicate: `return "yes";`}
	if a.IsFresh("x", "y") {
		t.Fatal("a non-boolean result is not fresh")
	}
}

func TestPredicateTimeout(t *testing.T) {
	a := &AllowList{Predicate: `while (true) {}`}
	if err := a.Compile(); err != nil {
		t.Fatal(err)
	}
	if _, err := runPredicate(a.program, "x", "y"); err != Interrupted {
		t.Fatalf("expected Interrupted, got %v", err)
	}
}
