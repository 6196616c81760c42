package browse

import "testing"

func TestFuzzyScoreOrdering(t *testing.T) {
	exact := FuzzyScore("notes", "notes")
	substr := FuzzyScore("notes", "meeting-notes.txt")
	token := FuzzyScore("nots", "notes.txt")
	junk := FuzzyScore("zzzz", "notes.txt")

	if exact != 1 {
		t.Fatalf("exact match should score 1, got %v", exact)
	}
	if substr <= token {
		t.Fatalf("substring (%v) should outrank token similarity (%v)", substr, token)
	}
	if junk >= FuzzyThreshold {
		t.Fatalf("unrelated name should fall below threshold, got %v", junk)
	}
}

func TestFuzzyScorePrefixBonus(t *testing.T) {
	prefix := FuzzyScore("read", "readme.md")
	infix := FuzzyScore("read", "unread.md")
	if prefix <= infix {
		t.Fatalf("prefix hit (%v) should outrank infix hit (%v)", prefix, infix)
	}
}

func TestRankMatchesThresholdAndCap(t *testing.T) {
	candidates := make([]SearchResult, 0, 120)
	for i := 0; i < 120; i++ {
		candidates = append(candidates, SearchResult{Name: "invoice.pdf", Path: "a/invoice.pdf", Type: TypeFile})
	}
	candidates = append(candidates, SearchResult{Name: "unrelated.bin", Path: "unrelated.bin", Type: TypeFile})

	got := RankMatches("invoice", candidates)
	if len(got) != MaxSearchResults {
		t.Fatalf("expected cap at %d, got %d", MaxSearchResults, len(got))
	}
	for _, r := range got {
		if r.Name == "unrelated.bin" {
			t.Fatal("below-threshold candidate survived ranking")
		}
	}
}

func TestRankMatchesPrefersShorterPaths(t *testing.T) {
	got := RankMatches("notes", []SearchResult{
		{Name: "notes.txt", Path: "deep/nested/dir/notes.txt", Type: TypeFile},
		{Name: "notes.txt", Path: "notes.txt", Type: TypeFile},
	})
	if len(got) != 2 || got[0].Path != "notes.txt" {
		t.Fatalf("unexpected order: %+v", got)
	}
}
