package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestPairColorRules(t *testing.T) {
	t.Run("pairs in order", func(t *testing.T) {
		set, err := pairColorRules("", []string{"<warn>", "<error>"}, []string{"3", "196"})
		if err != nil {
			t.Fatalf("pairColorRules failed: %v", err)
		}
		if len(set) != 2 {
			t.Fatalf("got %d rules, want 2", len(set))
		}
		if set[0].Color != 3 || set[1].Color != 196 {
			t.Errorf("colors = %d, %d, want 3, 196", set[0].Color, set[1].Color)
		}
		if !set[0].Pattern.Match("a <warn> b") {
			t.Error("first rule should match its pattern")
		}
	})

	t.Run("applies prefix", func(t *testing.T) {
		set, err := pairColorRules(`^\d+ `, []string{"ERROR"}, []string{"1"})
		if err != nil {
			t.Fatalf("pairColorRules failed: %v", err)
		}
		if !set[0].Pattern.Match("123 ERROR boom") {
			t.Error("prefixed line should match")
		}
		if set[0].Pattern.Match("ERROR boom") {
			t.Error("line without the prefix should not match")
		}
	})

	t.Run("count mismatch", func(t *testing.T) {
		_, err := pairColorRules("", []string{"a", "b"}, []string{"1"})
		if err == nil {
			t.Fatal("expected error for unpaired pattern")
		}
		if !strings.Contains(err.Error(), "2 pattern(s)") || !strings.Contains(err.Error(), "1 color(s)") {
			t.Errorf("error should report both counts: %v", err)
		}
	})

	t.Run("bad pattern", func(t *testing.T) {
		if _, err := pairColorRules("", []string{"("}, []string{"1"}); err == nil {
			t.Fatal("expected error for invalid regex")
		}
	})

	t.Run("bad color", func(t *testing.T) {
		_, err := pairColorRules("", []string{"a"}, []string{"chartreuse"})
		if err == nil {
			t.Fatal("expected error for invalid color")
		}
		if !strings.Contains(err.Error(), "chartreuse") {
			t.Errorf("error should name the literal: %v", err)
		}
	})
}

func TestOptionalColor(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{}
		c.Flags().StringP("color", "c", "", "")
		return c
	}

	t.Run("absent flag means no color", func(t *testing.T) {
		c, err := optionalColor(newCmd())
		if err != nil {
			t.Fatalf("optionalColor failed: %v", err)
		}
		if c != nil {
			t.Errorf("expected nil color, got %d", *c)
		}
	})

	t.Run("set flag parses", func(t *testing.T) {
		cmd := newCmd()
		if err := cmd.Flags().Set("color", "28"); err != nil {
			t.Fatal(err)
		}
		c, err := optionalColor(cmd)
		if err != nil {
			t.Fatalf("optionalColor failed: %v", err)
		}
		if c == nil || *c != 28 {
			t.Errorf("got %v, want 28", c)
		}
	})

	t.Run("invalid value errors", func(t *testing.T) {
		cmd := newCmd()
		if err := cmd.Flags().Set("color", "300"); err != nil {
			t.Fatal(err)
		}
		if _, err := optionalColor(cmd); err == nil {
			t.Error("expected error for out-of-range color")
		}
	})
}

func TestOpenInput(t *testing.T) {
	t.Run("dash is stdin", func(t *testing.T) {
		in, err := openInput("-")
		if err != nil {
			t.Fatalf("openInput(-) failed: %v", err)
		}
		in.Close()
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := openInput("/no/such/file.log"); err == nil {
			t.Error("expected error for missing input file")
		}
	})
}
