package diag

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestListAccumulatesInOrder(t *testing.T) {
	var l List
	if l.Err() != nil {
		t.Fatalf("empty list should yield nil error")
	}
	l.Add(KindConfigFormat, "first")
	l.Addf(KindConfigFormat, "second %d", 2)

	err := l.Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got != "first\nsecond 2" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := l.Messages(); len(got) != 2 || got[1] != "second 2" {
		t.Fatalf("unexpected messages %v", got)
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain", New(KindHierarchy, "x"), KindHierarchy},
		{"wrapped", errors.Wrap(New(KindIO, "x"), "outer"), KindIO},
		{"list", List{New(KindTemplateFormat, "w"), New(KindTemplateFormat, "h")}, KindTemplateFormat},
		{"unclassified", errors.New("x"), 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	if Wrap(KindIO, nil, "ignored") != nil {
		t.Fatalf("wrapping nil should yield nil")
	}

	_, cause := os.Open("/definitely/not/here")
	err := Wrap(KindIO, cause, "opening template")
	if !Is(err, KindIO) {
		t.Fatalf("expected io kind, got %v", KindOf(err))
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist in chain")
	}
	if !strings.HasPrefix(err.Error(), "opening template: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
