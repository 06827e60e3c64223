package layouts

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/codr1/chroma/internal/models"
)

func TestThemeCSSVars(t *testing.T) {
	got := themeCSSVars(models.Palette{"#111111", "bad", "#333333"})

	for _, want := range []string{"--theme-1:#111111;", "--theme-2:#161B22;", "--theme-3:#333333;", "--theme-5:#F0F6FC;"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %s", want, got)
		}
	}
}

func TestBase_EscapesTitle(t *testing.T) {
	var buf bytes.Buffer
	if err := Base("<Chroma>", nil, nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "<title>&lt;Chroma&gt;</title>") {
		t.Fatalf("title not escaped: %s", buf.String())
	}
}
