package ai

import (
	"errors"
	"testing"
)

func TestValidatePalette(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "valid", raw: `{"palette":["#0D1117","#C9D1D9","#161B22","#58A6FF","#F0F6FC"]}`},
		{name: "valid_lowercase", raw: `{"palette":["#0d1117","#c9d1d9","#161b22","#58a6ff","#f0f6fc"]}`},
		{name: "not_json", raw: `palette: #000000`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
		{name: "top_level_array", raw: `["#0D1117","#C9D1D9","#161B22","#58A6FF","#F0F6FC"]`, wantErr: true},
		{name: "missing_field", raw: `{"colors":["#0D1117","#C9D1D9","#161B22","#58A6FF","#F0F6FC"]}`, wantErr: true},
		{name: "null_field", raw: `{"palette":null}`, wantErr: true},
		{name: "wrong_type", raw: `{"palette":"#0D1117"}`, wantErr: true},
		{name: "too_few", raw: `{"palette":["#0D1117","#C9D1D9"]}`, wantErr: true},
		{name: "too_many", raw: `{"palette":["#0D1117","#C9D1D9","#161B22","#58A6FF","#F0F6FC","#FFFFFF"]}`, wantErr: true},
		{name: "short_hex", raw: `{"palette":["#111","#222","#333","#444","#555"]}`, wantErr: true},
		{name: "non_string", raw: `{"palette":[1,2,3,4,5]}`, wantErr: true},
		{name: "missing_hash", raw: `{"palette":["0D1117","#C9D1D9","#161B22","#58A6FF","#F0F6FC"]}`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			palette, err := ValidatePalette(test.raw)
			if test.wantErr {
				if !errors.Is(err, ErrFormat) {
					t.Fatalf("expected ErrFormat, got %v", err)
				}
				if !errors.Is(err, ErrExtraction) {
					t.Fatalf("format errors must also match ErrExtraction")
				}
				if palette != nil {
					t.Fatalf("expected no palette, got %v", palette)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(palette) != 5 {
				t.Fatalf("expected 5 colors, got %d", len(palette))
			}
		})
	}
}

func TestUserMessage_FormatAndCallFailuresMatch(t *testing.T) {
	if UserMessage(ErrFormat) != UserMessage(ErrExtraction) {
		t.Fatalf("format and extraction failures must share a user message")
	}
	if UserMessage(nil) != "" {
		t.Fatalf("nil error must produce no message")
	}
	if UserMessage(ErrInvalidInput) == UserMessage(ErrExtraction) {
		t.Fatalf("invalid input should explain what is missing")
	}
}
