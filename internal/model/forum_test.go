package model

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateForumContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", ErrContentRequired},
		{"single char", "a", nil},
		{"at limit", strings.Repeat("a", MaxForumContentLength), nil},
		{"over limit", strings.Repeat("a", MaxForumContentLength+1), ErrContentTooLong},
		{"multibyte at limit", strings.Repeat("ß", MaxForumContentLength), nil},
		{"multibyte over limit", strings.Repeat("ß", MaxForumContentLength+1), ErrContentTooLong},
		{"invalid utf8", "\xff\xfe", ErrContentInvalid},
		{"invalid byte inside text", "caf\xe9", ErrContentInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForumContent(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateProductRequest_Validate(t *testing.T) {
	valid := CreateProductRequest{CategoryID: 1, Name: "Mug", PriceCents: 500}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	noName := valid
	noName.Name = ""
	if err := noName.Validate(); !errors.Is(err, ErrNameRequired) {
		t.Errorf("error = %v, want %v", err, ErrNameRequired)
	}

	free := valid
	free.PriceCents = 0
	if err := free.Validate(); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("error = %v, want %v", err, ErrInvalidPrice)
	}
}
