package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Anheuser-Busch InBev", "anheuser-busch-inbev"},
		{"Société Générale de Belgique", "societe-generale-de-belgique"},
		{"Café Müller & Zonen", "cafe-muller-zonen"},
		{"  D'Ieteren  ", "d-ieteren"},
		{"ACME (Belgium) S.A.", "acme-belgium-s-a"},
		{"42", "42"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}
