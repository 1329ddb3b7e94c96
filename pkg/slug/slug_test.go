package slug_test

import (
	"testing"

	"github.com/gamedex/gdb/pkg/slug"
	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Half-Life", "half-life"},
		{"spaces", "Super Mario Bros.", "super-mario-bros"},
		{"punctuation run collapses", "Ratchet & Clank", "ratchet-clank"},
		{"leading junk dropped", "...The Witness", "the-witness"},
		{"trailing junk dropped", "Portal 2!!!", "portal-2"},
		{"digits kept", "Xbox 360", "xbox-360"},
		{"slash", "Xbox Series X/S", "xbox-series-x-s"},
		{"unicode letters kept", "Pokémon", "pokémon"},
		{"empty", "", ""},
		{"only junk", "***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Make(tt.input))
		})
	}
}
