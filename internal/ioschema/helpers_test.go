package ioschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCollationSQL(t *testing.T) {
	template := `ALTER TABLE %s ALTER COLUMN %s TYPE VARCHAR(%d) COLLATE "C"`
	got := formatCollationSQL(template, "games", "slug", 255)
	assert.Equal(t,
		`ALTER TABLE games ALTER COLUMN slug TYPE VARCHAR(255) COLLATE "C"`,
		got)
}
