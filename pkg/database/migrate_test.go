package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "file://./migrations", sourceURL("./migrations"))
	assert.Equal(t, "file:///srv/migrations", sourceURL("/srv/migrations"))
	assert.Equal(t, "github://org/repo/migrations", sourceURL("github://org/repo/migrations"))
}
