package contracts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevision(t *testing.T) {
	saved := Commit
	defer func() { Commit = saved }()

	Commit = "4f2a9c1"
	assert.Equal(t, "4f2a9c1", Revision())

	Commit = ""
	assert.NotEmpty(t, Revision())
}

func TestDescribe(t *testing.T) {
	d := Describe()
	assert.True(t, strings.HasPrefix(d, "fielddash v"+Version))
	assert.Contains(t, d, "api "+APIVersion)
}
