package modulemap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bennypowers.dev/cembundle/internal/modulemap"
)

func TestModuleMapPreservesInsertionOrder(t *testing.T) {
	m := modulemap.New()
	m.Set("./c.js", "c")
	m.Set("./a.js", "a")
	m.Set("./b.js", "b")
	assert.Equal(t, []string{"./c.js", "./a.js", "./b.js"}, m.Keys())
}

func TestModuleMapReinsertKeepsPosition(t *testing.T) {
	m := modulemap.New()
	m.Set("./a.js", "1")
	m.Set("./b.js", "2")
	m.Set("./a.js", "updated")
	assert.Equal(t, []string{"./a.js", "./b.js"}, m.Keys())
	src, ok := m.Get("./a.js")
	assert.True(t, ok)
	assert.Equal(t, "updated", src)
}

func TestModuleMapGetMissing(t *testing.T) {
	m := modulemap.New()
	_, ok := m.Get("./nope.js")
	assert.False(t, ok)
	assert.False(t, m.Has("./nope.js"))
}

func TestModuleMapClone(t *testing.T) {
	m := modulemap.New()
	m.Set("./a.js", "1")
	clone := m.Clone()
	clone.Set("./b.js", "2")
	assert.Equal(t, []string{"./a.js"}, m.Keys())
	assert.Equal(t, []string{"./a.js", "./b.js"}, clone.Keys())
}

func TestUsageMapMark(t *testing.T) {
	u := make(modulemap.UsageMap)
	assert.False(t, u.Has("./a.js"))
	u.Mark("./a.js", "foo")
	assert.True(t, u.Has("./a.js"))
}
