package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeOptionsPrecedence(t *testing.T) {
	parent := &Binding{name: "parent"}
	a := &ResourceOptions{
		Version:       "1.0.0",
		Protect:       true,
		IgnoreChanges: []string{"tags"},
		Provider:      "aws::default",
	}
	b := &ResourceOptions{
		Version:       "2.0.0",
		Parent:        parent,
		IgnoreChanges: []string{"acl"},
	}

	merged := MergeOptions(a, b)

	assert.Equal(t, "2.0.0", merged.Version)
	assert.Equal(t, parent, merged.Parent)
	assert.True(t, merged.Protect)
	assert.Equal(t, []string{"tags", "acl"}, merged.IgnoreChanges)
	assert.Equal(t, "aws::default", merged.Provider)

	// Neither input is mutated.
	assert.Equal(t, "1.0.0", a.Version)
	assert.Equal(t, []string{"tags"}, a.IgnoreChanges)
	assert.Nil(t, a.Parent)
}

func TestMergeOptionsNil(t *testing.T) {
	assert.NotNil(t, MergeOptions(nil, nil))

	a := &ResourceOptions{Protect: true}
	merged := MergeOptions(a, nil)
	assert.True(t, merged.Protect)

	// The merge is a copy, not an alias.
	merged.Protect = false
	assert.True(t, a.Protect)
}

func TestMergeOptionsID(t *testing.T) {
	a := &ResourceOptions{ID: "i-old", DeleteBeforeReplace: true}
	merged := MergeOptions(a, &ResourceOptions{ID: "i-new"})

	assert.Equal(t, "i-new", merged.ID)
	assert.True(t, merged.DeleteBeforeReplace)
}

func TestMergeOptionsReplaceOnChanges(t *testing.T) {
	a := &ResourceOptions{ReplaceOnChanges: []string{"tags"}}
	b := &ResourceOptions{ReplaceOnChanges: []string{"*"}}

	assert.Equal(t, []string{"tags", "*"}, MergeOptions(a, b).ReplaceOnChanges)
}
