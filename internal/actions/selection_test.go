package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_Toggle(t *testing.T) {
	var s Selection
	s.Toggle(3)
	s.Toggle(1)
	s.Toggle(3)
	s.Toggle(8)
	assert.Equal(t, []int64{1, 8}, s.IDs())
	assert.True(t, s.Has(8))
	assert.False(t, s.Has(3))

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestControls(t *testing.T) {
	var s Selection
	assert.Equal(t, ControlState{Trash: true, Confirm: true}, Controls(s, false))

	s.Toggle(2)
	state := Controls(s, false)
	assert.Equal(t, ControlState{Trash: true, Merge: true}, state)
	assert.True(t, state.Allows(MergeSelected))
	assert.False(t, state.Allows(ConfirmSingleton))

	assert.Equal(t, ControlState{}, Controls(s, true))
}
