package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

func TestConflictSet_Merge(t *testing.T) {
	fresh := []transaction.CreateParams{{Description: "new"}}
	set := newConflictSet([]transaction.Conflict{
		{Incoming: transaction.CreateParams{Description: "dup 1"}},
		{Incoming: transaction.CreateParams{Description: "dup 2"}},
	})

	assert.Len(t, set.merge(fresh), 1)

	set.toggle(1)
	merged := set.merge(fresh)
	require.Len(t, merged, 2)
	assert.Equal(t, "dup 2", merged[1].Description)

	set.setAll(true)
	assert.Len(t, set.merge(fresh), 3)
	assert.Len(t, fresh, 1)

	assert.NotPanics(t, func() { set.toggle(5) })
}
