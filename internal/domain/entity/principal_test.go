package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal_RolePredicates(t *testing.T) {
	reader := &Principal{Role: RoleReader}
	editor := &Principal{Role: RoleEditor}
	journalist := &Principal{Role: RoleJournalist}
	var anonymous *Principal

	assert.True(t, reader.IsReader())
	assert.False(t, reader.IsEditor())
	assert.True(t, editor.IsEditor())
	assert.True(t, journalist.IsJournalist())

	assert.False(t, anonymous.IsReader())
	assert.False(t, anonymous.IsEditor())
	assert.False(t, anonymous.IsJournalist())
	assert.Equal(t, "", anonymous.Group())
	assert.Equal(t, "Journalist", journalist.Group())
}

func TestPublisher_HasEditor(t *testing.T) {
	p := &Publisher{ID: 1, Name: "Acme Publishing", EditorIDs: []int64{3, 5}}

	assert.True(t, p.HasEditor(5))
	assert.False(t, p.HasEditor(4))
}

func TestSubscriptions_IsEmpty(t *testing.T) {
	assert.True(t, Subscriptions{}.IsEmpty())
	assert.False(t, Subscriptions{JournalistIDs: []int64{1}}.IsEmpty())
	assert.False(t, Subscriptions{PublisherIDs: []int64{1}}.IsEmpty())
}
