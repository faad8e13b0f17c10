package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWantsAutoMigrate(t *testing.T) {
	assert.True(t, wantsAutoMigrate([]string{"--auto-migrate"}))
	assert.True(t, wantsAutoMigrate([]string{"--verbose", "-M"}))
	assert.False(t, wantsAutoMigrate([]string{"migrate"}))
	assert.False(t, wantsAutoMigrate(nil))
}
