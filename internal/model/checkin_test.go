package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInStatusValid(t *testing.T) {
	assert.True(t, CheckInStatusWaiting.Valid())
	assert.True(t, CheckInStatusInConsultation.Valid())
	assert.True(t, CheckInStatusCompleted.Valid())
	assert.True(t, CheckInStatusCancelled.Valid())
	assert.False(t, CheckInStatus("paused").Valid())
	assert.False(t, CheckInStatus("").Valid())
}

func TestCheckInStatusTerminal(t *testing.T) {
	assert.False(t, CheckInStatusWaiting.Terminal())
	assert.False(t, CheckInStatusInConsultation.Terminal())
	assert.True(t, CheckInStatusCompleted.Terminal())
	assert.True(t, CheckInStatusCancelled.Terminal())
}
