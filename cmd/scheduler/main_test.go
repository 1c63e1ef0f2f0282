package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devops-autopost/internal/agent/publisher"
	"github.com/devops-autopost/pkg/logger"
)

func TestNewCron(t *testing.T) {
	log = logger.Nop()

	_, err := newCron(nil, func() {})
	assert.EqualError(t, err, "no publish schedules configured")

	_, err = newCron([]string{"0 9 * * 1", "every tuesday"}, func() {})
	assert.ErrorContains(t, err, `"every tuesday"`)

	c, err := newCron([]string{"0 9 * * 1", "30 14 * * 4"}, func() {})
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}

func TestRunStatus_JSON(t *testing.T) {
	status := &runStatus{}
	status.record(&publisher.RunResult{Published: true, PostURN: "urn:li:share:7"}, nil)
	status.record(nil, errors.New("generator down"))

	body, err := json.Marshal(status)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"runs":2`)
	assert.Contains(t, string(body), `"last_urn":"urn:li:share:7"`)
	assert.Contains(t, string(body), `"last_error":"generator down"`)
}
