package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	cause := stderrors.New("relation exists")
	err := fmt.Errorf("schema apply: %w", Wrap(StatementsFailed, "2 statements failed", cause))

	assert.Equal(t, StatementsFailed, KindOf(err))
	assert.True(t, Is(err, StatementsFailed))
	assert.False(t, Is(err, InvalidInput))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "schema apply: 2 statements failed: relation exists", err.Error())
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, "not signed in", New(NotSignedIn, "not signed in").Error())
}
