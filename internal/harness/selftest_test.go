package harness_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"glacier/internal/engine"
	"glacier/internal/harness"
)

func TestRunSelfTest_PassesAgainstTheRealEngine(t *testing.T) {
	book := engine.New(nil)
	err := harness.RunSelfTest(book, zerolog.Nop())
	assert.NoError(t, err)
}
