package textproto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glacier/internal/common"
	"glacier/internal/textproto"
)

func TestParse_Limit(t *testing.T) {
	cmd, err := textproto.Parse("L B 1 100 10")
	require.NoError(t, err)
	assert.Equal(t, textproto.KindOrder, cmd.Kind)
	assert.Equal(t, common.Order{Side: common.Buy, ID: 1, Price: 100, Quantity: 10}, cmd.Order)
}

func TestParse_Iceberg(t *testing.T) {
	cmd, err := textproto.Parse("I S 1 100 20 10")
	require.NoError(t, err)
	assert.Equal(t, textproto.KindOrder, cmd.Kind)
	assert.Equal(t, common.Order{Side: common.Sell, ID: 1, Price: 100, Quantity: 20, Peak: 10}, cmd.Order)
}

func TestParse_Cancel(t *testing.T) {
	cmd, err := textproto.Parse("C 42")
	require.NoError(t, err)
	assert.Equal(t, textproto.KindCancel, cmd.Kind)
	assert.Equal(t, uint32(42), cmd.CancelID)
}

func TestParse_BlankAndCommentLinesAreSkippable(t *testing.T) {
	_, err := textproto.Parse("")
	assert.ErrorIs(t, err, textproto.ErrEmptyLine)

	_, err = textproto.Parse("   ")
	assert.ErrorIs(t, err, textproto.ErrEmptyLine)

	_, err = textproto.Parse("# a comment")
	assert.ErrorIs(t, err, textproto.ErrEmptyLine)
}

func TestParse_RejectsMalformedLines(t *testing.T) {
	cases := []string{
		"X 1 2 3",
		"L B 1 100",
		"L B 1 100 10 extra",
		"L Z 1 100 10",
		"L B abc 100 10",
		"C",
	}
	for _, line := range cases {
		_, err := textproto.Parse(line)
		assert.Error(t, err, "expected parse error for %q", line)
	}
}
