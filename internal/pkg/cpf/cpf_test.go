package cpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"529.982.247-25", true},
		{"52998224725", true},
		{"111.444.777-35", true},
		{"529.982.247-26", false},
		{"111.111.111-11", false},
		{"123", false},
		{"", false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Valid(c.in), c.in)
	}
}

func TestNormalizePadsLostLeadingZeros(t *testing.T) {
	// 012.345.678-90 typed into a numeric spreadsheet cell loses the zero.
	assert.Equal(t, "01234567890", Normalize("1234567890"))
	assert.Equal(t, "12", Normalize("1-2"))
}

func TestParse(t *testing.T) {
	got, err := Parse(" 529.982.247-25 ")
	require.NoError(t, err)
	assert.Equal(t, "52998224725", got)

	_, err = Parse("000.000.000-00")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "529.982.247-25", Format("52998224725"))
	assert.Equal(t, "abc", Format("abc"))
}
