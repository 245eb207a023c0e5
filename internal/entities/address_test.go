package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercase", input: "3f49624084b67849c7b4e805c5988c21a430f9d9", want: "3f49624084b67849c7b4e805c5988c21a430f9d9"},
		{name: "uppercase", input: "3F49624084B67849C7B4E805C5988C21A430F9D9", want: "3f49624084b67849c7b4e805c5988c21a430f9d9"},
		{name: "0x prefix", input: "0x5ba4dcf897e97c2bdf8315b9ef26c13c085988cf", want: "5ba4dcf897e97c2bdf8315b9ef26c13c085988cf"},
		{name: "0X prefix", input: "0X5ba4dcf897e97c2bdf8315b9ef26c13c085988cf", want: "5ba4dcf897e97c2bdf8315b9ef26c13c085988cf"},
		{name: "too short", input: "3f4962", wantErr: true},
		{name: "too long", input: "3f49624084b67849c7b4e805c5988c21a430f9d9aa", wantErr: true},
		{name: "not hex", input: "zz49624084b67849c7b4e805c5988c21a430f9d9", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseAddress(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
				assert.True(t, addr.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

func TestAddress_Hex(t *testing.T) {
	// Reference vectors from EIP-55
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}

	for _, v := range vectors {
		t.Run(v, func(t *testing.T) {
			addr, err := ParseAddress(v)
			require.NoError(t, err)
			assert.Equal(t, v, addr.Hex())
		})
	}
}

func TestMustParseAddress_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseAddress("nope") })
}
