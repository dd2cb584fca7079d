package hn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"entities decoded",
			"Acme &amp; Co is hiring &#x2F; remote",
			"Acme & Co is hiring / remote",
		},
		{
			"paragraph tags become breaks",
			"First line<p>Second line",
			"First line\n\nSecond line",
		},
		{
			"anchor text kept",
			`Apply at <a href="https://acme.example">https:&#x2F;&#x2F;acme.example</a> today`,
			"Apply at https://acme.example today",
		},
		{
			"whitespace trimmed",
			"  padded  ",
			"padded",
		},
		{
			"plain text untouched",
			"no markup here",
			"no markup here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeText(tt.in))
		})
	}
}
