package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsJunk_ShortAlwaysJunk(t *testing.T) {
	f := New([]string{"hiring", "engineer"})

	// Keywords do not rescue a too-short comment.
	assert.True(t, f.IsJunk("hiring engineer"))
	assert.True(t, f.IsJunk(""))
	assert.True(t, f.IsJunk(strings.Repeat("x", 59)))
}

func TestIsJunk_KeywordRescuesLongComment(t *testing.T) {
	f := New([]string{"hiring", "engineer"})

	post := "Acme Corp | Senior Engineer | Remote | We build widgets and we pay well."
	assert.False(t, f.IsJunk(post))
}

func TestIsJunk_LongWithoutKeywordIsJunk(t *testing.T) {
	f := New([]string{"hiring", "engineer"})

	chatter := "I emailed them three weeks ago about the posting and never heard anything back, very disappointing."
	assert.True(t, f.IsJunk(chatter))
}

func TestIsJunk_CaseInsensitive(t *testing.T) {
	f := New([]string{"hiring"})

	post := "ACME CORP IS HIRING A SENIOR WIDGET SPECIALIST FOR OUR DISTRIBUTED TEAM."
	assert.False(t, f.IsJunk(post))
}

func TestNew_DropsEmptyKeywords(t *testing.T) {
	f := New([]string{"", "  ", "hiring"})
	assert.Len(t, f.keywords, 1)
}
