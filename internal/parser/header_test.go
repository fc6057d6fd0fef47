package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Header
	}{
		{
			name: "speaker with company and timestamp",
			raw:  "Jane Doe | Acme Corp 3:45",
			want: Header{Speaker: "Jane Doe | Acme Corp", Timestamp: "3:45"},
		},
		{
			name: "timestamp glued to company",
			raw:  "Jane Doe | Acme3:45",
			want: Header{Speaker: "Jane Doe | Acme", Timestamp: "3:45"},
		},
		{
			name: "plain name",
			raw:  "Luis Pérez 12:07",
			want: Header{Speaker: "Luis Pérez", Timestamp: "12:07"},
		},
		{
			name: "collapses whitespace",
			raw:  "  Luis\n\t Pérez   |  Contoso   0:05 ",
			want: Header{Speaker: "Luis Pérez | Contoso", Timestamp: "0:05"},
		},
		{
			name: "trailing pipe is stripped",
			raw:  "Ana | 1:02",
			want: Header{Speaker: "Ana", Timestamp: "1:02"},
		},
		{
			name: "no timestamp",
			raw:  "Ana Gómez",
			want: Header{Speaker: "Ana Gómez"},
		},
		{
			name: "timestamp only",
			raw:  "3:45",
			want: Header{Timestamp: "3:45"},
		},
		{
			name: "digit run too long to be a timestamp",
			raw:  "Ana Acme123:45",
			want: Header{Speaker: "Ana Acme"},
		},
		{
			name: "exact token wins over trailing noise",
			raw:  "Ana 1:30 2",
			want: Header{Speaker: "Ana", Timestamp: "1:30"},
		},
		{
			name: "empty",
			raw:  "   ",
			want: Header{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHeader(tt.raw))
		})
	}
}

func TestParseHeaderTail(t *testing.T) {
	assert.Equal(t, Header{Speaker: "Jane Doe | Acme Corp", Timestamp: "3:45"},
		ParseHeaderTail("Jane Doe | Acme Corp 3:45"))
	assert.Equal(t, Header{Speaker: "Ana", Timestamp: "12:07"}, ParseHeaderTail("Ana 12:07"))
	assert.Equal(t, Header{Speaker: "Ana"}, ParseHeaderTail("Ana"))
	assert.Equal(t, Header{}, ParseHeaderTail(""))

	// The tail variant reads the last five characters only, so a count digit
	// fused after the timestamp defeats it; the tokenizing parser copes.
	assert.Empty(t, ParseHeaderTail("Ana 1:30 2").Timestamp)
	assert.Equal(t, "1:30", ParseHeader("Ana 1:30 2").Timestamp)
}

func TestJoinFragments(t *testing.T) {
	assert.Equal(t, "Jane Doe | Acme 3:45", JoinFragments([]string{"Jane Doe", " | ", "Acme", "3:45"}))
	assert.Equal(t, "", JoinFragments(nil))
	assert.Equal(t, "a b", JoinFragments([]string{" a ", "", "  ", "b"}))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "3:45", Timestamp("at 3:45 pm"))
	assert.Equal(t, "", Timestamp("no time"))
}
