package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstTextLine(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "simple card",
			fragment: `<div><h3>Complete Rust Course</h3><span>RustChannel</span></div>`,
			want:     "Complete Rust Course",
		},
		{
			name:     "skips script and style noise",
			fragment: `<div><script>var x = 1;</script><style>.a{}</style><a>Real Title</a></div>`,
			want:     "Real Title",
		},
		{
			name:     "whitespace only nodes ignored",
			fragment: "<div>\n\t  \n<p>  Title After Whitespace  </p></div>",
			want:     "Title After Whitespace",
		},
		{
			name:     "empty fragment",
			fragment: "",
			want:     "",
		},
		{
			name:     "no visible text",
			fragment: `<div><script>only code</script></div>`,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstTextLine(tt.fragment, 100))
		})
	}
}

func TestFirstTextLine_Truncation(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := FirstTextLine("<p>"+long+"</p>", 100)
	assert.Len(t, got, 100)
}
