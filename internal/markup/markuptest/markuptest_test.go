package markuptest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"sitebuilder/internal/markup"
)

func TestFindAndTextContent(t *testing.T) {
	root := markup.El("div", nil,
		markup.El("span", []markup.Attr{markup.A("class", "a b")}, markup.Text("one")),
		markup.El("span", []markup.Attr{markup.A("class", "c")}, markup.Text("two")),
	)
	found := Find(root, func(n *html.Node) bool { return HasClass(n, "b") })
	require.Len(t, found, 1)
	assert.Equal(t, "one", TextContent(found[0]))
	assert.Equal(t, "onetwo", TextContent(root))

	class, ok := AttrValue(found[0], "class")
	assert.True(t, ok)
	assert.Equal(t, "a b", class)
	_, ok = AttrValue(found[0], "id")
	assert.False(t, ok)
}
