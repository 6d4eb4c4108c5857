package htmltext

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSelection(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div id="c">  First line<br>Second line
			<p>Para</p><script>var x = 1;</script>
			<ul><li>one</li><li>two</li></ul>
		</div>`))
	require.NoError(t, err)

	got := FromSelection(doc.Find("#c"))

	assert.Equal(t, "First line\nSecond line\nPara\n- one\n- two", got)
}

func TestFromSelectionEmpty(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div></div>`))
	require.NoError(t, err)

	assert.Equal(t, "", FromSelection(doc.Find("#missing")))
}

func TestFromHTML(t *testing.T) {
	assert.Equal(t, "\nIntro\nMore", FromHTML("<p>Intro</p><p>More</p>"))
	assert.Equal(t, "plain", FromHTML("plain"))
}
