package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepLinkRoundTrip(t *testing.T) {
	t.Parallel()

	original := "https://www.rap-up.com/2025/03/10/new-video?ref=feed&x=1"
	title := "Rapper & Producer Team Up: \"Part 2\""

	link := BuildDeepLink("https://rewriter.example.com/", original, title)
	assert.Contains(t, link, "https://rewriter.example.com/article?")

	gotURL, gotTitle, err := ParseDeepLink(link)
	require.NoError(t, err)
	assert.Equal(t, original, gotURL)
	assert.Equal(t, title, gotTitle)
}

func TestDeepLinkRelativeWithoutBase(t *testing.T) {
	t.Parallel()

	link := BuildDeepLink("", "https://hiphopdx.com/a", "A")
	assert.Equal(t, "/article?title=A&url=https%3A%2F%2Fhiphopdx.com%2Fa", link)

	gotURL, _, err := ParseDeepLink(link)
	require.NoError(t, err)
	assert.Equal(t, "https://hiphopdx.com/a", gotURL)
}

func TestParseDeepLinkRejectsBadTargets(t *testing.T) {
	t.Parallel()

	for _, link := range []string{
		"/article",
		"/article?url=ftp%3A%2F%2Fhost%2Ffile",
		"/article?url=%2Frelative",
		"%zz",
	} {
		_, _, err := ParseDeepLink(link)
		assert.ErrorIs(t, err, ErrBadDeepLink, link)
	}
}

func TestAttributionKeywordsAreWholeWords(t *testing.T) {
	t.Parallel()

	a := NewAttribution([]string{"said", "spoke with", "  "}, []string{"allhiphop.com"})

	assert.True(t, a.Required("He said so.", "https://hiphopdx.com/a"))
	assert.True(t, a.Required("She spoke\nwith reporters.", "https://hiphopdx.com/a"))
	assert.False(t, a.Required("Nothing unsaid here.", "https://hiphopdx.com/a"))
	assert.True(t, a.Required("Nothing here.", "https://www.allhiphop.com/a"))
	assert.False(t, NewAttribution(nil, nil).Required("He said so.", "https://allhiphop.com/a"))
}
