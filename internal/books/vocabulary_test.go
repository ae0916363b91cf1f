package books

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadVocabulary(t *testing.T) {
	sheet := strings.Join([]string{
		"key,value,notes",
		"fiction,Fiction,",
		"mysteries-thrillers,Mysteries & Thrillers,extra column ignored",
		"kids,Kids’ Books,",
	}, "\n")

	vocab, err := ReadVocabulary(strings.NewReader(sheet))
	require.NoError(t, err)

	require.Equal(t, []string{"fiction", "mysteries-thrillers", "kids"}, vocab.Slugs())
	require.Equal(t, "Fiction", vocab.DisplayName("fiction"))
	// display names get their curly quotes straightened on load
	require.Equal(t, "Kids' Books", vocab.DisplayName("kids"))

	slug, ok := vocab.SlugOf("mysteries & thrillers")
	require.True(t, ok)
	require.Equal(t, "mysteries-thrillers", slug)

	_, ok = vocab.SlugOf("no such tag")
	require.False(t, ok)
}

func TestReadVocabularyEmptySheet(t *testing.T) {
	vocab, err := ReadVocabulary(strings.NewReader("key,value\n"))
	require.NoError(t, err)
	require.Empty(t, vocab.Slugs())
}
