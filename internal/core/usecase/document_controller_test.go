package usecase

import (
	"context"
	"testing"

	"real-estate-system/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func version(i int) domain.DocumentVersion {
	return domain.DocumentVersion{VersionIndex: i, Content: string(rune('a' + i)), Status: domain.StatusStreaming}
}

func TestDocumentController_FollowsLatestWhileOnLatest(t *testing.T) {
	c := NewDocumentController(domain.NewDocument(uuid.New()))

	_, err := c.Current()
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.True(t, c.IsCurrentVersion())

	for i := 0; i < 3; i++ {
		require.NoError(t, c.Append(version(i)))
		assert.Equal(t, i, c.SelectedIndex())
		assert.True(t, c.IsCurrentVersion())
	}
	assert.Equal(t, 3, c.VersionCount())

	cur, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, "c", cur.Content)
}

func TestDocumentController_SelectionStaysInHistory(t *testing.T) {
	c := NewDocumentController(domain.NewDocument(uuid.New()))
	require.NoError(t, c.Append(version(0)))
	require.NoError(t, c.Append(version(1)))

	assert.Equal(t, 0, c.Navigate(domain.NavigatePrev))
	assert.False(t, c.IsCurrentVersion())

	require.NoError(t, c.Append(version(2)))
	assert.Equal(t, 0, c.SelectedIndex(), "appends must not move a selection away from history")
	assert.Equal(t, 3, c.VersionCount())
}

func TestDocumentController_NavigationIsNoOpAtEdges(t *testing.T) {
	c := NewDocumentController(domain.NewDocument(uuid.New()))
	require.NoError(t, c.Append(version(0)))
	require.NoError(t, c.Append(version(1)))

	assert.Equal(t, 1, c.Navigate(domain.NavigateNext))
	assert.Equal(t, 0, c.Navigate(domain.NavigatePrev))
	assert.Equal(t, 0, c.Navigate(domain.NavigatePrev))
	assert.Equal(t, 1, c.Navigate(domain.NavigateNext))
}

func TestDocumentController_RejectsOutOfOrderVersions(t *testing.T) {
	c := NewDocumentController(domain.NewDocument(uuid.New()))
	require.NoError(t, c.Append(version(0)))

	assert.ErrorIs(t, c.Append(version(0)), domain.ErrVersionOutOfOrder)
	assert.ErrorIs(t, c.Append(version(2)), domain.ErrVersionOutOfOrder)
	assert.Equal(t, 1, c.VersionCount())
}

func TestDocumentController_StartsOnLatestOfRestoredHistory(t *testing.T) {
	doc := domain.NewDocument(uuid.New())
	doc.Append("a", domain.StatusComplete)
	doc.Append("b", domain.StatusComplete)

	c := NewDocumentController(doc)
	assert.Equal(t, 1, c.SelectedIndex())
	assert.ErrorIs(t, c.Select(2), domain.ErrVersionOutOfRange)
}

func TestNavigateDocument(t *testing.T) {
	repo := newFakeRepo()
	id := uuid.New()
	for _, content := range []string{"v0", "v1", "v2"} {
		_, err := repo.AppendVersion(context.Background(), id, content, domain.StatusComplete)
		require.NoError(t, err)
	}
	uc := NewNavigateDocumentUseCase(NewGetDocumentUseCase(repo))

	res, err := uc.Execute(context.Background(), id, 1, domain.NavigatePrev)
	require.NoError(t, err)
	assert.Equal(t, "v0", res.Version.Content)
	assert.False(t, res.IsCurrentVersion)

	res, err = uc.Execute(context.Background(), id, 2, domain.NavigateNext)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Version.VersionIndex)
	assert.True(t, res.IsCurrentVersion, "next at the latest version stays on it")

	res, err = uc.Execute(context.Background(), id, 1, domain.NavigateNext)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Version.VersionIndex)
	assert.True(t, res.IsCurrentVersion)

	_, err = uc.Execute(context.Background(), id, 7, domain.NavigateNext)
	assert.ErrorIs(t, err, domain.ErrVersionOutOfRange)

	_, err = uc.Execute(context.Background(), uuid.New(), 0, domain.NavigateNext)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
