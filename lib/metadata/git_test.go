package metadata

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/ether/revpanel/lib/exception"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runGit(t *testing.T, dir string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(), env...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	return string(out)
}

// newGitRepository creates a repository with two commits; the first one is
// tagged v1 and stable.
func newGitRepository(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	dir := t.TempDir()
	runGit(t, dir, nil, "init", "-q")
	runGit(t, dir, nil, "config", "user.name", "alice")
	runGit(t, dir, nil, "config", "user.email", "alice@example.com")
	runGit(t, dir, nil, "config", "commit.gpgsign", "false")
	runGit(t, dir, nil, "config", "tag.gpgsign", "false")

	commit := func(file, message, date string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(message), 0o644))
		runGit(t, dir, nil, "add", file)
		runGit(t, dir, []string{"GIT_AUTHOR_DATE=" + date, "GIT_COMMITTER_DATE=" + date}, "commit", "-q", "-m", message)
	}

	commit("a.txt", "Fix bug", "@1704067200 +0000")
	runGit(t, dir, nil, "tag", "v1")
	runGit(t, dir, nil, "tag", "stable")
	commit("b.txt", "Add feature\n\nWith a longer body.", "@1704153600 +0000")
	return dir
}

func TestGitFetcherReadsHeadForEmptyRevision(t *testing.T) {
	dir := newGitRepository(t)
	fetcher := NewGitFetcher("git", map[string]string{"guestbook": dir}, zap.NewNop().Sugar())

	m, err := fetcher.RevisionMetadata(context.Background(), "guestbook", "")
	require.NoError(t, err)
	require.Equal(t, "alice <alice@example.com>", m.Author)
	require.Equal(t, "Add feature\n\nWith a longer body.", m.Message)
	require.Empty(t, m.Tags)
	require.True(t, m.Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestGitFetcherReadsTaggedRevision(t *testing.T) {
	dir := newGitRepository(t)
	fetcher := NewGitFetcher("", map[string]string{"guestbook": dir}, zap.NewNop().Sugar())

	m, err := fetcher.RevisionMetadata(context.Background(), "guestbook", "v1")
	require.NoError(t, err)
	require.Equal(t, "Fix bug", m.Message)
	require.Equal(t, []string{"stable", "v1"}, m.Tags)
}

func TestGitFetcherUnknownRevision(t *testing.T) {
	dir := newGitRepository(t)
	fetcher := NewGitFetcher("git", map[string]string{"guestbook": dir}, zap.NewNop().Sugar())

	_, err := fetcher.RevisionMetadata(context.Background(), "guestbook", "does-not-exist")
	var notFound *exception.RevisionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGitFetcherUnknownApplication(t *testing.T) {
	fetcher := NewGitFetcher("git", nil, zap.NewNop().Sugar())

	_, err := fetcher.RevisionMetadata(context.Background(), "guestbook", "")
	var notFound *exception.ApplicationNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.True(t, IsNotFound(err))
}

func TestGitFetcherRejectsOptionLikeRevision(t *testing.T) {
	fetcher := NewGitFetcher("git", map[string]string{"guestbook": t.TempDir()}, zap.NewNop().Sugar())

	_, err := fetcher.RevisionMetadata(context.Background(), "guestbook", "--output=/tmp/x")
	require.Error(t, err)
	require.False(t, IsNotFound(err))
}

func TestParseCommit(t *testing.T) {
	m, err := parseCommit("\x00\x002024-01-01T01:00:00+01:00\x00Fix bug\n\n")
	require.NoError(t, err)
	require.False(t, m.HasAuthor())
	require.Equal(t, "Fix bug", m.Message)
	require.True(t, m.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = parseCommit("broken")
	require.Error(t, err)
}
