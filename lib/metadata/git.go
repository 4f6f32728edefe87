package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ether/revpanel/lib/exception"
	"github.com/ether/revpanel/lib/models/revision"
	"github.com/ether/revpanel/lib/utils"
	"go.uber.org/zap"
)

// GitFetcher reads metadata straight from local working copies, one per
// application. The empty revision resolves to HEAD.
type GitFetcher struct {
	binary       string
	repositories map[string]string
	logger       *zap.SugaredLogger
}

func NewGitFetcher(binary string, repositories map[string]string, logger *zap.SugaredLogger) *GitFetcher {
	if binary == "" {
		binary = "git"
	}
	repos := make(map[string]string, len(repositories))
	for app, path := range repositories {
		repos[app] = path
	}
	return &GitFetcher{binary: binary, repositories: repos, logger: logger}
}

func (g *GitFetcher) RevisionMetadata(ctx context.Context, applicationName string, rev string) (*revision.RevisionMetadata, error) {
	repoPath, ok := g.repositories[applicationName]
	if !ok {
		return nil, exception.NewApplicationNotFoundError(applicationName)
	}
	if err := utils.CheckValidRev(rev); err != nil {
		return nil, fmt.Errorf("invalid revision %q: %w", rev, err)
	}

	ref := rev
	if ref == "" {
		ref = "HEAD"
	}

	sha, err := g.git(ctx, repoPath, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, exception.NewRevisionNotFoundError(applicationName, rev, err)
		}
		return nil, err
	}
	sha = strings.TrimSpace(sha)

	out, err := g.git(ctx, repoPath, "show", "-s", "--format=%an%x00%ae%x00%aI%x00%B", sha)
	if err != nil {
		return nil, err
	}
	m, err := parseCommit(out)
	if err != nil {
		return nil, fmt.Errorf("error parsing commit %s: %w", sha, err)
	}

	tags, err := g.git(ctx, repoPath, "tag", "--points-at", sha)
	if err != nil {
		return nil, err
	}
	for _, tag := range strings.Split(tags, "\n") {
		if tag = strings.TrimSpace(tag); tag != "" {
			m.Tags = append(m.Tags, tag)
		}
	}

	g.logger.Debugw("read revision metadata from git", "application", applicationName, "revision", rev, "commit", sha)
	return m, nil
}

func parseCommit(out string) (*revision.RevisionMetadata, error) {
	parts := strings.SplitN(out, "\x00", 4)
	if len(parts) != 4 {
		return nil, fmt.Errorf("unexpected git output with %d fields", len(parts))
	}
	name, email, date, message := parts[0], parts[1], parts[2], parts[3]

	m := &revision.RevisionMetadata{
		Message: strings.TrimRight(message, "\n"),
	}
	switch {
	case name != "" && email != "":
		m.Author = name + " <" + email + ">"
	case name != "":
		m.Author = name
	case email != "":
		m.Author = "<" + email + ">"
	}
	if date = strings.TrimSpace(date); date != "" {
		parsed, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, err
		}
		parsed = parsed.UTC()
		m.Date = &parsed
	}
	return m, nil
}

func (g *GitFetcher) git(ctx context.Context, repoPath string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.binary, append([]string{"-C", repoPath}, args...)...)
	cmd.Env = append(os.Environ(), "LC_ALL=C", "GIT_TERMINAL_PROMPT=0")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("git %s failed: %w\n%s", args[0], err, stderr.String())
	}
	return stdout.String(), nil
}
