package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperpolymath/reposystem/pkg/ids"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

// scanCmd discovers repos by walking a filesystem tree looking for .git
// directories and reading a remote url from each. This is intentionally thin:
// spec section 1 places richer discovery heuristics (workspace detection,
// metadata extraction, shallow/deep modes) out of core scope; this
// populates the graph store enough to exercise it end to end.
var scanCmd = &cobra.Command{
	Use:   "scan <path>",
	Short: "Discover repos under path and add them to the graph store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		st, dir, release, err := openStoreLocked(dataDir)
		if err != nil {
			return err
		}
		defer release()

		root := args[0]
		found := 0
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() || d.Name() != ".git" {
				return nil
			}
			repoPath := filepath.Dir(path)
			repo, ok := repoFromGitDir(path, repoPath)
			if ok {
				st.Graph.UpsertRepo(repo)
				found++
			}
			return filepath.SkipDir
		})
		if err != nil {
			return err
		}

		if err := st.SaveAll(); err != nil {
			return err
		}
		fmt.Printf("scanned %s: %d repos added or updated in %s\n", root, found, dir)
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("deep", false, "perform a deeper scan (reserved, out of core per spec section 1)")
	scanCmd.Flags().Bool("shallow", false, "perform a shallower scan (reserved, out of core per spec section 1)")
	scanCmd.Flags().Bool("metadata", false, "extract repo metadata (reserved, out of core per spec section 1)")
	scanCmd.Flags().Bool("detect-workspaces", false, "detect monorepo workspaces (reserved, out of core per spec section 1)")
}

var originURLPattern = regexp.MustCompile(`(?m)^\s*url\s*=\s*(\S+)\s*$`)

// repoFromGitDir reads the first "url =" line in .git/config (whichever
// remote section it belongs to, not necessarily origin) and builds a Repo
// from it, falling back to a forge-less local repo keyed by path when no
// url line is present.
func repoFromGitDir(gitDir, repoPath string) (model.Repo, bool) {
	now := time.Now().UTC()
	name := filepath.Base(repoPath)

	data, err := os.ReadFile(filepath.Join(gitDir, "config"))
	if err != nil {
		return localRepo(repoPath, name, now), true
	}

	m := originURLPattern.FindStringSubmatch(string(data))
	if len(m) != 2 {
		return localRepo(repoPath, name, now), true
	}

	forge, owner, repoName, ok := parseRemoteURL(m[1])
	if !ok {
		return localRepo(repoPath, name, now), true
	}

	return model.Repo{
		ID:         ids.RepoID(forge, owner, repoName),
		Forge:      model.Forge(forge),
		Owner:      owner,
		Name:       repoName,
		Path:       repoPath,
		Visibility: model.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, true
}

func localRepo(repoPath, name string, now time.Time) model.Repo {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		abs = repoPath
	}
	return model.Repo{
		ID:         ids.LocalRepoID(abs),
		Forge:      model.ForgeLocal,
		Name:       name,
		Path:       repoPath,
		Visibility: model.VisibilityPrivate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// parseRemoteURL extracts (forge, owner, repo) from an https or ssh git
// remote URL for the forges spec section 3 names.
func parseRemoteURL(raw string) (forge, owner, repo string, ok bool) {
	hosts := map[string]string{
		"github.com":    "github",
		"gitlab.com":    "gitlab",
		"bitbucket.org": "bitbucket",
		"codeberg.org":  "codeberg",
		"sr.ht":         "sourcehut",
	}

	cleaned := strings.TrimSuffix(raw, ".git")
	cleaned = strings.TrimPrefix(cleaned, "git@")
	cleaned = strings.TrimPrefix(cleaned, "https://")
	cleaned = strings.TrimPrefix(cleaned, "http://")
	cleaned = strings.TrimPrefix(cleaned, "ssh://git@")
	cleaned = strings.Replace(cleaned, ":", "/", 1)

	for host, code := range hosts {
		if !strings.HasPrefix(cleaned, host+"/") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(cleaned, host+"/"), "/")
		if len(parts) < 2 {
			return "", "", "", false
		}
		return code, parts[0], parts[1], true
	}
	return "", "", "", false
}
