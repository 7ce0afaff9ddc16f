package runner

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Repo is the subset of `gh repo list --json` output we care about.
type Repo struct {
	Name       string `json:"name"`
	SSHURL     string `json:"sshUrl"`
	URL        string `json:"url"`
	IsArchived bool   `json:"isArchived"`
}

type Gh struct {
	exe    string
	runner CommandRunner
}

func NewGh(exe string, runner CommandRunner) Gh {
	if exe == "" {
		exe = "gh"
	}
	return Gh{exe: exe, runner: runner}
}

// ListOwnedRepos enumerates the authenticated account's repositories,
// archived ones excluded.
func (g Gh) ListOwnedRepos() ([]Repo, error) {
	stdout, code, err := g.runner.Output(g.exe,
		"repo", "list",
		"--json", "name,sshUrl,url,isArchived",
		"--limit", "1000",
	)
	if err != nil {
		return nil, errors.Wrap(err, "gh did not run")
	}
	if ClassifyExit(code) == Failure {
		return nil, errors.Errorf("gh repo list failed with exit code %d", code)
	}

	var all []Repo
	if err := json.Unmarshal([]byte(stdout), &all); err != nil {
		return nil, errors.Wrap(err, "failed to parse gh repo list output")
	}

	var active []Repo
	for _, repo := range all {
		if !repo.IsArchived {
			active = append(active, repo)
		}
	}

	return active, nil
}
