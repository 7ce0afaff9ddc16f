// Package hyperv imports exported VM images by shelling out to the Hyper-V
// cmdlets through powershell.exe.
package hyperv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	diskFolder    = "Virtual Hard Disks"
	machineFolder = "Virtual Machines"
)

// ValidateImportLayout checks that dir looks like a Hyper-V export and
// returns the path of its machine definition. An export carries exactly one
// .vmcx; anything else means the wrong directory was handed in.
func ValidateImportLayout(dir string) (string, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", errors.Errorf("%s is not a directory", dir)
	}

	for _, sub := range []string{diskFolder, machineFolder} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			return "", errors.Errorf("%s is missing the '%s' folder", dir, sub)
		}
	}

	entries, err := os.ReadDir(filepath.Join(dir, machineFolder))
	if err != nil {
		return "", errors.Wrapf(err, "failed to list %s", filepath.Join(dir, machineFolder))
	}

	var definitions []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".vmcx") {
			definitions = append(definitions, filepath.Join(dir, machineFolder, entry.Name()))
		}
	}

	switch len(definitions) {
	case 0:
		return "", errors.Errorf("%s contains no .vmcx machine definition", dir)
	case 1:
		return definitions[0], nil
	default:
		return "", errors.Errorf("%s contains %d .vmcx files, expected exactly one", dir, len(definitions))
	}
}
