package chunker

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeStem turns a file or directory name into an id prefix: the
// extension is removed, the rest is NFC-normalized, lower-cased and spaces
// become underscores. "My CV.pdf" becomes "my_cv".
func NormalizeStem(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = norm.NFC.String(stem)
	return strings.ReplaceAll(strings.ToLower(stem), " ", "_")
}

// listTopLevel returns the files directly inside dir whose extension matches
// ext exactly, sorted by name.
func listTopLevel(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, sourceErr(dir, -1, err)
	}

	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ext {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// listRecursive returns every file under dir with extension ext, in lexical
// walk order.
func listRecursive(dir, ext string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, sourceErr(dir, -1, err)
	}

	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && filepath.Ext(d.Name()) == ext {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, sourceErr(dir, -1, err)
	}
	return out, nil
}
