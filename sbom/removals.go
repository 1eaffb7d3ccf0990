package sbom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode"

	"github.com/joshyorko/depclean/common"
)

// RemovalList is the outcome of reading a removal-list file.
type RemovalList struct {
	Names    NameSet
	Comments int
	Blanks   int
	Skipped  []string
	Notes    []string
}

// ParseRemovalList reads newline-delimited package names. Lines starting
// with '#' are comments, their text is kept as notes. Blank lines and lines which cannot be a package
// name are skipped without error.
func ParseRemovalList(reader io.Reader) (*RemovalList, error) {
	result := &RemovalList{Names: NewNameSet()}
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case len(line) == 0:
			result.Blanks++
		case strings.HasPrefix(line, "#"):
			result.Comments++
			if note := strings.TrimSpace(line[1:]); len(note) > 0 {
				result.Notes = append(result.Notes, note)
			}
		case strings.IndexFunc(line, unicode.IsSpace) >= 0:
			result.Skipped = append(result.Skipped, line)
		default:
			result.Names.Add(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadRemovalList reads a removal-list file. A missing file is not an error
// and gives an empty list.
func LoadRemovalList(filename string) (*RemovalList, error) {
	if len(filename) == 0 {
		return &RemovalList{Names: NewNameSet()}, nil
	}
	source, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		common.Debug("No removal list at %q, nothing will be removed by name.", filename)
		return &RemovalList{Names: NewNameSet()}, nil
	}
	if err != nil {
		return nil, err
	}
	defer source.Close()
	result, err := ParseRemovalList(source)
	if err != nil {
		return nil, err
	}
	for _, line := range result.Skipped {
		common.Debug("Skipping removal list entry %q, it is not a package name.", line)
	}
	common.Debug("Removal list %q has %d names.", filename, len(result.Names))
	return result, nil
}

// WriteRemovalList writes names in the removal-list format, sorted, after
// a comment header.
func WriteRemovalList(writer io.Writer, header string, names NameSet) error {
	buffered := bufio.NewWriter(writer)
	for _, line := range strings.Split(strings.TrimSpace(header), "\n") {
		if len(line) > 0 {
			fmt.Fprintf(buffered, "# %s\n", line)
		}
	}
	for _, name := range names.Sorted() {
		fmt.Fprintln(buffered, name)
	}
	return buffered.Flush()
}
