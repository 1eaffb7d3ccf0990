package operations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joshyorko/depclean/anywork"
	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/progresscore"
	"github.com/joshyorko/depclean/sbom"
)

// ErrDuplicateTarget marks documents whose cleaned file name collides with
// another document of the same batch. None of them are written.
var ErrDuplicateTarget = errors.New("several documents would be cleaned into the same file")

// FileResult is the outcome of pruning one local or remote document.
type FileResult struct {
	Source      string       `json:"source"`
	Target      string       `json:"target"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	Report      *sbom.Report `json:"report,omitempty"`
	Failure     string       `json:"error,omitempty"`

	Err     error         `json:"-"`
	Elapsed time.Duration `json:"-"`
}

// PrunedTarget names the cleaned file of a resource. Local files get it next
// to themselves unless an output directory is given; remote resources land
// in the output directory, or the working directory.
func PrunedTarget(resource, outputDir string) string {
	name := cloud.ResourceName(resource)
	for _, suffix := range []string{".spdx.json", ".json"} {
		if strings.HasSuffix(strings.ToLower(name), suffix) && len(name) > len(suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	directory := outputDir
	if len(directory) == 0 {
		directory = "."
		if stat, err := os.Stat(resource); err == nil && stat.Mode().IsRegular() {
			directory = filepath.Dir(resource)
		}
	}
	return filepath.Join(directory, name+cleanedSuffix)
}

// PruneFiles cleans every resource as its own work item on the worker pool.
// Results come back in input order; a failing item does not stop the others.
func PruneFiles(ctx context.Context, resources []string, outputDir string, options PruneOptions) ([]*FileResult, error) {
	defer common.Stopwatch("Pruning %d documents lasted", len(resources)).Debug()

	if len(outputDir) > 0 {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, err
		}
	}
	tracker := progresscore.NewTracker(resources)
	tracker.OnUpdate(func(stats progresscore.Stats) {
		common.Debug("Pruned %d/%d documents, %d failed, about %s to go.", stats.Finished(), stats.Total, stats.Failed, stats.ETA.Round(time.Millisecond))
	})
	results := make([]*FileResult, len(resources))
	targets, clashes := plannedTargets(resources, outputDir)
	var guard sync.Mutex
	for at, resource := range resources {
		at, resource := at, resource
		if others, ok := clashes[at]; ok {
			err := fmt.Errorf("%w: %s is also the target of %s", ErrDuplicateTarget, targets[at], strings.Join(others, ", "))
			common.Error(resource, err)
			tracker.Fail(at, err.Error())
			results[at] = &FileResult{Source: resource, Target: targets[at], Failure: err.Error(), Err: err}
			continue
		}
		anywork.Backlog(func() {
			tracker.Start(at)
			result := pruneFile(ctx, resource, targets[at], options)
			if result.Err != nil {
				tracker.Fail(at, result.Failure)
			} else {
				tracker.Done(at)
			}
			if item, ok := tracker.Item(at); ok {
				result.Elapsed = item.Duration()
			}
			guard.Lock()
			results[at] = result
			guard.Unlock()
		})
	}
	err := anywork.Sync()
	for at, result := range results {
		if result == nil {
			results[at] = &FileResult{Source: resources[at], Failure: "pruning did not finish"}
		}
	}
	return results, err
}

// plannedTargets names the output of every resource and finds resources
// which would write the same file. Those are reported by index with the
// other resources sharing their target.
func plannedTargets(resources []string, outputDir string) ([]string, map[int][]string) {
	targets := make([]string, len(resources))
	owners := make(map[string][]int, len(resources))
	for at, resource := range resources {
		targets[at] = PrunedTarget(resource, outputDir)
		key := filepath.Clean(targets[at])
		if absolute, err := filepath.Abs(key); err == nil {
			key = absolute
		}
		owners[key] = append(owners[key], at)
	}
	clashes := make(map[int][]string)
	for _, indexes := range owners {
		if len(indexes) < 2 {
			continue
		}
		for _, at := range indexes {
			others := make([]string, 0, len(indexes)-1)
			for _, other := range indexes {
				if other != at {
					others = append(others, resources[other])
				}
			}
			clashes[at] = others
		}
	}
	return targets, clashes
}

func pruneFile(ctx context.Context, resource, target string, options PruneOptions) *FileResult {
	result := &FileResult{Source: resource, Target: target}
	fail := func(err error) *FileResult {
		result.Err = err
		result.Failure = err.Error()
		common.Error(resource, err)
		return result
	}
	raw, err := cloud.ReadFile(ctx, resource)
	if err != nil {
		return fail(err)
	}
	cleaned, err := CleanContent(raw, options)
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(target, cleaned.Content, 0o644); err != nil {
		return fail(err)
	}
	result.Report = cleaned.Report
	result.Fingerprint = cleaned.Fingerprint
	common.Debug("Pruned %q into %q.", resource, target)
	return result
}

// Failed counts results that did not produce a cleaned document.
func Failed(results []*FileResult) int {
	count := 0
	for _, result := range results {
		if result == nil || len(result.Failure) > 0 {
			count++
		}
	}
	return count
}
