package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/oci"
	"github.com/joshyorko/depclean/sbom"
)

const (
	originalSuffix = "-original.spdx.json"
	cleanedSuffix  = "-cleaned.spdx.json"
)

// PruneOptions describe how documents are cleaned.
type PruneOptions struct {
	Spec     sbom.RemovalSpec
	Matcher  *sbom.Matcher
	Override sbom.AttributionOverride
	Env      sbom.EnvAttribution
	Now      func() time.Time
}

func (it PruneOptions) now() time.Time {
	if it.Now != nil {
		return it.Now()
	}
	return time.Now()
}

// Cleaned is a pruned and re-attributed document, already serialized.
type Cleaned struct {
	Content     []byte
	Report      *sbom.Report
	Fingerprint string
}

// CleanContent parses raw SPDX JSON, prunes it and stamps new creation info.
func CleanContent(raw []byte, options PruneOptions) (*Cleaned, error) {
	doc, err := sbom.Parse(raw)
	if err != nil {
		return nil, err
	}
	cleaned, report, err := sbom.Prune(doc, options.Spec, options.Matcher)
	if err != nil {
		return nil, err
	}
	original := sbom.CreationInfo{}
	if cleaned.CreationInfo != nil {
		original = *cleaned.CreationInfo
	}
	info := sbom.ResolveAttribution(original, options.Override, options.Env, options.now())
	cleaned.CreationInfo = &info
	content, err := sbom.Marshal(cleaned)
	if err != nil {
		return nil, err
	}
	return &Cleaned{
		Content:     content,
		Report:      report,
		Fingerprint: common.Fingerprint(content),
	}, nil
}

// Pusher publishes a cleaned document somewhere, like an OCI registry.
type Pusher interface {
	Push(ctx context.Context, content []byte, mediaType, title string) (*oci.PushResult, error)
}

// Exporter is the part of the Endor Labs client cleaning needs.
type Exporter interface {
	ExportSbom(ctx context.Context, projectUuid, branch string) ([]byte, error)
}

var _ Exporter = (*cloud.Endor)(nil)

type CleanOptions struct {
	Project   string
	Branch    string
	OutputDir string
	Prune     PruneOptions
	Pusher    Pusher
}

type CleanResult struct {
	Project     string          `json:"project"`
	Branch      string          `json:"branch,omitempty"`
	Original    string          `json:"original"`
	Cleaned     string          `json:"cleaned"`
	Fingerprint string          `json:"fingerprint"`
	Report      *sbom.Report    `json:"report"`
	Pushed      *oci.PushResult `json:"pushed,omitempty"`
}

// OriginalFilename and CleanedFilename name the files of one project run.
func OriginalFilename(outputDir, project string) string {
	return filepath.Join(outputDir, project+originalSuffix)
}

func CleanedFilename(outputDir, project string) string {
	return filepath.Join(outputDir, project+cleanedSuffix)
}

// CleanProjectSbom exports the project SBOM, keeps the export as is next to
// the cleaned version and optionally pushes the cleaned one. Nothing cleaned
// is written when the export is not a usable document.
func CleanProjectSbom(ctx context.Context, exporter Exporter, options CleanOptions) (*CleanResult, error) {
	defer common.Stopwatch("Cleaning SBOM of project %s lasted", options.Project).Debug()

	raw, err := exporter.ExportSbom(ctx, options.Project, options.Branch)
	if err != nil {
		return nil, fmt.Errorf("exporting SBOM of project %s: %w", options.Project, err)
	}
	if err := os.MkdirAll(options.OutputDir, 0o755); err != nil {
		return nil, err
	}
	result := &CleanResult{
		Project:  options.Project,
		Branch:   options.Branch,
		Original: OriginalFilename(options.OutputDir, options.Project),
		Cleaned:  CleanedFilename(options.OutputDir, options.Project),
	}
	if err := os.WriteFile(result.Original, raw, 0o644); err != nil {
		return nil, err
	}
	common.Debug("Original SBOM saved as %q (%d bytes).", result.Original, len(raw))

	cleaned, err := CleanContent(raw, options.Prune)
	if err != nil {
		return nil, fmt.Errorf("cleaning SBOM of project %s: %w", options.Project, err)
	}
	if err := os.WriteFile(result.Cleaned, cleaned.Content, 0o644); err != nil {
		return nil, err
	}
	result.Report = cleaned.Report
	result.Fingerprint = cleaned.Fingerprint
	common.Debug("Cleaned SBOM saved as %q (%d bytes).", result.Cleaned, len(cleaned.Content))

	if options.Pusher != nil {
		pushed, err := options.Pusher.Push(ctx, cleaned.Content, sbom.SPDXMediaType, filepath.Base(result.Cleaned))
		if err != nil {
			return result, fmt.Errorf("pushing cleaned SBOM: %w", err)
		}
		result.Pushed = pushed
	}
	return result, nil
}
