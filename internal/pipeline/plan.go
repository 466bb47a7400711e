package pipeline

import (
	"git.home.luguber.info/inful/imgup/internal/markdown"
)

// PlannedUpload is an asset a run would upload.
type PlannedUpload struct {
	Line      int
	RawPath   string
	AssetPath string
}

// PlanResult is the outcome of a dry run.
type PlanResult struct {
	RunResult
	Planned []PlannedUpload
}

// Plan scans and resolves like Run but never reads, uploads or rewrites. The
// counters predict a run in which every upload succeeds.
func (o *Orchestrator) Plan(doc Document, req Request) PlanResult {
	var out PlanResult
	seen := make(map[string]bool)

	start, end := lineRange(doc.LineCount(), req.Start, req.End)
	for i := start; i <= end; i++ {
		if req.SkipLines[i] {
			continue
		}
		scan := markdown.ScanLine(doc.Line(i), i)
		out.Ignore += scan.Dropped
		for _, ref := range scan.References {
			if seen[ref.RawPath] {
				out.Success++
				continue
			}
			asset, _, ok := o.classify(ref, req.SourceID)
			if !ok {
				out.Ignore++
				continue
			}
			seen[ref.RawPath] = true
			out.Success++
			out.Planned = append(out.Planned, PlannedUpload{Line: i, RawPath: ref.RawPath, AssetPath: asset.AbsolutePath})
		}
	}
	out.Uploads = len(out.Planned)
	return out
}
