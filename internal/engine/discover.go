// Completion: 100% - Orchestration complete
package engine

import "fmt"

// TreeReport is the outcome of discovering and extracting a single
// candidate tree. Per spec.md §7, a failure on tree i never aborts
// discovery of tree j — every candidate gets its own report.
type TreeReport struct {
	Index      int         `json:"index"`
	OutputDir  string      `json:"output_dir,omitempty"`
	FileCount  int         `json:"file_count"`
	Partial    bool        `json:"partial"`
	Diagnostic *Diagnostic `json:"diagnostic,omitempty"`
}

// Options configures a single discovery+extraction run.
type Options struct {
	MaxWalkEntries int
	Verbose        bool
	LogFunc        func(format string, args ...any)
}

func (o Options) log(format string, args ...any) {
	if o.Verbose && o.LogFunc != nil {
		o.LogFunc(format, args...)
	}
}

// Run performs the full discovery pipeline (names -> tree -> blobs) and
// extracts every validated tree under outRoot, one zero-padded
// subdirectory per tree. It returns a report per located tree, or a
// NotFoundErr when no name region or no matching tree is found.
func Run(buf []byte, outRoot string, opts Options) ([]TreeReport, error) {
	m, mapErr := ParseExecutableMap(buf)
	if mapErr != nil {
		opts.log("executable map: %v (falling back to delta-only blob recovery)", mapErr)
		m = nil
	} else {
		opts.log("container=%s arch=%s segments=%d", m.Kind(), m.Arch(), len(m.Segments()))
	}

	spans := ScanNameSpans(buf)
	opts.log("discovered %d name span(s)", len(spans))
	if len(spans) == 0 {
		return nil, &NotFoundErr{What: "no name region"}
	}

	trees := LocateTrees(buf, spans, opts.MaxWalkEntries)
	opts.log("located %d tree(s)", len(trees))
	if len(trees) == 0 {
		return nil, &NotFoundErr{What: "no tree matching any name region"}
	}

	reports := make([]TreeReport, 0, len(trees))
	for i, t := range trees {
		reports = append(reports, runOneTree(buf, t, i, outRoot, m, opts))
	}
	return reports, nil
}

func runOneTree(buf []byte, t *Tree, index int, outRoot string, m *ExecutableMap, opts Options) TreeReport {
	outDir := fmt.Sprintf("%s/%03d", outRoot, index)

	blob := LocateBlob(buf, t, m)
	if blob.Partial {
		opts.log("tree %d: blob region not recovered, extracting structure only", index)
	}

	if err := ExtractTree(buf, t, blob, outDir); err != nil {
		diag := &Diagnostic{TreeIndex: index, Kind: classifyKind(err), Message: err.Error()}
		return TreeReport{Index: index, OutputDir: outDir, Partial: true, Diagnostic: diag}
	}

	return TreeReport{
		Index:     index,
		OutputDir: outDir,
		FileCount: countFiles(t),
		Partial:   blob.Partial,
	}
}

func countFiles(t *Tree) int {
	n := 0
	for _, e := range t.Entries {
		if !e.IsDir {
			n++
		}
	}
	return n
}
