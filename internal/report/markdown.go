package report

import (
	"fmt"
	"os"
	"strings"
)

func BuildMarkdown(r Report) string {
	var b strings.Builder
	b.WriteString("# GraphQL Recovery Report\n\n")
	b.WriteString(fmt.Sprintf("- Run: `%s`\n", r.RunID))
	b.WriteString(fmt.Sprintf("- Generated: `%s` by %s %s\n", r.GeneratedAt, r.Generator.Name, r.Generator.Version))
	if r.Source.Offline {
		b.WriteString("- Source: offline chunk file\n")
	} else {
		b.WriteString(fmt.Sprintf("- Site: %s\n", r.Source.BaseURL))
		b.WriteString(fmt.Sprintf("- Build ID: `%s`\n", r.Source.BuildID))
	}
	b.WriteString(fmt.Sprintf("- Chunk: `%s` (%s)\n", r.Source.ChunkID, r.Source.ChunkURL))
	b.WriteString(fmt.Sprintf("- Chunk Digest: `%s`\n", r.Source.ChunkDigest))
	b.WriteString(fmt.Sprintf("- Determinism: %d run(s), digest `%s`\n\n", r.Determinism.Runs, r.Determinism.Digest))

	if r.Index != nil {
		b.WriteString("## Asset Index\n\n")
		b.WriteString(fmt.Sprintf("- Manifest Keys: `%d`\n", r.Index.ManifestKeys))
		b.WriteString(fmt.Sprintf("- Chunk IDs: `%d`\n", r.Index.ChunkIDs))
		if r.Index.CollisionPolicy != "" {
			b.WriteString(fmt.Sprintf("- Collision Policy: `%s`\n", r.Index.CollisionPolicy))
		}
		if len(r.Index.Collisions) > 0 {
			b.WriteString("\n| ID | Kept | Dropped |\n")
			b.WriteString("|---|---|---|\n")
			for _, c := range r.Index.Collisions {
				b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", c.ID, c.Kept, c.Dropped))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Operations\n\n")
	b.WriteString(fmt.Sprintf("- Documents: `%d`\n", r.Operations.Count))
	for _, k := range sortedKeys(r.Operations.ByKind) {
		b.WriteString(fmt.Sprintf("- %s: `%d`\n", k, r.Operations.ByKind[k]))
	}
	if len(r.Operations.Documents) > 0 {
		b.WriteString("\n| # | Kind | Name |\n")
		b.WriteString("|---:|---|---|\n")
		for i, d := range r.Operations.Documents {
			name := d.Name
			if name == "" {
				name = "-"
			}
			b.WriteString(fmt.Sprintf("| %d | %s | %s |\n", i+1, d.Kind, name))
		}
	}

	b.WriteString("\n## Types\n\n")
	b.WriteString(fmt.Sprintf("- Declarations: `%d`\n", r.Types.Count))
	for _, k := range sortedKeys(r.Types.ByKind) {
		b.WriteString(fmt.Sprintf("- %s: `%d`\n", k, r.Types.ByKind[k]))
	}

	b.WriteString("\n## Artifacts\n\n")
	b.WriteString("| Name | Size | Digest |\n")
	b.WriteString("|---|---:|---|\n")
	for _, a := range r.Artifacts {
		b.WriteString(fmt.Sprintf("| %s | %d | `%s` |\n", a.Name, a.Size, a.Digest))
	}
	return b.String()
}

func WriteMarkdown(path string, r Report) error {
	return os.WriteFile(path, []byte(BuildMarkdown(r)), 0o644)
}
