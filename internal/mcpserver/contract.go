package mcpserver

// NoteFormatContract describes the Markdown file format of a note in the
// vault, for LLM consumers that read or write notes.
const NoteFormatContract = `# EchoNotes Note Format

Every note lives in the vault as one Markdown file named ` + "`" + `<id>.md` + "`" + `.

## Structure

` + "```" + `markdown
---
id: 3f2b8c1e-...                    # note id; defaults to the file name stem
title: Human-readable title         # falls back to the first "# " heading
tags:                               # OPTIONAL YAML list
  - planning
folder: "2"                         # OPTIONAL folder id (1 Personal, 2 Work, 3 Research)
trash: true                         # OPTIONAL, only present for trashed notes
updated: 2 days ago                 # OPTIONAL display string; the file date when absent
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The ` + "`" + `---` + "`" + ` fences must be the first thing in the file.
2. Inline ` + "`" + `#tags` + "`" + ` in the body are merged into the tag list only for
   files without an ` + "`" + `id` + "`" + `. Once a note has an id, ` + "`" + `tags` + "`" + ` is the full list.
3. A note links to every other note whose title appears in its body, ignoring
   case. There is no link syntax: write the other note's title.
4. The excerpt is the first 100 characters of the body unless an
   ` + "`" + `excerpt` + "`" + ` key overrides it.
5. Encoding is UTF-8.

## Example

` + "```" + `markdown
---
id: "202"
title: Weekly Goals
tags:
  - work
  - goals
folder: "2"
updated: 3 days ago
---
Sprint goals for next week:
1. Finish API documentation
5. Update Project Delta Notes with progress
` + "```" + `
`
