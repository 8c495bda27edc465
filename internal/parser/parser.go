// Package parser converts between notes and their Markdown file form: a YAML
// frontmatter block followed by the note content.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/echonotes/internal/apperr"
	"github.com/starford/echonotes/internal/models"
)

const delim = "---"

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Frontmatter is the metadata block of a note file.
type Frontmatter struct {
	ID      string   `yaml:"id,omitempty"`
	Title   string   `yaml:"title,omitempty"`
	Excerpt string   `yaml:"excerpt,omitempty"`
	Tags    []string `yaml:"tags,omitempty"`
	Folder  string   `yaml:"folder,omitempty"`
	Trash   bool     `yaml:"trash,omitempty"`
	Updated string   `yaml:"updated,omitempty"`
}

// Encode renders n as a Markdown file. The models.JustNow placeholder is not
// written, so a reload falls back to the file's modification date.
func Encode(n models.Note) ([]byte, error) {
	fm := Frontmatter{
		ID:     n.ID,
		Title:  n.Title,
		Tags:   n.Tags,
		Folder: n.FolderID,
		Trash:  n.IsInTrash,
	}
	if n.Updated != models.JustNow {
		fm.Updated = n.Updated
	}
	if n.Excerpt != models.Excerpt(n.Content) {
		fm.Excerpt = n.Excerpt
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("parser: encode %s: %w", n.ID, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(head) + len(n.Content) + 2*len(delim) + 2)
	buf.WriteString(delim + "\n")
	buf.Write(head)
	buf.WriteString(delim + "\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// Decode parses a note file. fallbackID is used when the frontmatter carries
// no id (a file created outside the app). The title falls back to the first
// H1 heading, then to fallbackID. Files written by the app (frontmatter with
// an id) keep their frontmatter tags as is; for other files inline #tags are
// merged after them. Malformed frontmatter is apperr.ErrValidation.
func Decode(data []byte, fallbackID string) (models.Note, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return models.Note{}, err
	}

	inline := body
	if fm.ID != "" {
		inline = ""
	}
	n := models.Note{
		ID:        fm.ID,
		Title:     deriveTitle(fm, body),
		Content:   body,
		Tags:      mergeTags(fm.Tags, inline),
		Updated:   fm.Updated,
		IsInTrash: fm.Trash,
		FolderID:  fm.Folder,
		Excerpt:   fm.Excerpt,
	}
	if n.ID == "" {
		n.ID = fallbackID
	}
	if n.Title == "" {
		n.Title = fallbackID
	}
	if n.Excerpt == "" {
		n.Excerpt = models.Excerpt(body)
	}
	return n, nil
}

// splitFrontmatter separates the YAML block between leading --- delimiters
// from the body. Without a frontmatter block the whole input is body.
func splitFrontmatter(data []byte) (Frontmatter, string, error) {
	var fm Frontmatter
	if !bytes.HasPrefix(data, []byte(delim+"\n")) && !bytes.HasPrefix(data, []byte(delim+"\r\n")) {
		return fm, string(data), nil
	}

	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data), nil
	}

	yamlBlock := rest[:idx]
	after := rest[idx+1+len(delim):]
	switch {
	case bytes.HasPrefix(after, []byte("\r\n")):
		after = after[2:]
	case bytes.HasPrefix(after, []byte("\n")):
		after = after[1:]
	case len(after) > 0:
		// "---" followed by text on the same line is not a closing delimiter.
		return fm, string(data), nil
	}

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return Frontmatter{}, "", fmt.Errorf("parser: frontmatter: %v: %w", err, apperr.ErrValidation)
	}
	return fm, string(after), nil
}

// mergeTags returns frontmatter tags followed by inline #tags from body,
// without duplicates or blanks.
func mergeTags(fmTags []string, body string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range fmTags {
		add(t)
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter title if present, otherwise the first
// H1 heading, otherwise the empty string.
func deriveTitle(fm Frontmatter, body string) string {
	if fm.Title != "" {
		return fm.Title
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
