// file: internal/importer/importer.go
// version: 1.1.0
// guid: 4e8a2c7d-6f0b-4b9e-a1d3-8c5f7e2a9d64

package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"

	"github.com/novelshelf/novelshelf/internal/database"
	"github.com/novelshelf/novelshelf/internal/metrics"
)

// Manifest is the root of an import file.
type Manifest struct {
	Novels []NovelEntry `yaml:"novels"`
}

// NovelEntry describes one novel and its chapters in the manifest.
type NovelEntry struct {
	Title       string         `yaml:"title"`
	Author      string         `yaml:"author"`
	Slug        string         `yaml:"slug"`
	Description string         `yaml:"description"`
	Lang        string         `yaml:"lang"`
	Status      string         `yaml:"status"`
	Genres      []string       `yaml:"genres"`
	Tags        []string       `yaml:"tags"`
	Folders     []string       `yaml:"folders"`
	Chapters    []ChapterEntry `yaml:"chapters"`
}

// ChapterEntry describes one chapter. Seq is required and must be unique
// within the novel.
type ChapterEntry struct {
	Seq      int            `yaml:"seq"`
	Title    string         `yaml:"title"`
	Volume   *int           `yaml:"volume"`
	Variants []VariantEntry `yaml:"variants"`
}

// VariantEntry describes one rendition of a chapter's text. Content may be
// inline or loaded from a file path relative to the manifest.
type VariantEntry struct {
	Type        string `yaml:"type"`
	Lang        string `yaml:"lang"`
	Title       string `yaml:"title"`
	Content     string `yaml:"content"`
	ContentFile string `yaml:"content_file"`
	SourceURL   string `yaml:"source_url"`
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Primary     bool   `yaml:"primary"`
}

// Result summarizes one import run.
type Result struct {
	NovelsCreated   int
	NovelsMatched   int
	ChaptersCreated int
	ChaptersSkipped int
	Variants        int
	VariantsSkipped int
}

// LoadManifest parses the YAML manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	for i, n := range m.Novels {
		if n.Title == "" {
			return nil, fmt.Errorf("novel %d has no title", i)
		}
		seen := make(map[int]bool, len(n.Chapters))
		for _, c := range n.Chapters {
			if c.Seq <= 0 {
				return nil, fmt.Errorf("novel %q: chapter seq must be positive, got %d", n.Title, c.Seq)
			}
			if seen[c.Seq] {
				return nil, fmt.Errorf("novel %q: duplicate chapter seq %d", n.Title, c.Seq)
			}
			seen[c.Seq] = true
		}
	}
	return &m, nil
}

// Run imports the manifest into the store. Novels are matched by slug when
// one already exists, chapters by (novel, seq); existing chapters are skipped
// rather than overwritten, so re-running an import is safe.
func Run(store *database.SQLiteStore, manifestPath string) (*Result, error) {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(manifestPath)
	result := &Result{}

	total := 0
	for _, n := range m.Novels {
		total += len(n.Chapters)
	}
	bar := progressbar.Default(int64(total))

	for i := range m.Novels {
		if err := importNovel(store, baseDir, &m.Novels[i], result, bar); err != nil {
			return result, fmt.Errorf("failed to import novel %q: %w", m.Novels[i].Title, err)
		}
	}
	return result, nil
}

func importNovel(store *database.SQLiteStore, baseDir string, entry *NovelEntry, result *Result, bar *progressbar.ProgressBar) error {
	slug := entry.Slug
	if slug == "" {
		slug = Slugify(entry.Title)
	}

	novel, err := store.GetNovelBySlug(slug)
	if err != nil {
		return err
	}
	if novel == nil {
		novel, err = store.CreateNovel(&database.Novel{
			Title:        entry.Title,
			Author:       nullablePtr(entry.Author),
			Description:  nullablePtr(entry.Description),
			LangOriginal: nullablePtr(entry.Lang),
			Status:       entry.Status,
			Slug:         &slug,
		})
		if err != nil {
			return err
		}
		result.NovelsCreated++
		metrics.IncImportedNovel()
	} else {
		result.NovelsMatched++
	}

	if err := attachFacets(store, novel.ID, entry); err != nil {
		return err
	}

	for i := range entry.Chapters {
		if err := importChapter(store, baseDir, novel.ID, &entry.Chapters[i], result); err != nil {
			return err
		}
		bar.Add(1)
	}
	return nil
}

func attachFacets(store *database.SQLiteStore, novelID int64, entry *NovelEntry) error {
	for _, name := range entry.Genres {
		genre, err := store.GetOrCreateGenre(name)
		if err != nil {
			return err
		}
		if err := store.AddNovelGenre(novelID, genre.ID); err != nil {
			return err
		}
	}
	for _, name := range entry.Tags {
		tag, err := store.GetOrCreateTag(name)
		if err != nil {
			return err
		}
		if err := store.AddNovelTag(novelID, tag.ID); err != nil {
			return err
		}
	}
	for _, name := range entry.Folders {
		folder, err := store.GetOrCreateFolder(name)
		if err != nil {
			return err
		}
		if err := store.AddNovelToFolder(novelID, folder.ID); err != nil {
			return err
		}
	}
	return nil
}

func importChapter(store *database.SQLiteStore, baseDir string, novelID int64, entry *ChapterEntry, result *Result) error {
	chapter, err := store.GetChapterBySeq(novelID, entry.Seq)
	if err != nil {
		return err
	}
	if chapter == nil {
		chapter, err = store.CreateChapter(&database.Chapter{
			NovelID:      novelID,
			Seq:          entry.Seq,
			Volume:       entry.Volume,
			DisplayTitle: nullablePtr(entry.Title),
		})
		if err != nil {
			return err
		}
		result.ChaptersCreated++
	} else {
		result.ChaptersSkipped++
	}

	for i := range entry.Variants {
		if err := importVariant(store, baseDir, chapter.ID, &entry.Variants[i], result); err != nil {
			return err
		}
	}
	return nil
}

func importVariant(store *database.SQLiteStore, baseDir string, chapterID int64, entry *VariantEntry, result *Result) error {
	content := entry.Content
	if content == "" && entry.ContentFile != "" {
		data, err := os.ReadFile(filepath.Join(baseDir, entry.ContentFile))
		if err != nil {
			return fmt.Errorf("failed to read content file %s: %w", entry.ContentFile, err)
		}
		content = string(data)
	}

	variantType := entry.Type
	if variantType == "" {
		variantType = database.VariantRaw
	}
	lang := entry.Lang
	if lang == "" {
		lang = "und"
	}

	_, err := store.CreateVariant(&database.ChapterVariant{
		ChapterID:   chapterID,
		VariantType: variantType,
		Lang:        lang,
		Title:       nullablePtr(entry.Title),
		Content:     content,
		SourceURL:   nullablePtr(entry.SourceURL),
		Provider:    nullablePtr(entry.Provider),
		ModelName:   nullablePtr(entry.Model),
		IsPrimary:   entry.Primary,
	})
	if err != nil {
		// A (chapter, type, lang) collision means this variant was already
		// imported; skip it so re-runs stay idempotent.
		if database.IsConstraintViolation(err) {
			result.VariantsSkipped++
			return nil
		}
		return err
	}
	result.Variants++
	return nil
}

// Slugify lowercases the title and replaces runs of non-alphanumeric runes
// with single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func nullablePtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
