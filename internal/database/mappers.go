// file: internal/database/mappers.go
// version: 1.1.0
// guid: 5a8c2e7d-4b9f-4a3c-9d1e-6f2b8a0c4e7d

package database

// Entity mappers: one decode (scan) and one encode (insert values) function
// per entity. They coerce stored integer booleans to logical booleans and
// apply documented defaults; they perform no validation. Required-field
// checks (e.g. a non-empty title) are the caller's responsibility.

const novelColumns = `
	id, title, author, description, cover_path, lang_original,
	status, release_status, slug, created_at, updated_at
`

func scanNovel(scanner rowScanner, n *Novel) error {
	return scanner.Scan(
		&n.ID, &n.Title, &n.Author, &n.Description, &n.CoverPath,
		&n.LangOriginal, &n.Status, &n.ReleaseStatus, &n.Slug,
		&n.CreatedAt, &n.UpdatedAt,
	)
}

// novelInsertValues returns the ordered values for the novels insert
// column list (title..slug). An unset status defaults to "ongoing".
func novelInsertValues(n *Novel) []interface{} {
	status := n.Status
	if status == "" {
		status = StatusOngoing
	}
	return []interface{}{
		n.Title, n.Author, n.Description, n.CoverPath,
		n.LangOriginal, status, n.ReleaseStatus, n.Slug,
	}
}

const chapterColumns = `
	id, novel_id, seq, volume, display_title, created_at, updated_at
`

func scanChapter(scanner rowScanner, c *Chapter) error {
	return scanner.Scan(
		&c.ID, &c.NovelID, &c.Seq, &c.Volume, &c.DisplayTitle,
		&c.CreatedAt, &c.UpdatedAt,
	)
}

func chapterInsertValues(c *Chapter) []interface{} {
	return []interface{}{c.NovelID, c.Seq, c.Volume, c.DisplayTitle}
}

const variantColumns = `
	id, chapter_id, variant_type, lang, title, content,
	source_url, provider, model_name, is_primary, created_at, updated_at
`

func scanVariant(scanner rowScanner, v *ChapterVariant) error {
	var isPrimary int
	err := scanner.Scan(
		&v.ID, &v.ChapterID, &v.VariantType, &v.Lang, &v.Title, &v.Content,
		&v.SourceURL, &v.Provider, &v.ModelName, &isPrimary,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return err
	}
	v.IsPrimary = isPrimary != 0
	return nil
}

// variantInsertValues encodes IsPrimary as a stored integer; unset means 0.
func variantInsertValues(v *ChapterVariant) []interface{} {
	return []interface{}{
		v.ChapterID, v.VariantType, v.Lang, v.Title, v.Content,
		v.SourceURL, v.Provider, v.ModelName, boolToInt(v.IsPrimary),
	}
}

const bookmarkColumns = `
	id, chapter_id, position_pct, device_id, created_at, updated_at
`

func scanBookmark(scanner rowScanner, b *Bookmark) error {
	return scanner.Scan(
		&b.ID, &b.ChapterID, &b.PositionPct, &b.DeviceID,
		&b.CreatedAt, &b.UpdatedAt,
	)
}

// bookmarkInsertValues applies defaults: unset position is 0, unset device
// id is the empty string (both are Go zero values).
func bookmarkInsertValues(b *Bookmark) []interface{} {
	return []interface{}{b.ChapterID, b.PositionPct, b.DeviceID}
}

const progressColumns = `
	id, novel_id, chapter_id, device_id, position_pct, created_at, updated_at
`

func scanProgress(scanner rowScanner, p *ReadingProgress) error {
	return scanner.Scan(
		&p.ID, &p.NovelID, &p.ChapterID, &p.DeviceID, &p.PositionPct,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

const readingStateColumns = `
	novel_id, device_id, chapter_id, position_pct, updated_at
`

func scanReadingState(scanner rowScanner, rs *ReadingState) error {
	return scanner.Scan(
		&rs.NovelID, &rs.DeviceID, &rs.ChapterID, &rs.PositionPct,
		&rs.UpdatedAt,
	)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
