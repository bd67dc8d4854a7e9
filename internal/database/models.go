// file: internal/database/models.go
// version: 1.2.0
// guid: 2c9f6e3b-8a1d-4c5e-b7f2-0d4a8e6c1b9f

package database

// Novel publication status. The column is an open enum: these are the values
// the application writes, but any string round-trips.
const (
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusHiatus    = "hiatus"
	StatusDropped   = "dropped"
)

// Chapter variant kinds.
const (
	VariantRaw      = "RAW"
	VariantOfficial = "OFFICIAL"
	VariantMTL      = "MTL"
	VariantAI       = "AI"
	VariantHuman    = "HUMAN"
)

// Novel represents one serialized work in the library.
type Novel struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        *string `json:"author,omitempty"`
	Description   *string `json:"description,omitempty"`
	CoverPath     *string `json:"cover_path,omitempty"`
	LangOriginal  *string `json:"lang_original,omitempty"`
	Status        string  `json:"status"`
	ReleaseStatus *string `json:"release_status,omitempty"`
	Slug          *string `json:"slug,omitempty"`
	CreatedAt     int64   `json:"created_at"` // seconds since epoch, store-assigned
	UpdatedAt     int64   `json:"updated_at"`
}

// Chapter belongs to exactly one novel. (NovelID, Seq) is unique.
type Chapter struct {
	ID           int64   `json:"id"`
	NovelID      int64   `json:"novel_id"`
	Seq          int     `json:"seq"`
	Volume       *int    `json:"volume,omitempty"`
	DisplayTitle *string `json:"display_title,omitempty"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

// ChapterVariant is one translated/sourced rendition of a chapter's text.
// At most one variant may exist per (ChapterID, VariantType, Lang).
type ChapterVariant struct {
	ID          int64   `json:"id"`
	ChapterID   int64   `json:"chapter_id"`
	VariantType string  `json:"variant_type"`
	Lang        string  `json:"lang"`
	Title       *string `json:"title,omitempty"`
	Content     string  `json:"content"`
	SourceURL   *string `json:"source_url,omitempty"`
	Provider    *string `json:"provider,omitempty"`
	ModelName   *string `json:"model_name,omitempty"`
	// IsPrimary is an advisory selection hint; the store does not enforce
	// uniqueness across a chapter's variants.
	IsPrimary bool  `json:"is_primary"`
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// Bookmark stores a fractional position in [0,1] within a chapter, one per
// (chapter, device). Subsequent writes for the same pair update in place.
type Bookmark struct {
	ID          int64   `json:"id"`
	ChapterID   int64   `json:"chapter_id"`
	PositionPct float64 `json:"position_pct"`
	DeviceID    string  `json:"device_id"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

// ReadingProgress is the per-(chapter, device) progress log row.
type ReadingProgress struct {
	ID          int64   `json:"id"`
	NovelID     int64   `json:"novel_id"`
	ChapterID   int64   `json:"chapter_id"`
	DeviceID    string  `json:"device_id"`
	PositionPct float64 `json:"position_pct"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
}

// ReadingState is the derived per-(novel, device) pointer: the single last
// opened chapter and position for that device in that novel. Last write wins.
type ReadingState struct {
	NovelID     int64   `json:"novel_id"`
	DeviceID    string  `json:"device_id"`
	ChapterID   int64   `json:"chapter_id"`
	PositionPct float64 `json:"position_pct"`
	UpdatedAt   int64   `json:"updated_at"`
}

// Genre is a named lookup entity with many-to-many membership to novels.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is a named lookup entity with many-to-many membership to novels.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Folder is a named grouping of novels with an explicit sort order.
type Folder struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

// LibraryResult is one row of a Finder query: the novel plus side-aggregated
// display data. Each matching novel appears exactly once regardless of how
// many tags or genres it carries.
type LibraryResult struct {
	Novel        Novel    `json:"novel"`
	ChapterCount int      `json:"chapter_count"`
	GenreNames   []string `json:"genre_names,omitempty"`
	TagNames     []string `json:"tag_names,omitempty"`
}

// Facets holds the unfiltered facet listings used to populate filter UI.
type Facets struct {
	Genres  []Genre  `json:"genres"`
	Tags    []Tag    `json:"tags"`
	Folders []Folder `json:"folders"`
}

// ProgressSummary is the aggregate completion view of a novel for one device.
type ProgressSummary struct {
	TotalChapters int     `json:"total_chapters"`
	LastReadSeq   int     `json:"last_read_seq"`
	Percent       float64 `json:"percent"` // LastReadSeq/TotalChapters clamped to [0,1]
}

// LibraryStats holds aggregated counts computed via SQL rather than loading
// all rows.
type LibraryStats struct {
	TotalNovels   int `json:"total_novels"`
	TotalChapters int `json:"total_chapters"`
	TotalVariants int `json:"total_variants"`
	TotalGenres   int `json:"total_genres"`
	TotalTags     int `json:"total_tags"`
}
