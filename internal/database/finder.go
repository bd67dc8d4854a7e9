// file: internal/database/finder.go
// version: 1.3.0
// guid: 1e9c4b7a-2d6f-4e8b-a5c3-9f1d7b0e4a2c

package database

import (
	"strings"
	"time"

	"github.com/novelshelf/novelshelf/internal/metrics"
)

// MatchMode selects how a multi-valued facet filter matches.
type MatchMode int

const (
	// MatchAny requires the novel to carry at least one of the listed values.
	MatchAny MatchMode = iota
	// MatchAll requires the novel to carry every listed value.
	MatchAll
)

// SortField is a Finder sort key.
type SortField int

const (
	SortCreated SortField = iota
	SortUpdated
	SortTitle
	SortAuthor
	SortChapterCount
)

// AgeBucket is a named elapsed-time lower bound on creation time. The window
// is computed as "now minus N seconds" at query time, so re-running an
// identical query later yields different qualifying rows.
type AgeBucket string

const (
	AgeAll  AgeBucket = ""
	Age24h  AgeBucket = "24h"
	Age7d   AgeBucket = "7d"
	Age30d  AgeBucket = "30d"
	Age6mo  AgeBucket = "6mo"
	Age12mo AgeBucket = "12mo"
)

var ageSeconds = map[AgeBucket]int64{
	Age24h:  86400,
	Age7d:   7 * 86400,
	Age30d:  30 * 86400,
	Age6mo:  180 * 86400,
	Age12mo: 365 * 86400,
}

// Valid reports whether b names a known window. AgeAll is valid and
// contributes no predicate.
func (b AgeBucket) Valid() bool {
	if b == AgeAll {
		return true
	}
	_, ok := ageSeconds[b]
	return ok
}

// FilterSpec enumerates the library filters. Zero values mean "not set" and
// contribute no predicate. Facet ids of value 0 and empty slices are unset.
type FilterSpec struct {
	Query         string // substring match against title/author/slug
	Status        string
	ReleaseStatus string
	Age           AgeBucket
	MinChapters   int

	GenreIDs  []int64
	GenreMode MatchMode

	TagIDs  []int64
	TagMode MatchMode

	ExcludeTagIDs []int64

	FolderID        int64
	ExcludeFolderID int64

	SortBy   SortField
	SortDesc bool
}

const findSelect = `
SELECT
	n.id, n.title, n.author, n.description, n.cover_path, n.lang_original,
	n.status, n.release_status, n.slug, n.created_at, n.updated_at,
	COALESCE(cc.chapter_count, 0) AS chapter_count,
	COALESCE(gl.names, ''),
	COALESCE(tl.names, '')
FROM novels n
LEFT JOIN (
	SELECT novel_id, COUNT(*) AS chapter_count FROM chapters GROUP BY novel_id
) cc ON cc.novel_id = n.id
LEFT JOIN (
	SELECT ng.novel_id, GROUP_CONCAT(g.name, '|') AS names
	FROM novel_genres ng JOIN genres g ON g.id = ng.genre_id
	GROUP BY ng.novel_id
) gl ON gl.novel_id = n.id
LEFT JOIN (
	SELECT nt.novel_id, GROUP_CONCAT(t.name, '|') AS names
	FROM novel_tags nt JOIN tags t ON t.id = nt.tag_id
	GROUP BY nt.novel_id
) tl ON tl.novel_id = n.id
`

// FindNovels compiles the filter into a single paginated, sorted query.
// Facet matching and exclusion use existential subqueries (or count-distinct
// matching for MatchAll), and display aggregates come from side joins, so a
// result row never duplicates however many facets the novel has.
//
// An empty result is not an error. Limit and offset are applied verbatim.
func (s *SQLiteStore) FindNovels(filter FilterSpec, limit, offset int) ([]LibraryResult, error) {
	var conds []string
	var args []interface{}

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		conds = append(conds, "(n.title LIKE ? OR n.author LIKE ? OR n.slug LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Status != "" {
		conds = append(conds, "n.status = ?")
		args = append(args, filter.Status)
	}
	if filter.ReleaseStatus != "" {
		conds = append(conds, "n.release_status = ?")
		args = append(args, filter.ReleaseStatus)
	}
	if secs, ok := ageSeconds[filter.Age]; ok {
		conds = append(conds, "n.created_at >= ?")
		args = append(args, time.Now().Unix()-secs)
	}
	if filter.MinChapters > 0 {
		conds = append(conds, "COALESCE(cc.chapter_count, 0) >= ?")
		args = append(args, filter.MinChapters)
	}

	if len(filter.GenreIDs) > 0 {
		cond, condArgs := membershipPredicate("novel_genres", "genre_id", filter.GenreIDs, filter.GenreMode)
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}
	if len(filter.TagIDs) > 0 {
		cond, condArgs := membershipPredicate("novel_tags", "tag_id", filter.TagIDs, filter.TagMode)
		conds = append(conds, cond)
		args = append(args, condArgs...)
	}
	if len(filter.ExcludeTagIDs) > 0 {
		conds = append(conds, "NOT EXISTS (SELECT 1 FROM novel_tags x WHERE x.novel_id = n.id AND x.tag_id IN ("+
			placeholders(len(filter.ExcludeTagIDs))+"))")
		for _, id := range filter.ExcludeTagIDs {
			args = append(args, id)
		}
	}
	if filter.FolderID != 0 {
		conds = append(conds, "EXISTS (SELECT 1 FROM novel_folders nf WHERE nf.novel_id = n.id AND nf.folder_id = ?)")
		args = append(args, filter.FolderID)
	}
	if filter.ExcludeFolderID != 0 {
		conds = append(conds, "NOT EXISTS (SELECT 1 FROM novel_folders nf WHERE nf.novel_id = n.id AND nf.folder_id = ?)")
		args = append(args, filter.ExcludeFolderID)
	}

	query := findSelect
	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, "\n  AND ") + "\n"
	}
	query += "ORDER BY " + orderClause(filter.SortBy, filter.SortDesc) + "\nLIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []LibraryResult
	for rows.Next() {
		var r LibraryResult
		var genreNames, tagNames string
		if err := rows.Scan(
			&r.Novel.ID, &r.Novel.Title, &r.Novel.Author, &r.Novel.Description,
			&r.Novel.CoverPath, &r.Novel.LangOriginal, &r.Novel.Status,
			&r.Novel.ReleaseStatus, &r.Novel.Slug, &r.Novel.CreatedAt,
			&r.Novel.UpdatedAt, &r.ChapterCount, &genreNames, &tagNames,
		); err != nil {
			return nil, err
		}
		if genreNames != "" {
			r.GenreNames = strings.Split(genreNames, "|")
		}
		if tagNames != "" {
			r.TagNames = strings.Split(tagNames, "|")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.IncQuery("find")
	return results, nil
}

// membershipPredicate builds the facet membership condition for one
// many-to-many table. MatchAll is implemented as "count of distinct matched
// values equals the requested set size" rather than repeated joins, so a
// matching novel still yields a single row.
func membershipPredicate(table, column string, ids []int64, mode MatchMode) (string, []interface{}) {
	ph := placeholders(len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}

	if mode == MatchAll {
		cond := "n.id IN (SELECT novel_id FROM " + table +
			" WHERE " + column + " IN (" + ph + ")" +
			" GROUP BY novel_id HAVING COUNT(DISTINCT " + column + ") = ?)"
		args = append(args, len(ids))
		return cond, args
	}

	cond := "EXISTS (SELECT 1 FROM " + table + " m WHERE m.novel_id = n.id AND m." + column + " IN (" + ph + "))"
	return cond, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func orderClause(field SortField, desc bool) string {
	var col string
	switch field {
	case SortUpdated:
		col = "n.updated_at"
	case SortTitle:
		col = "n.title COLLATE folded"
	case SortAuthor:
		col = "n.author COLLATE folded"
	case SortChapterCount:
		col = "chapter_count"
	default:
		col = "n.created_at"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return col + " " + dir + ", n.id " + dir
}

// LoadFacets returns all genres, tags and folders for populating filter UI:
// a read-only, unfiltered listing ordered by name (folders by their explicit
// sort order first).
func (s *SQLiteStore) LoadFacets() (*Facets, error) {
	facets := &Facets{}

	rows, err := s.db.Query("SELECT id, name FROM genres ORDER BY name")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return nil, err
		}
		facets.Genres = append(facets.Genres, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT id, name FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			rows.Close()
			return nil, err
		}
		facets.Tags = append(facets.Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query("SELECT id, name, sort_order FROM folders ORDER BY sort_order, name")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.SortOrder); err != nil {
			rows.Close()
			return nil, err
		}
		facets.Folders = append(facets.Folders, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	metrics.IncQuery("facets")
	return facets, nil
}
