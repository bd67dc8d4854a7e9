// file: cmd/root.go
// version: 1.2.0
// guid: 1e5c9a3d-7f2b-4d8e-b0a6-4c8f2e6a0d93

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/novelshelf/novelshelf/internal/config"
	"github.com/novelshelf/novelshelf/internal/database"
	"github.com/novelshelf/novelshelf/internal/device"
	"github.com/novelshelf/novelshelf/internal/metrics"
)

var cfgFile string
var dataDir string
var databasePath string
var deviceName string
var pageSize int

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "novelshelf",
	Short: "Manage a local library of serialized fiction",
	Long: `Novelshelf keeps a local library of web novels and other serialized
fiction: chapters, alternate translations, and per-device reading progress,
all in a single SQLite file.`,
}

// migrateCmd applies any pending schema revisions and reports the version.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema revisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore()
		if err != nil {
			return err
		}
		defer closer()

		version, err := store.SchemaVersion()
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Printf("Database: %s\n", config.AppConfig.DatabasePath)
		fmt.Printf("Schema version: %d\n", version)
		return nil
	},
}

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List novels with filters, sorting, and pagination",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore()
		if err != nil {
			return err
		}
		defer closer()

		filter, err := buildFilter(cmd, store)
		if err != nil {
			return err
		}

		page, _ := cmd.Flags().GetInt("page")
		if page < 1 {
			page = 1
		}
		limit := config.AppConfig.PageSize
		offset := (page - 1) * limit

		results, err := store.FindNovels(*filter, limit, offset)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No novels matched.")
			return nil
		}

		for i, r := range results {
			fmt.Printf("%3d. %s", offset+i+1, r.Novel.Title)
			if r.Novel.Author != nil {
				fmt.Printf(" — %s", *r.Novel.Author)
			}
			fmt.Printf(" [%s, %d chapters]\n", r.Novel.Status, r.ChapterCount)
			if len(r.GenreNames) > 0 {
				fmt.Printf("     genres: %s\n", strings.Join(r.GenreNames, ", "))
			}
			if len(r.TagNames) > 0 {
				fmt.Printf("     tags:   %s\n", strings.Join(r.TagNames, ", "))
			}
		}
		return nil
	},
}

// facetsCmd represents the facets command
var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "Show all genres, tags, and folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore()
		if err != nil {
			return err
		}
		defer closer()

		facets, err := store.LoadFacets()
		if err != nil {
			return fmt.Errorf("failed to load facets: %w", err)
		}

		fmt.Println("Genres:")
		for _, g := range facets.Genres {
			fmt.Printf("  %s\n", g.Name)
		}
		fmt.Println("Tags:")
		for _, t := range facets.Tags {
			fmt.Printf("  %s\n", t.Name)
		}
		fmt.Println("Folders:")
		for _, f := range facets.Folders {
			fmt.Printf("  %s\n", f.Name)
		}
		return nil
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library-wide counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore()
		if err != nil {
			return err
		}
		defer closer()

		stats, err := store.GetStats()
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		fmt.Printf("Novels:   %d\n", stats.TotalNovels)
		fmt.Printf("Chapters: %d\n", stats.TotalChapters)
		fmt.Printf("Variants: %d\n", stats.TotalVariants)
		fmt.Printf("Genres:   %d\n", stats.TotalGenres)
		fmt.Printf("Tags:     %d\n", stats.TotalTags)
		return nil
	},
}

// openStore opens the configured database and brings the schema up to date.
// Every command goes through here, so a fresh database is usable immediately.
func openStore() (*database.SQLiteStore, func(), error) {
	path := config.AppConfig.DatabasePath
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := database.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.ApplyAll(); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	return store, func() { store.Close() }, nil
}

// loadIdentity resolves this installation's device identity, minting it on
// first use.
func loadIdentity() (*device.Identity, error) {
	return device.Load(config.AppConfig.DeviceIDPath, config.AppConfig.DeviceName)
}

// buildFilter translates list command flags into a FilterSpec, resolving
// facet names to ids. Unknown names are an error rather than a silent empty
// result.
func buildFilter(cmd *cobra.Command, store *database.SQLiteStore) (*database.FilterSpec, error) {
	filter := &database.FilterSpec{}

	filter.Query, _ = cmd.Flags().GetString("query")
	filter.Status, _ = cmd.Flags().GetString("status")
	filter.ReleaseStatus, _ = cmd.Flags().GetString("release-status")
	filter.MinChapters, _ = cmd.Flags().GetInt("min-chapters")

	if age, _ := cmd.Flags().GetString("age"); age != "" {
		bucket := database.AgeBucket(age)
		if !bucket.Valid() {
			return nil, fmt.Errorf("unknown age window: %s", age)
		}
		filter.Age = bucket
	}

	genres, _ := cmd.Flags().GetStringSlice("genre")
	for _, name := range genres {
		genre, err := store.GetGenreByName(name)
		if err != nil {
			return nil, err
		}
		if genre == nil {
			return nil, fmt.Errorf("unknown genre: %s", name)
		}
		filter.GenreIDs = append(filter.GenreIDs, genre.ID)
	}
	if mode, _ := cmd.Flags().GetString("genre-mode"); mode == "all" {
		filter.GenreMode = database.MatchAll
	}

	tags, _ := cmd.Flags().GetStringSlice("tag")
	for _, name := range tags {
		tag, err := store.GetTagByName(name)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			return nil, fmt.Errorf("unknown tag: %s", name)
		}
		filter.TagIDs = append(filter.TagIDs, tag.ID)
	}
	if mode, _ := cmd.Flags().GetString("tag-mode"); mode == "all" {
		filter.TagMode = database.MatchAll
	}

	excluded, _ := cmd.Flags().GetStringSlice("exclude-tag")
	for _, name := range excluded {
		tag, err := store.GetTagByName(name)
		if err != nil {
			return nil, err
		}
		if tag == nil {
			// Excluding a tag nobody uses excludes nothing.
			continue
		}
		filter.ExcludeTagIDs = append(filter.ExcludeTagIDs, tag.ID)
	}

	if name, _ := cmd.Flags().GetString("folder"); name != "" {
		folder, err := store.GetFolderByName(name)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return nil, fmt.Errorf("unknown folder: %s", name)
		}
		filter.FolderID = folder.ID
	}
	if name, _ := cmd.Flags().GetString("exclude-folder"); name != "" {
		folder, err := store.GetFolderByName(name)
		if err != nil {
			return nil, err
		}
		if folder != nil {
			filter.ExcludeFolderID = folder.ID
		}
	}

	sortBy, _ := cmd.Flags().GetString("sort")
	switch sortBy {
	case "", "created":
		filter.SortBy = database.SortCreated
	case "updated":
		filter.SortBy = database.SortUpdated
	case "title":
		filter.SortBy = database.SortTitle
	case "author":
		filter.SortBy = database.SortAuthor
	case "chapters":
		filter.SortBy = database.SortChapterCount
	default:
		return nil, fmt.Errorf("unknown sort field: %s", sortBy)
	}
	filter.SortDesc, _ = cmd.Flags().GetBool("desc")

	return filter, nil
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "library data directory (default is $HOME/.novelshelf)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "", "path to the SQLite database (default is <data-dir>/novelshelf.db)")
	rootCmd.PersistentFlags().StringVar(&deviceName, "device-name", "", "label for this device in progress output")
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", 20, "novels per page for list output")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("device_name", rootCmd.PersistentFlags().Lookup("device-name"))
	viper.BindPFlag("page_size", rootCmd.PersistentFlags().Lookup("page-size"))

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(facetsCmd)
	rootCmd.AddCommand(statsCmd)

	registerListFlags(listCmd)
	listCmd.Flags().Int("page", 1, "page number")
}

// registerListFlags declares the filter flags shared by list-style commands.
func registerListFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "substring match against title, author, or slug")
	cmd.Flags().String("status", "", "filter by status (ongoing, completed, hiatus, dropped)")
	cmd.Flags().String("release-status", "", "filter by release status")
	cmd.Flags().String("age", "", "only novels added within a window (24h, 7d, 30d, 6mo, 12mo)")
	cmd.Flags().Int("min-chapters", 0, "minimum chapter count")
	cmd.Flags().StringSlice("genre", nil, "filter by genre name (repeatable)")
	cmd.Flags().String("genre-mode", "any", "genre matching: any or all")
	cmd.Flags().StringSlice("tag", nil, "filter by tag name (repeatable)")
	cmd.Flags().String("tag-mode", "any", "tag matching: any or all")
	cmd.Flags().StringSlice("exclude-tag", nil, "exclude novels carrying a tag (repeatable)")
	cmd.Flags().String("folder", "", "only novels in this folder")
	cmd.Flags().String("exclude-folder", "", "exclude novels in this folder")
	cmd.Flags().String("sort", "created", "sort field: created, updated, title, author, chapters")
	cmd.Flags().Bool("desc", false, "sort descending")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".novelshelf")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
	if err := config.LoadConfigFromFile(); err != nil {
		fmt.Printf("Warning: could not load config file: %v\n", err)
	}
	metrics.Register()
}
