package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/mediapick/internal/config"
	"github.com/llehouerou/mediapick/internal/errmsg"
	"github.com/llehouerou/mediapick/internal/filter"
	"github.com/llehouerou/mediapick/internal/library"
	"github.com/llehouerou/mediapick/internal/presets"
	"github.com/llehouerou/mediapick/internal/search"
)

const usage = `usage: mediapick <command> [arguments]

commands:
  import <dir> [name]       track a folder
  refresh [source-id]       rescan one or all sources
  sources                   list sources with statistics
  enable|disable <id>       include or exclude a source
  remove <id>               forget a source and its items
  tags                      list the tag catalog
  filter [flags]            edit the current filter
  count [preset]            count eligible items
  find [-n N] <query>       search tracked items by name
  pick [preset]             pick a random eligible item and record the play
  favorite <path>           toggle favorite
  blacklist <path>          toggle blacklist
  preset save|use <name>    store the current filter or load a preset
  preset list               list presets
  preset delete <id>        delete a preset
  backup                    back up the library now and list backups
`

var errUsage = fmt.Errorf("%w: see usage", library.ErrInvalidArgument)

type app struct {
	cfg     *config.Config
	store   *library.Store
	presets presets.Interface
	out     io.Writer
	rng     *rand.Rand
	now     func() time.Time
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "import":
		return a.importFolder(rest)
	case "refresh":
		return a.refresh(rest)
	case "sources":
		return a.listSources()
	case "enable", "disable":
		return a.setSourceEnabled(rest, cmd == "enable")
	case "remove":
		return a.removeSource(rest)
	case "tags":
		return a.listTags()
	case "filter":
		return a.editFilter(rest)
	case "count":
		return a.count(rest)
	case "pick":
		return a.pick(rest)
	case "find":
		return a.find(rest)
	case "favorite":
		return a.toggle(rest, errmsg.OpItemFavorite, func(it library.Item) error {
			return a.store.SetFavorite(it.FullPath, !it.IsFavorite)
		})
	case "blacklist":
		return a.toggle(rest, errmsg.OpItemUpdate, func(it library.Item) error {
			return a.store.SetBlacklisted(it.FullPath, !it.IsBlacklisted)
		})
	case "preset":
		return a.preset(rest)
	case "backup":
		return a.backup()
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

// persist backs up the previous document and saves the library.
func (a *app) persist() error {
	a.store.Backup()
	if err := a.store.Save(); err != nil {
		return errmsg.Wrap(errmsg.OpLibrarySave, "", err)
	}
	return nil
}

func (a *app) importFolder(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	name := ""
	if len(args) == 2 {
		name = args[1]
	}
	added, err := a.store.ImportFolder(args[0], name)
	if err != nil {
		return errmsg.Wrap(errmsg.OpSourceImport, args[0], err)
	}
	fmt.Fprintf(a.out, "%s %s new items\n", okStyle.Render("imported"), formatCount(added))
	return a.persist()
}

func (a *app) refresh(args []string) error {
	switch len(args) {
	case 0:
		if err := a.importConfiguredSources(); err != nil {
			return err
		}
		result, err := a.store.RefreshAll()
		a.printRefresh(result)
		if perr := a.persist(); perr != nil {
			return perr
		}
		if err != nil {
			return errmsg.Wrap(errmsg.OpSourceRefresh, "", err)
		}
		return nil
	case 1:
		result, err := a.store.RefreshSource(args[0])
		if err != nil {
			return errmsg.Wrap(errmsg.OpSourceRefresh, args[0], err)
		}
		a.printRefresh(result)
		return a.persist()
	}
	return errUsage
}

// importConfiguredSources tracks configured folders that are not sources yet.
func (a *app) importConfiguredSources() error {
	known := make(map[string]bool)
	for _, src := range a.store.Sources() {
		known[strings.ToLower(filepath.Clean(src.RootPath))] = true
	}
	for _, dir := range a.cfg.LibrarySources {
		abs, err := filepath.Abs(dir)
		if err != nil || known[strings.ToLower(abs)] {
			continue
		}
		if _, err := a.store.ImportFolder(abs, ""); err != nil {
			return errmsg.Wrap(errmsg.OpSourceImport, dir, err)
		}
	}
	return nil
}

func (a *app) printRefresh(r library.RefreshResult) {
	if !r.Changed() {
		fmt.Fprintln(a.out, dimStyle.Render("library is up to date"))
		return
	}
	fmt.Fprintf(a.out, "%s +%s -%s ~%s\n", okStyle.Render("refreshed"),
		formatCount(r.Added), formatCount(r.Removed), formatCount(r.Updated))
}

func (a *app) setSourceEnabled(args []string, enabled bool) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.store.SetSourceEnabled(args[0], enabled); err != nil {
		return errmsg.Wrap(errmsg.OpSourceToggle, args[0], err)
	}
	return a.persist()
}

func (a *app) removeSource(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	removed, err := a.store.RemoveSource(args[0])
	if err != nil {
		return errmsg.Wrap(errmsg.OpSourceRemove, args[0], err)
	}
	fmt.Fprintf(a.out, "%s source and %s items\n", okStyle.Render("removed"), formatCount(removed))
	return a.persist()
}

func (a *app) listSources() error {
	sources := a.store.Sources()
	if len(sources) == 0 {
		fmt.Fprintln(a.out, dimStyle.Render("no sources; use \"import <dir>\""))
		return nil
	}
	rows := make([]sourceRow, 0, len(sources))
	for _, src := range sources {
		st, err := a.store.SourceStatistics(src.ID)
		if err != nil {
			return err
		}
		rows = append(rows, sourceRow{source: src, stats: st})
	}
	renderSources(a.out, rows)
	return nil
}

func (a *app) listTags() error {
	snap := a.store.Snapshot()
	switch scheme := snap.Scheme().(type) {
	case library.CategorizedTags:
		renderCategorizedTags(a.out, a.store.Categories(), scheme)
	case library.LegacyFlatTags:
		if len(scheme.Names) == 0 && len(snap.AvailableTags) == 0 {
			fmt.Fprintln(a.out, dimStyle.Render("no tags"))
			return nil
		}
		fmt.Fprintln(a.out, strings.Join(a.store.AvailableTags(), ", "))
	}
	return nil
}

// currentFilter returns the saved current filter, or the default one.
func (a *app) currentFilter() (*filter.State, error) {
	cur, err := a.presets.GetCurrentFilter()
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpPresetLoad, "", err)
	}
	if cur == nil || cur.State == nil {
		return filter.Default(), nil
	}
	return cur.State, nil
}

// resolveFilter picks the named preset when given, else the current filter.
func (a *app) resolveFilter(args []string) (*filter.State, error) {
	switch len(args) {
	case 0:
		return a.currentFilter()
	case 1:
		p, err := a.presets.PresetByName(args[0])
		if err != nil {
			return nil, errmsg.Wrap(errmsg.OpPresetLoad, args[0], err)
		}
		return p.State, nil
	}
	return nil, errUsage
}

func (a *app) editFilter(args []string) error {
	base, err := a.currentFilter()
	if err != nil {
		return err
	}
	if slices.Contains(args, "-reset") || slices.Contains(args, "--reset") {
		base = filter.Default()
	}
	st := base.Clone()

	fs := flag.NewFlagSet("filter", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.Bool("reset", false, "start from the default filter")
	fs.BoolVar(&st.FavoritesOnly, "favorites", st.FavoritesOnly, "favorites only")
	fs.BoolVar(&st.ExcludeBlacklisted, "exclude-blacklisted", st.ExcludeBlacklisted, "drop blacklisted items")
	fs.BoolVar(&st.OnlyNeverPlayed, "never-played", st.OnlyNeverPlayed, "only items never played")
	fs.BoolVar(&st.OnlyKnownDuration, "known-duration", st.OnlyKnownDuration, "videos must have a known duration")
	fs.BoolVar(&st.OnlyKnownLoudness, "known-loudness", st.OnlyKnownLoudness, "videos must have a known loudness")
	audio := fs.String("audio", string(st.AudioFilter), "PlayAll, WithAudioOnly or WithoutAudioOnly")
	mediaType := fs.String("media", string(st.MediaTypeFilter), "All, VideosOnly or PhotosOnly")
	minDur := fs.Duration("min", durationOr(st.MinDuration), "minimum video duration (0 for none)")
	maxDur := fs.Duration("max", durationOr(st.MaxDuration), "maximum video duration (0 for none)")
	tags := fs.String("tags", strings.Join(st.SelectedTags, ","), "comma separated tags to include")
	exclude := fs.String("exclude", strings.Join(st.ExcludedTags, ","), "comma separated tags to exclude")
	mode := fs.String("mode", string(st.TagMatchMode), "And or Or, for libraries without categories")
	global := fs.String("global", globalName(st), "And or Or across categories")
	var local localModes
	fs.Var(&local, "local", "category=And|Or, repeatable")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", library.ErrInvalidArgument, err)
	}
	st.AudioFilter = filter.AudioFilter(*audio)
	st.MediaTypeFilter = filter.MediaTypeFilter(*mediaType)
	st.MinDuration = durationPtr(*minDur)
	st.MaxDuration = durationPtr(*maxDur)
	st.SelectedTags = splitList(*tags)
	st.ExcludedTags = splitList(*exclude)
	st.TagMatchMode = filter.MatchMode(*mode)
	switch strings.ToLower(*global) {
	case "":
		st.GlobalMatchMode = nil
	case "and":
		st.GlobalMatchMode = ptrTo(true)
	case "or":
		st.GlobalMatchMode = ptrTo(false)
	default:
		return fmt.Errorf("global mode %q: %w", *global, library.ErrInvalidArgument)
	}
	if len(local) > 0 {
		if err := a.applyLocalModes(st, local); err != nil {
			return err
		}
	}
	st.Normalize()
	if err := st.Validate(); err != nil {
		return err
	}

	a.presets.SaveCurrentFilter(presets.CurrentFilter{State: st})
	renderFilter(a.out, st)
	return nil
}

// applyLocalModes resolves category names to ids.
func (a *app) applyLocalModes(st *filter.State, modes localModes) error {
	cats := a.store.Categories()
	if st.CategoryLocalMatchModes == nil {
		st.CategoryLocalMatchModes = make(map[string]filter.MatchMode)
	}
	for _, m := range modes {
		id := ""
		for _, c := range cats {
			if strings.EqualFold(c.Name, m.category) || c.ID == m.category {
				id = c.ID
				break
			}
		}
		if id == "" {
			return fmt.Errorf("category %q: %w", m.category, library.ErrNotFound)
		}
		st.CategoryLocalMatchModes[id] = m.mode
	}
	return nil
}

func (a *app) count(args []string) error {
	st, err := a.resolveFilter(args)
	if err != nil {
		return err
	}
	n, err := filter.Count(st, a.store.Snapshot())
	if err != nil {
		return errmsg.Wrap(errmsg.OpFilterCount, "", err)
	}
	fmt.Fprintf(a.out, "%s of %s items eligible\n", formatCount(n), formatCount(a.store.ItemCount()))
	return nil
}

func (a *app) pick(args []string) error {
	st, err := a.resolveFilter(args)
	if err != nil {
		return err
	}
	it, err := filter.PickRandom(st, a.store.Snapshot(), a.rng)
	if err != nil {
		return errmsg.Wrap(errmsg.OpFilterPick, "", err)
	}
	renderItem(a.out, it, a.clock())
	if err := a.store.RecordPlay(it.FullPath, a.clock()); err != nil {
		return errmsg.Wrap(errmsg.OpItemUpdate, "", err)
	}
	return a.persist()
}

func (a *app) find(args []string) error {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	fs.SetOutput(a.out)
	limit := fs.Int("n", 20, "maximum number of results")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return errUsage
	}

	items := a.store.Items()
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.RelativePath + " " + strings.Join(it.Tags, " ")
	}
	matches := search.NewMatcher(texts).Search(query, *limit)
	if len(matches) == 0 {
		fmt.Fprintln(a.out, dimStyle.Render("no matches"))
		return nil
	}
	for _, m := range matches {
		renderItem(a.out, items[m.Index], a.clock())
	}
	return nil
}

func (a *app) toggle(args []string, op errmsg.Op, fn func(library.Item) error) error {
	if len(args) != 1 {
		return errUsage
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		path = args[0]
	}
	it, err := a.store.Item(path)
	if err == nil {
		err = fn(it)
	}
	if err != nil {
		return errmsg.Wrap(op, args[0], err)
	}
	it, _ = a.store.Item(path)
	renderItem(a.out, it, a.clock())
	return a.persist()
}

func (a *app) preset(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "list":
		list, err := a.presets.ListPresets()
		if err != nil {
			return errmsg.Wrap(errmsg.OpPresetLoad, "", err)
		}
		renderPresets(a.out, list, a.clock())
		return nil
	case "save":
		if len(args) != 2 {
			return errUsage
		}
		st, err := a.currentFilter()
		if err != nil {
			return err
		}
		id, err := a.presets.SavePreset(args[1], st)
		if err != nil {
			return errmsg.Wrap(errmsg.OpPresetSave, args[1], err)
		}
		a.presets.SaveCurrentFilter(presets.CurrentFilter{State: st, PresetID: &id})
		fmt.Fprintf(a.out, "%s preset %q (#%d)\n", okStyle.Render("saved"), args[1], id)
		return nil
	case "use":
		if len(args) != 2 {
			return errUsage
		}
		p, err := a.presets.PresetByName(args[1])
		if err != nil {
			return errmsg.Wrap(errmsg.OpPresetLoad, args[1], err)
		}
		a.presets.SaveCurrentFilter(presets.CurrentFilter{State: p.State, PresetID: &p.ID})
		renderFilter(a.out, p.State)
		return nil
	case "delete":
		if len(args) != 2 {
			return errUsage
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("preset id %q: %w", args[1], library.ErrInvalidArgument)
		}
		if err := a.presets.DeletePreset(id); err != nil {
			return errmsg.Wrap(errmsg.OpPresetDelete, args[1], err)
		}
		fmt.Fprintf(a.out, "%s preset #%d\n", okStyle.Render("deleted"), id)
		return nil
	}
	return errUsage
}

func (a *app) backup() error {
	a.store.Backup()
	backups, err := a.store.Backups()
	if err != nil {
		return errmsg.Wrap(errmsg.OpBackupList, "", err)
	}
	renderBackups(a.out, backups, a.clock())
	return nil
}

func (a *app) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

type localMode struct {
	category string
	mode     filter.MatchMode
}

// localModes implements flag.Value for repeated -local category=mode.
type localModes []localMode

func (l *localModes) String() string {
	parts := make([]string, len(*l))
	for i, m := range *l {
		parts[i] = m.category + "=" + string(m.mode)
	}
	return strings.Join(parts, ",")
}

func (l *localModes) Set(v string) error {
	cat, mode, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(cat) == "" {
		return fmt.Errorf("expected category=And|Or, got %q", v)
	}
	switch strings.ToLower(mode) {
	case "and":
		*l = append(*l, localMode{category: strings.TrimSpace(cat), mode: filter.MatchAnd})
	case "or":
		*l = append(*l, localMode{category: strings.TrimSpace(cat), mode: filter.MatchOr})
	default:
		return fmt.Errorf("expected And or Or, got %q", mode)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationOr(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return *d
}

func durationPtr(d time.Duration) *time.Duration {
	if d <= 0 {
		return nil
	}
	return &d
}

func globalName(st *filter.State) string {
	if st.GlobalMatchMode == nil {
		return ""
	}
	if *st.GlobalMatchMode {
		return "And"
	}
	return "Or"
}

func ptrTo[T any](v T) *T {
	return &v
}
