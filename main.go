// langsync keeps flat JSON/YAML translation dictionaries in sync with a
// canonical key list, with AI translation support.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/langsync/langsync/config"
	"github.com/langsync/langsync/dict"
	"github.com/langsync/langsync/i18n"
	"github.com/langsync/langsync/langtag"
	"github.com/langsync/langsync/lint"
	"github.com/langsync/langsync/reconcile"
	"github.com/langsync/langsync/settings"
	"github.com/langsync/langsync/translate"
	"github.com/langsync/langsync/yamldict"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors. Vars rather than consts so --no-color can blank them.
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow, colorBlue = "", "", "", "", ""
}

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	noColor bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "langsync",
		Short: "Keep flat JSON/YAML translation dictionaries in sync",
		Long: `langsync keeps flat JSON/YAML translation dictionaries in sync.

A canonical key list defines which strings every language must carry.
The base language fills its gaps with default labels generated from the
key names; every other language is filled from the base text, either
through an AI provider or with an offline placeholder marker (for
example "[needs-zh] Add todo") that a later run can translate.

Commands:
  sync        Reconcile every dictionary against the canonical key list
  status      Show per-language translation statistics
  check       Validate keys and dictionaries without writing
  auth        Manage provider API keys

AI Providers:
  google         Google AI (Gemini), API key required
  groq           Groq, API key required
  ollama         Ollama local server, no key
  custom-openai  Custom OpenAI-compatible endpoint
  stub           Offline placeholder echo (the default)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				disableColors()
			}
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newSyncCmd(),
		newStatusCmd(),
		newCheckCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("langsync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Targets (which files hold which languages)
// ---------------------------------------------------------------------------

// target is a fully resolved set of translation files: the canonical
// keys file plus one dictionary path per language, base first.
type target struct {
	keysFile string
	baseLang string
	langs    []string          // base language first
	paths    map[string]string // lang -> dictionary file
	markers  map[string]string // lang -> placeholder prefix override

	discover  bool
	adoptKeys bool
	reverse   bool
	provider  string
	model     string
}

// targetFromArgs builds a target from explicit command-line paths. The
// first dictionary is the base language; codes come from file names.
func targetFromArgs(keysFile string, dictPaths []string) (*target, error) {
	t := &target{
		keysFile: keysFile,
		paths:    make(map[string]string, len(dictPaths)),
		markers:  make(map[string]string),
		discover: true,
	}

	for i, path := range dictPaths {
		lang := langFromPath(path)
		if lang == "" {
			return nil, fmt.Errorf("cannot derive a language code from %q; name dictionaries like en.json or zh.yaml", path)
		}
		if _, dup := t.paths[lang]; dup {
			return nil, fmt.Errorf("duplicate dictionary for language %s: %s", lang, path)
		}
		if i == 0 {
			t.baseLang = lang
		}
		t.langs = append(t.langs, lang)
		t.paths[lang] = path
	}

	return t, nil
}

// targetFromProject resolves the target from .langsync.yaml, falling
// back to scanning standard translation directories.
func targetFromProject(root string) (*target, error) {
	f, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	var proj *config.Project
	if f != nil {
		proj, err = f.Resolve(root)
		if err != nil {
			return nil, err
		}
	} else {
		proj = config.Detect(root)
	}
	if proj == nil {
		return nil, fmt.Errorf("no translation files found in %s and no %s present\n\n"+
			"Pass explicit paths instead:\n"+
			"  langsync sync KEYS BASE_DICT DICT...", root, config.FileName)
	}

	t := &target{
		keysFile:  proj.KeysFile,
		baseLang:  proj.BaseLang,
		langs:     proj.Languages,
		paths:     make(map[string]string, len(proj.Languages)),
		markers:   proj.Markers,
		discover:  proj.Discover,
		adoptKeys: proj.AdoptKeys,
		reverse:   proj.Reverse,
		provider:  proj.Provider,
		model:     proj.Model,
	}
	if t.markers == nil {
		t.markers = make(map[string]string)
	}
	for _, lang := range proj.Languages {
		t.paths[lang] = proj.DictPath(lang)
	}

	return t, nil
}

// marker returns the placeholder prefix for a language.
func (t *target) marker(lang string) string {
	if m, ok := t.markers[lang]; ok {
		return m
	}
	return langtag.DefaultMarker(lang)
}

// dependent returns the languages other than the base, in order.
func (t *target) dependent() []string {
	return filterOutLang(t.langs, t.baseLang)
}

// langFromPath derives a language code from a dictionary file name:
// "translations/pt_br.json" -> "pt-BR". Returns "" for names that do
// not look like language codes.
func langFromPath(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if !langtag.IsCode(stem) {
		return ""
	}
	return langtag.Canonicalize(stem)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadDictFile reads a dictionary with the codec matching the file
// extension. Missing files come back empty with a nil error; parse
// failures come back empty with the error for the caller to log.
func loadDictFile(path, lang, marker string) (*dict.Dictionary, error) {
	if isYAMLPath(path) {
		return yamldict.Load(path, lang, marker)
	}
	return dict.Load(path, lang, marker)
}

func saveDictFile(d *dict.Dictionary, path string) error {
	if isYAMLPath(path) {
		return yamldict.WriteFile(d, path)
	}
	return d.WriteFile(path)
}

// ---------------------------------------------------------------------------
// status (read-only: project info + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [dir]",
		Short: "Show per-language translation statistics",
		Long: `Show the resolved project layout and per-language statistics.

Displays the keys file, the detected languages and, for every language,
how many canonical keys are translated, still placeholders, or missing.
Does not modify any files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := rootDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runStatus(dir)
		},
	}

	return cmd
}

func runStatus(dir string) error {
	t, err := targetFromProject(dir)
	if err != nil {
		return err
	}

	keys, keysErr := dict.LoadKeys(t.keysFile)

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	absRoot, _ := filepath.Abs(dir)
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", absRoot)
	keysNote := ""
	if !fileExists(t.keysFile) {
		keysNote = " (missing)"
	}
	fmt.Fprintf(os.Stderr, "  Keys file:  %s%s\n", t.keysFile, keysNote)
	if keysErr == nil {
		fmt.Fprintf(os.Stderr, "  Keys:       %d\n", len(keys))
	}
	base := t.baseLang
	if name := langtag.Name(base); name != "" {
		base += " (" + name + ")"
	}
	fmt.Fprintf(os.Stderr, "  Base:       %s\n", base)
	fmt.Fprintf(os.Stderr, "  Languages:  %s\n", strings.Join(t.langs, ", "))
	fmt.Fprintln(os.Stderr)

	// A project that has not written its keys file yet is already
	// marked on the summary line; only a present but unreadable file
	// deserves a warning.
	if keysErr != nil && fileExists(t.keysFile) {
		logWarning("Cannot read canonical keys: %v", keysErr)
	}

	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorBlue, i18n.T("Translation Statistics"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	width := langColumnWidth(t.langs)
	fmt.Fprintf(os.Stderr, "\n     %-*s %-12s %-11s %-12s %-8s %s\n",
		width, "Lang", "Native", "Translated", "Placeholder", "Missing", "Progress")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))

	for _, lang := range t.langs {
		d, err := loadDictFile(t.paths[lang], lang, t.marker(lang))
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %-12s %-11s %-12s %-8s\n",
				langCell(lang, width), "-", "unreadable", "-", "-")
			continue
		}

		st := statsFor(d, keys)
		percent := 0
		if len(keys) > 0 {
			percent = st.translated * 100 / len(keys)
		}

		native := langtag.Name(lang)
		if native == "" {
			native = "-"
		}

		fmt.Fprintf(os.Stderr, "  %s %-12s %-11d %-12d %-8d %s",
			langCell(lang, width), native, st.translated, st.placeholder, st.missing,
			progressBar(percent, 16))
		if st.extra > 0 {
			fmt.Fprintf(os.Stderr, "  (+%d extra)", st.extra)
		}
		fmt.Fprintln(os.Stderr)
	}

	fmt.Fprintln(os.Stderr)
	printSuggestedCommands()
	return nil
}

// langStats counts a dictionary's coverage of the canonical keys.
type langStats struct {
	translated  int
	placeholder int
	missing     int
	extra       int
}

func statsFor(d *dict.Dictionary, keys []string) langStats {
	var st langStats

	canonical := make(map[string]bool, len(keys))
	for _, key := range keys {
		canonical[key] = true
		v, ok := d.Get(key)
		switch {
		case !ok || v.Missing():
			st.missing++
		case v.Placeholder:
			st.placeholder++
		default:
			st.translated++
		}
	}

	for _, key := range d.Keys() {
		if !canonical[key] {
			st.extra++
		}
	}

	return st
}

// progressBar renders a colored percent bar: red below 50, yellow below
// 100, green at 100.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent * width / 100
	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}

	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) +
		colorReset + fmt.Sprintf(" %3d%%", percent)
}

// langColumnWidth returns the width of the widest language code.
func langColumnWidth(langs []string) int {
	w := 0
	for _, lang := range langs {
		if len(lang) > w {
			w = len(lang)
		}
	}
	return w
}

// langCell renders a language code with its flag for table rows.
func langCell(lang string, width int) string {
	flag := langtag.Flag(lang)
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, lang)
}

func printSuggestedCommands() {
	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorBlue, i18n.T("Suggested Commands"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	fmt.Fprintf(os.Stderr, "  # Fill every language offline (placeholders for new keys)\n")
	fmt.Fprintf(os.Stderr, "  langsync sync\n\n")
	fmt.Fprintf(os.Stderr, "  # Translate placeholders with an AI provider\n")
	fmt.Fprintf(os.Stderr, "  langsync sync --provider google --model gemini-2.5-flash\n\n")
	fmt.Fprintf(os.Stderr, "  # Validate dictionaries without writing\n")
	fmt.Fprintf(os.Stderr, "  langsync check\n\n")
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

func newSyncCmd() *cobra.Command {
	var (
		// Provider selection
		provider string
		apiKey   string
		model    string
		baseURL  string

		// Reconciliation behavior
		reverse   bool
		discover  bool
		adoptKeys bool
		langs     string
		markers   []string
		dryRun    bool

		// Translation behavior
		prompt  string
		verbose bool

		// Network
		timeout    time.Duration
		proxy      string
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "sync [KEYS BASE_DICT DICT...]",
		Short: "Reconcile dictionaries against the canonical key list",
		Long: `Reconcile every language dictionary against the canonical key list.

The base language is filled first: keys without a usable value get a
default label generated from the key name ("addTodo" becomes "Add
todo"). Every other language is then filled from the base text. Without
a configured AI provider the offline stub tags new entries with the
language's placeholder marker so a later run can translate them.

Dictionaries are rewritten normalized: keys sorted, stable indentation.
A value is only replaced when it is absent, blank, or still carries the
placeholder marker; real translations are never overwritten.

Examples:
  # Explicit paths: keys file, base dictionary, then the rest
  langsync sync translation-keys.json en.json zh.json de.json

  # Configured project (.langsync.yaml or auto-detected layout)
  langsync sync

  # Real translations through Google AI
  langsync sync --provider google --model gemini-2.5-flash

  # Show what would change without writing
  langsync sync --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(syncArgs{
				args:     args,
				provider: provider, apiKey: apiKey, model: model, baseURL: baseURL,
				reverse: reverse, reverseSet: cmd.Flags().Changed("reverse"),
				discover: discover, discoverSet: cmd.Flags().Changed("discover"),
				adoptKeys: adoptKeys, adoptKeysSet: cmd.Flags().Changed("adopt-keys"),
				langs: langs, markers: markers, dryRun: dryRun,
				prompt: prompt, verbose: verbose,
				timeout: timeout, proxy: proxy, maxRetries: maxRetries,
			})
		},
	}

	// Provider selection
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: google, groq, ollama, custom-openai, stub")
	cmd.Flags().StringVar(&model, "model", "", "Model name (provider default if empty)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or LANGSYNC_API_KEY env var)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL")

	// Reconciliation behavior
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Fill the base language from non-base values for keys outside the canonical list")
	cmd.Flags().BoolVar(&discover, "discover", true, "Union keys found only in dictionaries into the run")
	cmd.Flags().BoolVar(&adoptKeys, "adopt-keys", false, "Append discovered keys to the canonical keys file")
	cmd.Flags().StringVar(&langs, "lang", "", "Languages to fill (comma-separated, default: all)")
	cmd.Flags().StringArrayVar(&markers, "markers", nil, `Placeholder prefix override, e.g. --markers "zh=[待翻译ZH] " (repeatable)`)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")

	// Translation behavior
	cmd.Flags().StringVar(&prompt, "prompt", "", "Custom system prompt (use {{targetLang}} placeholder)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	// Network
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&maxRetries, "retries", 3, "Maximum retries on rate limit (429)")

	// Provider completion
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"google\tGoogle AI (Gemini), API key required",
			"groq\tGroq, API key required",
			"ollama\tOllama local server",
			"custom-openai\tCustom OpenAI-compatible endpoint",
			"stub\tOffline placeholder echo (default)",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	// Model completion (provider-aware)
	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		p, _ := cmd.Flags().GetString("provider")
		switch p {
		case "google":
			return []string{"gemini-2.5-flash", "gemini-2.0-flash-exp", "gemini-1.5-pro"}, cobra.ShellCompDirectiveNoFileComp
		case "groq":
			return []string{"llama-3.3-70b-versatile", "mixtral-8x7b-32768"}, cobra.ShellCompDirectiveNoFileComp
		case "ollama":
			return []string{"llama3.2", "qwen2.5", "mistral", "phi3"}, cobra.ShellCompDirectiveNoFileComp
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	})

	return cmd
}

type syncArgs struct {
	args []string

	provider, apiKey, model, baseURL string

	reverse, reverseSet     bool
	discover, discoverSet   bool
	adoptKeys, adoptKeysSet bool
	langs                   string
	markers                 []string
	dryRun                  bool

	prompt  string
	verbose bool

	timeout    time.Duration
	proxy      string
	maxRetries int
}

func syncTarget(args []string) (*target, error) {
	switch {
	case len(args) == 0:
		return targetFromProject(rootDir)
	case len(args) >= 3:
		return targetFromArgs(args[0], args[1:])
	default:
		return nil, fmt.Errorf("need the keys file, the base dictionary and at least one more dictionary\n\n" +
			"Usage:\n" +
			"  langsync sync KEYS BASE_DICT DICT...\n" +
			"  langsync sync                          (configured or auto-detected project)")
	}
}

func runSync(a syncArgs) error {
	t, err := syncTarget(a.args)
	if err != nil {
		return err
	}

	// Flags override config.
	if a.reverseSet {
		t.reverse = a.reverse
	}
	if a.discoverSet {
		t.discover = a.discover
	}
	if a.adoptKeysSet {
		t.adoptKeys = a.adoptKeys
	}
	if a.provider != "" {
		t.provider = a.provider
	}
	if a.model != "" {
		t.model = a.model
	}
	overrides, err := parseMarkers(a.markers)
	if err != nil {
		return err
	}
	for lang, marker := range overrides {
		t.markers[lang] = marker
	}

	if a.langs != "" {
		keep := intersectLanguages(t.dependent(), strings.Split(a.langs, ","))
		if len(keep) == 0 {
			return fmt.Errorf("--lang %s matches none of the project languages (%s)",
				a.langs, strings.Join(t.dependent(), ", "))
		}
		t.langs = append([]string{t.baseLang}, keep...)
	}

	// The canonical key list is loaded strictly before anything else
	// happens; a malformed or missing keys file aborts the run with no
	// files touched.
	keys, err := dict.LoadKeys(t.keysFile)
	if err != nil {
		return fmt.Errorf("canonical keys: %w", err)
	}

	dicts := make(map[string]*dict.Dictionary, len(t.langs))
	for _, lang := range t.langs {
		d, err := loadDictFile(t.paths[lang], lang, t.marker(lang))
		if err != nil {
			logInfo("Starting %s from an empty dictionary: %v", lang, err)
		}
		dicts[lang] = d
	}

	translator, err := buildTranslator(a, t)
	if err != nil {
		return err
	}

	logInfo("Keys file: %s (%d keys)", t.keysFile, len(keys))
	logInfo("Base language: %s", t.baseLang)
	if deps := t.dependent(); len(deps) > 0 {
		logInfo("Filling: %s", strings.Join(deps, ", "))
	}
	if t.model != "" && translator.Name() != translate.ProviderStub {
		logInfo("Provider: %s, model: %s", translator.Name(), t.model)
	} else {
		logInfo("Provider: %s", translator.Name())
	}
	if a.dryRun {
		logInfo("Dry run: changes are estimated with the offline stub")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning(i18n.T("Interrupted, finishing up..."))
		cancel()
	}()

	opts := reconcile.Options{
		BaseLang:   t.baseLang,
		Langs:      t.langs,
		Keys:       keys,
		Discover:   t.discover,
		Reverse:    t.reverse,
		Translator: translator,
	}
	if a.verbose {
		opts.OnProgress = func(done, total int) {
			logInfo("  %d/%d keys", done, total)
		}
	}

	rep, err := reconcile.Run(ctx, dicts, opts)
	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		return err
	}

	printReport(t, rep)

	if a.dryRun {
		logInfo(i18n.T("Dry run: no files were written"))
		return nil
	}

	saveFailures := 0
	for _, lang := range t.langs {
		path := t.paths[lang]
		if err := saveDictFile(dicts[lang], path); err != nil {
			logError("Saving %s: %v", path, err)
			saveFailures++
			continue
		}
		if rep.Changed(lang) {
			logSuccess("Updated: %s", path)
		}
	}

	if t.adoptKeys && len(rep.Discovered) > 0 {
		adopted := append(append([]string{}, keys...), rep.Discovered...)
		if err := dict.SaveKeys(t.keysFile, adopted); err != nil {
			logError("Saving %s: %v", t.keysFile, err)
			saveFailures++
		} else {
			logSuccess("Adopted %d discovered key(s) into %s", len(rep.Discovered), t.keysFile)
		}
	}

	if saveFailures > 0 {
		logWarning("%d file(s) could not be saved", saveFailures)
	}
	if interrupted {
		logWarning("Interrupted: partial progress saved")
		return nil
	}
	logSuccess(i18n.T("Sync complete!"))
	return nil
}

// printReport logs every change per language, then the warnings and the
// one-line summary.
func printReport(t *target, rep *reconcile.Report) {
	if len(rep.Discovered) > 0 {
		logInfo("Discovered %d key(s) outside the canonical list: %s",
			len(rep.Discovered), strings.Join(rep.Discovered, ", "))
	}

	for _, lang := range t.langs {
		changes := rep.ChangesFor(lang)
		if len(changes) == 0 {
			continue
		}
		form := i18n.N("%s: %d new value", "%s: %d new values", len(changes))
		logInfo(form, lang, len(changes))
		for _, c := range changes {
			mark := "+"
			if c.Old != "" {
				mark = "~"
			}
			fmt.Fprintf(os.Stderr, "    %s %s = %q  (%s)\n", mark, c.Key, c.New, c.Action)
		}
	}

	for _, w := range rep.Warnings {
		logWarning("%s", w)
	}

	logInfo("%s", rep.Summary())
}

// buildTranslator picks the translation backend: the offline stub by
// default and for dry runs, an HTTP provider otherwise.
func buildTranslator(a syncArgs, t *target) (reconcile.Translator, error) {
	id := strings.ToLower(t.provider)
	if id == "" || id == translate.ProviderStub || a.dryRun {
		return &translate.Stub{Marker: t.marker}, nil
	}

	key := settings.ResolveAPIKey(id, a.apiKey)
	prov := resolveProvider(id, a.baseURL, key, t.model, a.proxy, a.timeout)
	if err := validateProvider(prov, key); err != nil {
		return nil, err
	}

	return translate.New(translate.Options{
		Provider:     prov,
		Timeout:      a.timeout,
		MaxRetries:   a.maxRetries,
		SystemPrompt: a.prompt,
		Verbose:      a.verbose,
	})
}

func resolveProvider(name, baseURL, apiKey, model, proxy string, timeout time.Duration) translate.Provider {
	defaults := translate.DefaultProviders()

	var prov translate.Provider
	if p, ok := defaults[strings.ToLower(name)]; ok {
		prov = p
	} else {
		// Unknown names are treated as custom OpenAI-compatible endpoints.
		prov = translate.Provider{
			ID:      translate.ProviderCustomOpenAI,
			Name:    name,
			BaseURL: name,
			Timeout: 60 * time.Second,
		}
	}

	if baseURL != "" {
		prov.BaseURL = baseURL
	} else if prov.ID == translate.ProviderCustomOpenAI && prov.BaseURL == "" {
		// Check the credentials store for a saved endpoint
		if storedURL := settings.GetBaseURL(prov.ID); storedURL != "" {
			prov.BaseURL = storedURL
		}
	}
	if apiKey != "" {
		prov.APIKey = apiKey
	}
	if model != "" {
		prov.Model = model
	}
	if proxy != "" {
		prov.Proxy = proxy
	}
	if timeout > 0 {
		prov.Timeout = timeout
	}

	return prov
}

func validateProvider(prov translate.Provider, apiKey string) error {
	switch prov.ID {
	case translate.ProviderGoogle:
		if apiKey == "" {
			return fmt.Errorf("provider 'google' requires an API key\n\n" +
				"Option 1: Store an API key:\n" +
				"  langsync auth login --provider google\n\n" +
				"Option 2: Pass the key directly:\n" +
				"  --api-key YOUR_KEY or export LANGSYNC_API_KEY=YOUR_KEY\n\n" +
				"Get an API key from: https://aistudio.google.com/apikey")
		}

	case translate.ProviderGroq:
		if apiKey == "" {
			return fmt.Errorf("provider 'groq' requires an API key\n\n" +
				"Option 1: Store your API key:\n" +
				"  langsync auth login --provider groq\n\n" +
				"Option 2: Pass the key directly:\n" +
				"  --api-key YOUR_KEY or export LANGSYNC_API_KEY=YOUR_KEY\n\n" +
				"Get a free API key from: https://console.groq.com/keys")
		}

	case translate.ProviderCustomOpenAI:
		if prov.BaseURL == "" {
			return fmt.Errorf("provider 'custom-openai' requires an endpoint URL\n\n" +
				"Option 1: Configure via auth:\n" +
				"  langsync auth login --provider custom-openai\n\n" +
				"Option 2: Pass directly:\n" +
				"  --base-url https://api.example.com/v1")
		}
		if prov.Model == "" {
			return fmt.Errorf("provider 'custom-openai' requires --model (depends on your endpoint)")
		}

	case translate.ProviderOllama:
		client := &http.Client{Timeout: 2 * time.Second}
		ollamaURL := prov.BaseURL
		if ollamaURL == "" {
			ollamaURL = "http://localhost:11434"
		}
		resp, err := client.Get(ollamaURL + "/api/tags")
		if err != nil {
			return fmt.Errorf("provider 'ollama' requires the Ollama server to be running\n\n" +
				"Start Ollama with: ollama serve\n" +
				"Install from: https://ollama.com")
		}
		resp.Body.Close()
	}

	return nil
}

// ---------------------------------------------------------------------------
// check (validate without writing)
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	var discover bool

	cmd := &cobra.Command{
		Use:   "check [KEYS DICT...]",
		Short: "Validate keys and dictionaries without writing",
		Long: `Validate the canonical keys file and the dictionaries.

Structural problems (malformed JSON, wrong shapes, duplicate keys) are
errors and fail the command. Coverage gaps (missing translations,
leftover placeholders) are reported as warnings and do not.

With no arguments the project is resolved from ` + config.FileName + ` or by
scanning standard translation directories.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("expected KEYS DICT... or no arguments, got only %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args, cmd.Flags().Changed("discover"), discover)
		},
	}

	cmd.Flags().BoolVar(&discover, "discover", true, "Treat dictionary keys outside the canonical list as expected")

	return cmd
}

func runCheck(args []string, discoverSet, discoverFlag bool) error {
	var (
		t   *target
		err error
	)
	if len(args) >= 2 {
		t, err = targetFromArgs(args[0], args[1:])
	} else {
		t, err = targetFromProject(rootDir)
	}
	if err != nil {
		return err
	}
	if discoverSet {
		t.discover = discoverFlag
	}

	result := &lint.Result{}

	keysData, err := os.ReadFile(t.keysFile)
	if err != nil {
		return fmt.Errorf("canonical keys: %w", err)
	}
	result.Merge(lint.CheckKeys(t.keysFile, keysData))

	dicts := make(map[string]*dict.Dictionary, len(t.langs))
	for _, lang := range t.langs {
		path := t.paths[lang]
		marker := t.marker(lang)

		if isYAMLPath(path) {
			d, err := yamldict.Load(path, lang, marker)
			if err != nil {
				result.Issues = append(result.Issues, lint.Issue{
					File: path, Severity: lint.Error, Message: err.Error(),
				})
			}
			dicts[lang] = d
			continue
		}

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			logInfo("%s: no dictionary yet (treated as empty)", path)
			dicts[lang] = dict.New(lang, marker)
			continue
		}
		if err != nil {
			result.Issues = append(result.Issues, lint.Issue{
				File: path, Severity: lint.Error, Message: err.Error(),
			})
			dicts[lang] = dict.New(lang, marker)
			continue
		}

		result.Merge(lint.CheckDict(path, data))
		d, err := dict.Parse(data, lang, marker)
		if err != nil {
			d = dict.New(lang, marker)
		}
		dicts[lang] = d
	}

	if keys, err := dict.LoadKeys(t.keysFile); err == nil {
		result.Merge(lint.CheckProject(lint.ProjectInput{
			KeysFile: t.keysFile,
			Keys:     keys,
			BaseLang: t.baseLang,
			Discover: t.discover,
			Dicts:    dicts,
			Paths:    t.paths,
		}))
	}

	for _, issue := range result.Issues {
		if issue.Severity == lint.Error {
			logError("%s", issue)
		} else {
			logWarning("%s", issue)
		}
	}

	if !result.OK() {
		logError(i18n.T("Check failed: %d error(s), %d warning(s)"), result.Errors(), result.Warnings())
		os.Exit(1)
	}
	if n := result.Warnings(); n > 0 {
		logInfo("%d warning(s), no errors", n)
	} else {
		logSuccess(i18n.T("No problems found"))
	}
	return nil
}

// ---------------------------------------------------------------------------
// auth (login / logout / list)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage API keys for the AI translation providers.

API key providers (paste your key):
  google        Google AI Studio (Gemini API key)
  groq          Groq Cloud (free tier available)
  custom-openai Custom OpenAI-compatible endpoint

No auth required:
  ollama        Local Ollama server
  stub          Offline placeholder echo

Examples:
  langsync auth login                      Interactive provider selection
  langsync auth login --provider google    Store Google AI API key
  langsync auth logout --provider google   Remove Google API key
  langsync auth logout                     Remove all credentials
  langsync auth list                       Show all stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

// allProviders is the ordered list of providers for the interactive menu.
var allProviders = []struct {
	id   string
	name string
	desc string
	auth string // "api-key" or "none"
}{
	{translate.ProviderGoogle, "Google AI Studio", "Gemini API key, free tier available", "api-key"},
	{translate.ProviderGroq, "Groq Cloud", "fast inference, free tier available", "api-key"},
	{translate.ProviderCustomOpenAI, "Custom OpenAI", "any OpenAI-compatible endpoint", "api-key"},
	{translate.ProviderOllama, "Ollama", "local server, no auth needed", "none"},
	{translate.ProviderStub, "Stub", "offline placeholder echo, no auth", "none"},
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for a provider",
		Long: `Store an API key for an AI provider.

If --provider is not specified, you will be prompted to choose.

API key providers:
  google        Paste your Google AI Studio API key
  groq          Paste your Groq API key
  custom-openai Paste your API key + endpoint URL`,
		Run: func(cmd *cobra.Command, args []string) {
			// If no provider specified, prompt the user
			if provider == "" {
				fmt.Fprintln(os.Stderr, "")
				fmt.Fprintf(os.Stderr, "%sSelect provider to configure:%s\n\n", colorBlue, colorReset)
				for i, p := range allProviders {
					if p.auth == "none" {
						continue
					}
					fmt.Fprintf(os.Stderr, "  %d. %s%-13s%s %s\n",
						i+1, colorYellow, p.id, colorReset, p.desc)
				}
				fmt.Fprintln(os.Stderr)
				fmt.Fprintf(os.Stderr, "Enter choice (number or name): ")

				scanner := bufio.NewScanner(os.Stdin)
				if !scanner.Scan() {
					logError("No input received")
					os.Exit(1)
				}
				choice := strings.TrimSpace(scanner.Text())

				found := false
				displayIdx := 0
				for _, p := range allProviders {
					if p.auth == "none" {
						continue
					}
					displayIdx++
					if choice == fmt.Sprintf("%d", displayIdx) || choice == p.id {
						provider = p.id
						found = true
						break
					}
				}
				if !found {
					logError("Invalid choice. Use: langsync auth login --provider PROVIDER")
					os.Exit(1)
				}
			}

			switch provider {
			case translate.ProviderGoogle, translate.ProviderGroq:
				authLoginAPIKey(provider)
			case translate.ProviderCustomOpenAI:
				authLoginCustomOpenAI()
			default:
				logError("Provider '%s' needs no credentials. Run 'langsync auth login' for options.", provider)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to configure")
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		completions := make([]string, 0, len(allProviders))
		for _, p := range allProviders {
			if p.auth == "none" {
				continue
			}
			completions = append(completions, fmt.Sprintf("%s\t%s", p.id, p.name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func authLoginAPIKey(providerID string) {
	providerInfo := map[string]struct {
		name    string
		helpURL string
		example string
	}{
		translate.ProviderGoogle: {
			name:    "Google AI Studio",
			helpURL: "https://aistudio.google.com/apikey",
			example: "langsync sync --provider google --model gemini-2.5-flash",
		},
		translate.ProviderGroq: {
			name:    "Groq Cloud",
			helpURL: "https://console.groq.com/keys",
			example: "langsync sync --provider groq --model llama-3.3-70b-versatile",
		},
	}

	info := providerInfo[providerID]

	fmt.Fprintf(os.Stderr, "\n%s%s API Key Setup%s\n", colorBlue, info.name, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	if info.helpURL != "" {
		fmt.Fprintf(os.Stderr, "  Get your API key from: %s%s%s\n\n", colorGreen, info.helpURL, colorReset)
	}

	// Check if already configured
	existing := settings.GetAPIKey(providerID)
	if existing != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing), colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new key to replace, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key: ")
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		logError("No input received")
		os.Exit(1)
	}
	key := strings.TrimSpace(scanner.Text())

	if key == "" {
		if existing != "" {
			logInfo("Keeping existing key")
			return
		}
		logError("No API key provided")
		os.Exit(1)
	}

	if err := settings.SetAPIKey(providerID, key); err != nil {
		logError("Failed to save API key: %v", err)
		os.Exit(1)
	}

	logSuccess("%s API key saved!", info.name)
	fmt.Fprintf(os.Stderr, "\n  You can now use: %s\n\n", info.example)
}

func authLoginCustomOpenAI() {
	fmt.Fprintf(os.Stderr, "\n%sCustom OpenAI-Compatible Endpoint%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	scanner := bufio.NewScanner(os.Stdin)

	// Base URL
	existing := settings.Get(translate.ProviderCustomOpenAI)
	if existing != nil && existing.BaseURL != "" {
		fmt.Fprintf(os.Stderr, "  Current endpoint: %s%s%s\n", colorYellow, existing.BaseURL, colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new endpoint URL, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter endpoint URL (e.g., https://api.example.com/v1): ")
	}

	if !scanner.Scan() {
		logError("No input received")
		os.Exit(1)
	}
	baseURL := strings.TrimSpace(scanner.Text())

	if baseURL == "" && existing != nil && existing.BaseURL != "" {
		baseURL = existing.BaseURL
	}
	if baseURL == "" {
		logError("Endpoint URL is required")
		os.Exit(1)
	}

	// API key (optional for some endpoints)
	if existing != nil && existing.Key != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing.Key), colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new API key, or press Enter to keep (leave empty for none): ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key (or press Enter if not required): ")
	}

	if !scanner.Scan() {
		logError("No input received")
		os.Exit(1)
	}
	apiKey := strings.TrimSpace(scanner.Text())

	if apiKey == "" && existing != nil {
		apiKey = existing.Key
	}

	if err := settings.SetAPIKeyWithBaseURL(translate.ProviderCustomOpenAI, apiKey, baseURL); err != nil {
		logError("Failed to save credentials: %v", err)
		os.Exit(1)
	}

	logSuccess("Custom OpenAI endpoint saved!")
	fmt.Fprintf(os.Stderr, "\n  You can now use: langsync sync --provider custom-openai --model MODEL_NAME\n\n")
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.

Examples:
  langsync auth logout                     Remove all credentials
  langsync auth logout --provider google   Remove only the Google API key`,
		Run: func(cmd *cobra.Command, args []string) {
			if provider != "" {
				switch provider {
				case translate.ProviderGoogle, translate.ProviderGroq, translate.ProviderCustomOpenAI:
					if err := settings.Remove(provider); err != nil {
						logError("Failed to remove %s credentials: %v", provider, err)
						os.Exit(1)
					}
					logSuccess("%s credentials removed", provider)
				default:
					logError("Unknown provider '%s'. Run 'langsync auth list' to see providers.", provider)
					os.Exit(1)
				}
				return
			}

			if err := settings.RemoveAll(); err != nil {
				logError("Failed to remove credentials: %v", err)
				os.Exit(1)
			}
			logSuccess("All stored credentials removed")
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		completions := make([]string, 0, len(allProviders))
		for _, p := range allProviders {
			if p.auth == "none" {
				continue
			}
			completions = append(completions, fmt.Sprintf("%s\t%s", p.id, p.name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials and status",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Stored Credentials"), colorReset)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
			fmt.Fprintf(os.Stderr, "\n  File: %s\n", settings.FilePath())

			fmt.Fprintf(os.Stderr, "\n  %sAPI Key Providers%s\n", colorYellow, colorReset)
			for _, p := range allProviders {
				if p.auth != "api-key" {
					continue
				}
				entry := settings.Get(p.id)
				switch {
				case entry != nil && entry.Key != "":
					status := fmt.Sprintf("%sconfigured%s (key: %s)", colorGreen, colorReset, settings.MaskKey(entry.Key))
					if entry.BaseURL != "" {
						status += fmt.Sprintf("\n  %14s endpoint: %s", "", entry.BaseURL)
					}
					fmt.Fprintf(os.Stderr, "  %-14s %s\n", p.id, status)
				case p.id == translate.ProviderCustomOpenAI && entry != nil && entry.BaseURL != "":
					// custom-openai may have just a URL, no key
					status := fmt.Sprintf("%sconfigured%s (no key)", colorGreen, colorReset)
					status += fmt.Sprintf("\n  %14s endpoint: %s", "", entry.BaseURL)
					fmt.Fprintf(os.Stderr, "  %-14s %s\n", p.id, status)
				default:
					fmt.Fprintf(os.Stderr, "  %-14s %snot configured%s\n", p.id, colorRed, colorReset)
				}
			}

			fmt.Fprintf(os.Stderr, "\n  %sEnvironment Variables%s\n", colorYellow, colorReset)
			for _, env := range []string{"GOOGLE_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", settings.EnvAPIKey} {
				if v := os.Getenv(env); v != "" {
					fmt.Fprintf(os.Stderr, "  %-16s %s%s%s\n", env+":", colorGreen, settings.MaskKey(v), colorReset)
				} else {
					fmt.Fprintf(os.Stderr, "  %-16s %snot set%s\n", env+":", colorRed, colorReset)
				}
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// parseMarkers parses repeated "lang=prefix" placeholder overrides.
func parseMarkers(specs []string) (map[string]string, error) {
	markers := make(map[string]string, len(specs))
	for _, pair := range specs {
		lang, prefix, ok := strings.Cut(pair, "=")
		if !ok || lang == "" || prefix == "" {
			return nil, fmt.Errorf("invalid --markers value %q, expected lang=prefix", pair)
		}
		markers[langtag.Canonicalize(lang)] = prefix
	}
	return markers, nil
}

// intersectLanguages returns the filter languages that are actually
// available, trimmed, in filter order.
func intersectLanguages(available, filter []string) []string {
	var out []string
	for _, f := range filter {
		f = strings.TrimSpace(f)
		for _, a := range available {
			if f == a {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// filterOutLang returns langs without every occurrence of lang.
func filterOutLang(langs []string, lang string) []string {
	var out []string
	for _, l := range langs {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
