// modlingo — mod localization tool: XML string extractor with machine translation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/modlingo/modlingo/config"
	"github.com/modlingo/modlingo/export"
	"github.com/modlingo/modlingo/extract"
	"github.com/modlingo/modlingo/i18n"
	"github.com/modlingo/modlingo/langmeta"
	"github.com/modlingo/modlingo/lockfile"
	"github.com/modlingo/modlingo/session"
	"github.com/modlingo/modlingo/settings"
	"github.com/modlingo/modlingo/translate"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

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
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "modlingo",
		Short: "Mod localization tool: XML string extractor with machine translation",
		Long: `modlingo — mod localization tool: XML string extractor with machine translation.

Scans a mod folder for translatable XML strings (definition files and
LanguageData dictionaries), translates them with an online provider, and
writes a complete translated copy of the mod alongside the original.

Commands:
  status      Show mod info and translation statistics
  translate   Translate untranslated strings and export the result
  export      Export the translated mod copy without calling a provider
  auth        Manage provider API keys

Providers:
  google          Google Translate web endpoints (free)
  mymemory        MyMemory (free)
  libretranslate  LibreTranslate (optional API key)
  deepl           DeepL — API key required
  yandex          Yandex Translate — API key required
  microsoft       Microsoft Translator — API key required`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Mod root directory")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newExportCmd(),
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
			fmt.Printf("modlingo version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Shared session setup
// ---------------------------------------------------------------------------

// resolveLang picks the target language: flag, then .modlingo.yaml, then
// Russian. The returned value is the display name used in folder suffixes.
func resolveLang(flagLang string, mf *config.ModlingoFile) string {
	lang := flagLang
	if lang == "" && mf != nil {
		lang = mf.TargetLang
	}
	if lang == "" {
		lang = "Russian"
	}
	return langmeta.Name(lang)
}

func resolveTags(mf *config.ModlingoFile) extract.TagSet {
	tags := extract.DefaultTags()
	if mf != nil && len(mf.ExtraTags) > 0 {
		tags = tags.With(mf.ExtraTags...)
	}
	return tags
}

// loadSession detects the mod and loads it with prior translations applied.
func loadSession(flagLang string) (*session.Session, *config.ModlingoFile, error) {
	mod := config.Detect(rootDir)
	if !mod.IsMod() {
		return nil, nil, fmt.Errorf("%s does not look like a mod folder (no About.xml, Defs/ or Languages/English)", mod.Root)
	}

	mf, err := config.LoadModlingoFile(mod.Root)
	if err != nil {
		return nil, nil, err
	}

	lang := resolveLang(flagLang, mf)
	s, err := session.Load(mod.Root, lang, resolveTags(mf))
	if err != nil {
		return nil, nil, err
	}

	logInfo("%s: %s", mod.Name, s.Describe())
	return s, mf, nil
}

// ---------------------------------------------------------------------------
// status (read-only: mod info + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show mod info and translation statistics",
		Long: `Show detected mod structure and translation statistics.

Displays the translatable string count per document and the overall
progress for the target language. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(lang)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Target language (name or ISO code)")

	return cmd
}

func runStatus(lang string) error {
	s, _, err := loadSession(lang)
	if err != nil {
		return err
	}

	fmt.Printf("Mod:       %s\n", s.Root)
	fmt.Printf("Language:  %s\n", s.TargetLang)
	fmt.Println()

	for _, e := range s.Entries {
		if e.Doc.Err != nil {
			fmt.Printf("  %-46s %s\n", e.Doc.RelPath, colorRed+"parse error"+colorReset)
			continue
		}
		leaves := extract.Leaves(e.Nodes)
		if len(leaves) == 0 {
			continue
		}
		done := 0
		for _, n := range leaves {
			if n.EffectiveTranslation() != "" {
				done++
			}
		}
		fmt.Printf("  %-46s %s\n", e.Doc.RelPath, progressBar(percent(done, len(leaves)), 20))
	}

	total, translated := s.Stats()
	fmt.Println()
	fmt.Printf("Total: "+i18n.N("%d string", "%d strings", total)+", %d translated (%d%%)\n",
		total, translated, percent(translated, total))
	return nil
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

// progressBar renders a colored bar like ██████░░░░  60%.
func progressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100

	color := colorRed
	switch {
	case pct >= 100:
		color = colorGreen
	case pct >= 40:
		color = colorYellow
	}

	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) +
		colorReset + fmt.Sprintf(" %3d%%", pct)
}

// ---------------------------------------------------------------------------
// translate (machine-translate untranslated strings, then export)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		lang        string
		provider    string
		apiKey      string
		proxy       string
		retranslate bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate untranslated strings and export the result",
		Long: `Translate untranslated mod strings using an online provider.

Previously exported translations are picked up first, so only new or
changed strings are sent over the network. After translation the full
translated mod copy is written next to the original.

Examples:
  # Translate to Russian with the free Google endpoints
  modlingo translate --lang ru --provider google

  # Translate with DeepL (API key from 'modlingo auth login deepl')
  modlingo translate --lang de --provider deepl

  # Show what would be sent without calling a provider
  modlingo translate --lang ru --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(translateArgs{
				lang: lang, provider: provider, apiKey: apiKey,
				proxy: proxy, retranslate: retranslate, dryRun: dryRun,
			})
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Target language (name or ISO code)")
	cmd.Flags().StringVar(&provider, "provider", "", "Translation provider: google, mymemory, libretranslate, deepl, yandex, microsoft")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or MODLINGO_API_KEY env var)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().BoolVar(&retranslate, "retranslate", false, "Re-translate already translated strings")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without network calls")

	// Provider completion
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"google\tGoogle Translate web endpoints (free)",
			"mymemory\tMyMemory (free)",
			"libretranslate\tLibreTranslate (optional API key)",
			"deepl\tDeepL — API key required",
			"yandex\tYandex Translate — API key required",
			"microsoft\tMicrosoft Translator — API key required",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

type translateArgs struct {
	lang, provider, apiKey, proxy string
	retranslate, dryRun           bool
}

// pending is one string selected for machine translation.
type pending struct {
	docPath string
	key     string // structural part of the path key
	node    *extract.Node
}

func runTranslate(a translateArgs) error {
	s, mf, err := loadSession(a.lang)
	if err != nil {
		return err
	}

	providerID := a.provider
	if providerID == "" && mf != nil {
		providerID = mf.Provider
	}
	if providerID == "" {
		providerID = translate.ProviderGoogle
	}

	proxy := a.proxy
	if proxy == "" && mf != nil {
		proxy = mf.Proxy
	}

	lock, err := lockfile.Load(s.Root)
	if err != nil {
		return err
	}

	queue := selectPending(s, lock, a.retranslate)
	if len(queue) == 0 {
		logSuccess(i18n.T("Nothing to translate"))
		return exportSession(s)
	}
	logInfo(i18n.N("Translating %d string via %s", "Translating %d strings via %s", len(queue)), len(queue), providerID)

	if a.dryRun {
		for _, p := range queue {
			fmt.Printf("  %s :: %s\n", p.docPath, p.key)
		}
		logInfo("dry run: no provider was contacted")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service := translate.New(proxy)
	service.SetBaseURL(providerID, settings.GetBaseURL(providerID))
	srcCode := "en"
	dstCode := langmeta.Code(s.TargetLang)
	apiKey := settings.ResolveAPIKey(a.apiKey, providerID)

	var failed int
	for _, p := range queue {
		if ctx.Err() != nil {
			logWarning("interrupted, exporting what was translated so far")
			break
		}

		resp := service.Translate(ctx, translate.Request{
			Text:       p.node.OriginalText,
			SourceLang: srcCode,
			TargetLang: dstCode,
			Provider:   providerID,
			APIKey:     apiKey,
		})
		if !resp.Success {
			failed++
			logWarning("%s :: %s: %s", p.docPath, p.key, resp.Err)
			continue
		}

		p.node.Translation = resp.Text
		p.node.SubmittedTranslation = resp.Text
		lock.Update(p.docPath, p.key, p.node.OriginalText)
		if resp.Provider != providerID {
			logInfo("%s served by fallback provider %s", p.key, resp.Provider)
		}
	}

	cleanLock(s, lock)
	if err := lock.Save(); err != nil {
		logWarning("lock file not saved: %v", err)
	}

	if failed > 0 {
		logWarning(i18n.N("%d string failed to translate", "%d strings failed to translate", failed), failed)
	}
	return exportSession(s)
}

// selectPending picks the strings to send to a provider. Untranslated
// strings always qualify; translated ones only when --retranslate is set
// or a recorded checksum shows their source text changed. A translated
// string with no recorded checksum came from outside modlingo (a merged
// hand-edited folder) — it is adopted into the lock as-is, never re-sent.
func selectPending(s *session.Session, lock *lockfile.LockFile, retranslate bool) []pending {
	keys := make([]string, 0, len(s.Lookup))
	for k := range s.Lookup {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var queue []pending
	for _, k := range keys {
		n := s.Lookup[k]
		if !n.IsLeaf() {
			continue
		}
		docPath, structural, ok := strings.Cut(k, "::")
		if !ok {
			continue
		}
		if n.EffectiveTranslation() != "" && !retranslate {
			if !lock.Has(docPath, structural) {
				lock.Update(docPath, structural, n.OriginalText)
				continue
			}
			if !lock.IsChanged(docPath, structural, n.OriginalText) {
				continue
			}
		}
		queue = append(queue, pending{docPath: docPath, key: structural, node: n})
	}
	return queue
}

// cleanLock drops lock entries for strings that no longer exist.
func cleanLock(s *session.Session, lock *lockfile.LockFile) {
	perDoc := make(map[string][]string)
	for k, n := range s.Lookup {
		if !n.IsLeaf() {
			continue
		}
		if docPath, structural, ok := strings.Cut(k, "::"); ok {
			perDoc[docPath] = append(perDoc[docPath], structural)
		}
	}
	for docPath, keys := range perDoc {
		lock.Clean(docPath, keys)
	}
}

// ---------------------------------------------------------------------------
// export (write the translated mod copy)
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the translated mod copy without calling a provider",
		Long: `Write the translated mod copy from existing translations.

Collects translations from a previous export (or a hand-edited translated
folder) and re-emits the full "<Mod> (<Language>)" tree. No network access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := loadSession(lang)
			if err != nil {
				return err
			}
			return exportSession(s)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Target language (name or ISO code)")

	return cmd
}

func exportSession(s *session.Session) error {
	report := export.Folder(s)

	for _, fe := range report.Errors {
		logError("%s: %v", fe.Path, fe.Err)
	}
	if report.Skipped > 0 {
		logWarning(i18n.N("%d document skipped (parse error)", "%d documents skipped (parse errors)", report.Skipped), report.Skipped)
	}

	if report.Degraded() {
		logWarning("%s -> %s", report.Summary(), report.Root)
	} else {
		logSuccess("%s -> %s", report.Summary(), report.Root)
	}
	return nil
}

// ---------------------------------------------------------------------------
// auth (manage provider API keys)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Manage stored provider API keys.

Keys are stored in ` + settings.FilePath() + ` with 0600 permissions.`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var apiKey string
	var baseURL string

	cmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerID := strings.ToLower(args[0])
			if !knownProvider(providerID) {
				return fmt.Errorf("unknown provider %q (valid: %s)", providerID, strings.Join(translate.Providers(), ", "))
			}
			if apiKey == "" {
				return fmt.Errorf("--api-key is required")
			}
			if err := settings.SetAPIKey(providerID, apiKey); err != nil {
				return err
			}
			if baseURL != "" {
				store := settings.Load()
				store[providerID].BaseURL = baseURL
				if err := settings.Save(store); err != nil {
					return err
				}
			}
			logSuccess("stored key for %s (%s)", providerID, settings.MaskKey(apiKey))
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key to store")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL (self-hosted LibreTranslate etc.)")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerID := strings.ToLower(args[0])
			if err := settings.Remove(providerID); err != nil {
				return err
			}
			logSuccess("removed credentials for %s", providerID)
			return nil
		},
	}

	return cmd
}

func newAuthListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored provider credentials",
		Run: func(cmd *cobra.Command, args []string) {
			store := settings.Load()
			if len(store) == 0 {
				fmt.Println("no stored credentials")
				return
			}
			ids := make([]string, 0, len(store))
			for id := range store {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				line := fmt.Sprintf("  %-16s %s", id, settings.MaskKey(store[id].Key))
				if store[id].BaseURL != "" {
					line += "  " + store[id].BaseURL
				}
				fmt.Println(line)
			}
		},
	}

	return cmd
}

func knownProvider(id string) bool {
	for _, p := range translate.Providers() {
		if p == id {
			return true
		}
	}
	return false
}
