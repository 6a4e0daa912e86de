package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	figure "github.com/common-nighthawk/go-figure"
	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/backend"
	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/resolver"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `Usage: marquee [flags] <command> [args]

Commands:
  configure                          set the backend URL and catalog API key
  login [username]                   log in to the account backend
  logout                             forget stored credentials
  register <username> [-email addr]  create an account
  whoami                             show the logged-in account
  profiles [list]                    list profiles
  profiles create <name> [-avatar a] create a profile
  profiles rename <id> <name>        rename a profile
  profiles delete <id>               delete a profile
  profiles switch <id>               choose the active profile
  mylist [list]                      show saved items
  mylist add <movie|tv> <id>         save an item
  mylist remove <movie|tv> <id>      remove a saved item
  details <movie|tv> <id> [-plain]   show an item's detail page
  row [name] [-filter q] [-plain]    browse a catalog row (lists rows without a name)
  search <query> [-page n] [-plain]  search movies and TV
  trailer <movie|tv> <id>            play an item's trailer

Flags:
`

func main() {
	var (
		showVersion bool
		ephemeral   bool
		configDir   string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&ephemeral, "ephemeral", false, "keep credentials and cache in memory only")
	flag.StringVar(&configDir, "config", "", "config directory (default "+adapter.DefaultConfigPath()+")")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(configDir, ephemeral, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired services behind every command
type app struct {
	cfg    *adapter.Config
	logger *slog.Logger

	sessions *service.SessionService
	profiles *service.ProfileService
	list     *service.ListService
	details  *service.DetailsService
	trailers *service.TrailerService
}

func run(configDir string, ephemeral bool, args []string) error {
	fs := afero.NewOsFs()

	// Load configuration
	cfg, err := adapter.LoadConfig(fs, configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version, "command", args[0])

	if args[0] == "configure" {
		return runConfigure(fs, configDir, cfg)
	}

	dataDir := cfg.Data.Dir
	if ephemeral {
		dataDir = ""
	}
	db, err := store.Open(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	a := newApp(cfg, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.dispatch(ctx, args[0], args[1:])
}

func newApp(cfg *adapter.Config, db *store.DB, logger *slog.Logger) *app {
	tokens := db.Tokens()
	prefs := db.Preferences()
	session := cache.New(db.Session(), logger)

	api := backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, tokens, logger)

	tmdb := catalog.NewClient(catalog.Options{
		BaseURL:      cfg.Catalog.URL,
		APIKey:       cfg.Catalog.APIKey,
		Language:     cfg.Catalog.Language,
		ImageBaseURL: cfg.Catalog.ImageBaseURL,
		HTTPCache:    cfg.Catalog.HTTPCache,
	}, logger)
	logger.Debug("catalog client ready", "url", cfg.Catalog.URL, "language", tmdb.Language())

	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)

	sessions := service.NewSessionService(api, tokens, prefs, session, logger)
	api.OnSessionExpired(sessions.SessionExpired)

	details := service.NewDetailsService(tmdb, resolver.New(tmdb, cfg.Resolver.Concurrency, logger), session, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		profiles: service.NewProfileService(api, prefs, session, cfg.Cache.ProfilesTTL, logger),
		list:     service.NewListService(api, prefs, session, cfg.Cache.ListTTL, logger),
		details:  details,
		trailers: service.NewTrailerService(details, launcher, logger),
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.sessions.Logout(); err != nil {
			return err
		}
		fmt.Println("✓ Logged out")
		return nil
	case "register":
		return a.register(ctx, args)
	case "whoami":
		return a.whoami(ctx)
	case "profiles":
		return a.profilesCmd(ctx, args)
	case "mylist":
		return a.mylistCmd(ctx, args)
	case "details":
		return a.detailsCmd(ctx, args)
	case "row":
		return a.rowCmd(ctx, args)
	case "search":
		return a.searchCmd(ctx, args)
	case "trailer":
		return a.trailerCmd(ctx, args)
	default:
		return fmt.Errorf("unknown command %q (run marquee -h for usage)", cmd)
	}
}

// runConfigure prompts for the endpoints and catalog key and saves them
func runConfigure(fs afero.Fs, configDir string, cfg *adapter.Config) error {
	reader := bufio.NewReader(os.Stdin)

	backendURL, err := prompt(reader, fmt.Sprintf("Backend URL [%s]: ", cfg.Backend.URL))
	if err != nil {
		return err
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}

	apiKey, err := prompt(reader, "Catalog API key: ")
	if err != nil {
		return err
	}
	if apiKey != "" {
		cfg.Catalog.APIKey = apiKey
	}

	if err := adapter.SaveConfig(fs, configDir, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// readPassword prompts for a password with hidden input
func readPassword(label string) (string, error) {
	fmt.Print(label)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

func displayBanner() {
	figure.NewFigure("marquee", "cybermedium", true).Print()
	fmt.Println()
}

func (a *app) login(ctx context.Context, args []string) error {
	displayBanner()

	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		u, err := prompt(bufio.NewReader(os.Stdin), "Username: ")
		if err != nil {
			return err
		}
		username = u
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	if err := a.sessions.Login(ctx, username, password); err != nil {
		if domain.IsStatus(err, 401) {
			return errors.New("invalid username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Printf("✓ Logged in as %s\n", username)

	profiles, err := a.profiles.Profiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 1 {
		if _, err := a.profiles.Switch(ctx, profiles[0].ID); err != nil {
			return err
		}
		fmt.Printf("Using profile %s\n", profiles[0].Name)
		return nil
	}
	fmt.Println("Choose a profile with: marquee profiles switch <id>")
	printProfiles(profiles, 0)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("usage: marquee register <username> [-email addr]")
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	if err := a.sessions.Register(ctx, rest[0], *email, password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Println("✓ Account created. Log in with: marquee login " + rest[0])
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	info, err := a.sessions.WhoAmI(ctx)
	if err != nil {
		return err
	}
	status := a.sessions.Status()

	fmt.Printf("%s <%s>\n", info.Username, info.Email)
	if !status.AccessExpiry.IsZero() {
		fmt.Printf("Access token expires %s\n", status.AccessExpiry.Local().Format("2006-01-02 15:04"))
	}
	if current, err := a.profiles.Current(ctx); err == nil && current != nil {
		fmt.Printf("Profile: %s\n", current.Name)
	}
	return nil
}

func (a *app) profilesCmd(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		profiles, err := a.profiles.Profiles(ctx)
		if err != nil {
			return err
		}
		var currentID int64
		if current, err := a.profiles.Current(ctx); err == nil && current != nil {
			currentID = current.ID
		}
		printProfiles(profiles, currentID)
		return nil

	case "create":
		fs := flag.NewFlagSet("profiles create", flag.ContinueOnError)
		avatar := fs.String("avatar", "", "avatar image name")
		rest, err := parseArgs(fs, args)
		if err != nil {
			return err
		}
		if len(rest) != 1 {
			return errors.New("usage: marquee profiles create <name> [-avatar a]")
		}
		p, err := a.profiles.Create(ctx, rest[0], *avatar)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created profile %s (%d)\n", p.Name, p.ID)
		return nil

	case "rename":
		if len(args) != 2 {
			return errors.New("usage: marquee profiles rename <id> <name>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := a.profiles.Rename(ctx, id, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Renamed profile %d to %s\n", p.ID, p.Name)
		return nil

	case "delete":
		if len(args) != 1 {
			return errors.New("usage: marquee profiles delete <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := a.profiles.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted profile %d\n", id)
		return nil

	case "switch":
		if len(args) != 1 {
			return errors.New("usage: marquee profiles switch <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := a.profiles.Switch(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Switched to %s\n", p.Name)
		return nil

	default:
		return fmt.Errorf("unknown profiles command %q", sub)
	}
}

func printProfiles(profiles []domain.Profile, currentID int64) {
	for _, p := range profiles {
		marker := " "
		if p.ID == currentID {
			marker = "*"
		}
		fmt.Printf("%s %4d  %s\n", marker, p.ID, p.Name)
	}
}

func (a *app) mylistCmd(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		entries, err := a.list.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Your list is empty")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%-5s %8d  %s\n", e.MediaType, e.ItemID, e.Title)
		}
		return nil

	case "add":
		kind, id, err := parseItemArgs(args)
		if err != nil {
			return err
		}
		if err := a.requireCatalog(); err != nil {
			return err
		}
		d, err := a.details.Details(ctx, kind, id)
		if err != nil {
			return err
		}
		if _, err := a.list.Add(ctx, d.Item); err != nil {
			return err
		}
		fmt.Printf("✓ Added %s to your list\n", d.Item.Title)
		return nil

	case "remove":
		kind, id, err := parseItemArgs(args)
		if err != nil {
			return err
		}
		if err := a.list.Remove(ctx, kind, id); err != nil {
			return err
		}
		fmt.Println("✓ Removed from your list")
		return nil

	default:
		return fmt.Errorf("unknown mylist command %q", sub)
	}
}

func (a *app) services() tui.Services {
	return tui.Services{Details: a.details, List: a.list, Trailer: a.trailers}
}

func (a *app) detailsCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("details", flag.ContinueOnError)
	plain := fs.Bool("plain", false, "print the page instead of opening the viewer")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	kind, id, err := parseItemArgs(rest)
	if err != nil {
		return err
	}
	if err := a.requireCatalog(); err != nil {
		return err
	}

	if *plain {
		d, err := a.details.Details(ctx, kind, id)
		if err != nil {
			return err
		}
		inList, err := a.list.Contains(ctx, kind, id)
		if err != nil && !errors.Is(err, domain.ErrNotLoggedIn) {
			return err
		}
		fmt.Println(tui.RenderDetails(*d, inList, 80))
		return nil
	}

	return a.runProgram(tui.NewDetailsModel(a.services(), kind, id))
}

func (a *app) rowCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("row", flag.ContinueOnError)
	query := fs.String("filter", "", "only show titles matching this query")
	plain := fs.Bool("plain", false, "print the row instead of opening the browser")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	if len(rest) == 0 {
		for _, r := range domain.Rows {
			fmt.Println(r.Name)
		}
		return nil
	}
	row, err := domain.LookupRow(rest[0])
	if err != nil {
		return err
	}
	if err := a.requireCatalog(); err != nil {
		return err
	}

	if *plain {
		items, err := a.details.Row(ctx, row)
		if err != nil {
			return err
		}
		byKey := make(map[string]domain.Details, len(items))
		catalogItems := make([]domain.CatalogItem, len(items))
		for i, d := range items {
			catalogItems[i] = d.Item
			byKey[d.Item.CacheKey()] = d
		}
		for _, r := range searchResults(*query, catalogItems) {
			trailer := ""
			if byKey[r.CacheKey()].Media.Trailer != nil {
				trailer = "▶"
			}
			fmt.Printf("%-5s %8d  %-40s %4s %s\n", r.Kind, r.ID, r.Title, yearString(r.Year()), trailer)
		}
		return nil
	}

	return a.runProgram(tui.NewRowModel(a.services(), row, *query))
}

func (a *app) searchCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	page := fs.Int("page", 1, "results page")
	plain := fs.Bool("plain", false, "print the results instead of opening the browser")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	query := strings.Join(rest, " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("usage: marquee search <query> [-page n] [-plain]")
	}
	if *page < 1 {
		return fmt.Errorf("invalid page %d", *page)
	}
	if err := a.requireCatalog(); err != nil {
		return err
	}

	if *plain {
		hits, err := a.details.Search(ctx, query, *page)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("No results")
			return nil
		}
		for _, d := range hits {
			trailer := ""
			if d.Media.Trailer != nil {
				trailer = "▶"
			}
			fmt.Printf("%-5s %8d  %-40s %4s %s\n", d.Item.Kind, d.Item.ID, d.Item.Title, yearString(d.Item.Year()), trailer)
		}
		return nil
	}

	return a.runProgram(tui.NewSearchModel(a.services(), query, *page))
}

func (a *app) trailerCmd(ctx context.Context, args []string) error {
	kind, id, err := parseItemArgs(args)
	if err != nil {
		return err
	}
	if err := a.requireCatalog(); err != nil {
		return err
	}
	trailer, err := a.trailers.Play(ctx, kind, id)
	if err != nil {
		return err
	}
	fmt.Printf("▶ %s (%s)\n", trailer.Name, trailer.WatchURL())
	return nil
}

func (a *app) runProgram(model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}

func (a *app) requireCatalog() error {
	if !a.cfg.IsConfigured() {
		return errors.New("catalog API key is not set; run marquee configure")
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseItemArgs(args []string) (domain.MediaKind, int64, error) {
	if len(args) != 2 {
		return "", 0, errors.New("expected <movie|tv> <id>")
	}
	kind, err := domain.ParseMediaKind(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := parseID(args[1])
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

// parseArgs parses fs and returns the positional arguments. Flags may appear
// before or after them.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// searchResults narrows items to those matching query, best first
func searchResults(query string, items []domain.CatalogItem) []domain.CatalogItem {
	matches := search.Filter(query, items)
	out := make([]domain.CatalogItem, len(matches))
	for i, m := range matches {
		out[i] = m.Item
	}
	return out
}

func yearString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
