package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-afazer-client/authclient"
	"github.com/jrsteele09/go-afazer-client/cache"
	"github.com/jrsteele09/go-afazer-client/credentials"
	"github.com/jrsteele09/go-afazer-client/credentials/filestore"
	"github.com/jrsteele09/go-afazer-client/credentials/keyringstore"
	"github.com/jrsteele09/go-afazer-client/internal/config"
	"github.com/jrsteele09/go-afazer-client/internal/utils"
	"github.com/jrsteele09/go-afazer-client/items"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.New()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	flag.Usage = func() { usage(cfg.AppName) }
	flag.Parse()
	if flag.NArg() == 0 {
		usage(cfg.AppName)
		return errors.New("missing command")
	}

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout)
	defer cancel()

	command, args := flag.Arg(0), flag.Args()[1:]
	switch command {
	case "login":
		return app.login(ctx, args)
	case "logout":
		return app.auth.Logout(ctx)
	case "whoami":
		return app.whoami(ctx)
	case "list":
		return app.list(ctx, args)
	case "add":
		return app.add(ctx, args)
	case "done":
		return app.done(ctx, args)
	case "rm":
		return app.remove(ctx, args)
	default:
		usage(cfg.AppName)
		return fmt.Errorf("unknown command %q", command)
	}
}

type app struct {
	cfg      config.Config
	log      zerolog.Logger
	auth     *authclient.Client
	items    *items.Service
	listData *cache.Store
}

func newApp(cfg config.Config, logger zerolog.Logger) (*app, error) {
	fileStore, err := filestore.New(cfg.CredentialsFile())
	if err != nil {
		return nil, err
	}

	creds, err := credentials.New(keyringstore.New(cfg.KeyringService),
		credentials.WithFallback(fileStore),
		credentials.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	auth, err := authclient.New(cfg.APIURL, creds,
		authclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		authclient.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	listData, err := cache.Open(cfg.CacheFile())
	if err != nil {
		// The cache is an enhancement, not a requirement.
		logger.Warn().Err(err).Msg("offline cache unavailable")
		listData = nil
	}

	itemOpts := []items.ServiceOption{items.WithLogger(logger)}
	if listData != nil {
		itemOpts = append(itemOpts, items.WithCache(listData))
	}
	itemsService, err := items.NewService(cfg.APIURL, auth, itemOpts...)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: logger, auth: auth, items: itemsService, listData: listData}, nil
}

func (a *app) close() {
	if a.listData != nil {
		_ = a.listData.Close()
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	displayAppname(a.cfg.AppName)

	reader := bufio.NewReader(os.Stdin)
	if *username == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*username = strings.TrimSpace(line)
	}
	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	password := strings.TrimRight(line, "\r\n")

	if err := a.auth.Login(ctx, *username, password); err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.Username, user.Email)

	// Best effort: not every backend issues decodable JWTs.
	if claims, err := a.auth.SessionClaims(); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Printf("Access token expires %s\n", exp.Time.Format(time.RFC1123))
		}
	}
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	itemType := fs.String("type", "", "item type filter (task, supermarket, country)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.items.List(ctx, items.ListOptions{Type: *itemType})
	if err != nil {
		return err
	}

	for _, item := range result {
		marker := " "
		if item.Completed {
			marker = "x"
		}
		fmt.Printf("[%s] %-12s %-36s %s\n", marker, item.Type, item.ID, item.Text)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	itemType := fs.String("type", items.TypeTask, "item type (task, supermarket, country)")
	category := fs.String("category", items.CategoryOn, "task category")
	color := fs.String("color", items.ColorBlue, "task color")
	quantity := fs.Float64("qty", 0, "quantity (supermarket)")
	unit := fs.String("unit", "", "unit (supermarket)")
	price := fs.Float64("price", 0, "price (supermarket)")
	capital := fs.String("capital", "", "capital (country)")
	language := fs.String("language", "", "language (country)")
	notes := fs.String("notes", "", "notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("add: item text is required")
	}

	item := items.Item{Text: text, CreatedAt: time.Now().UnixMilli()}
	if *notes != "" {
		item.Dynamics = &items.Dynamics{Notes: utils.Ptr(*notes)}
	}

	var created *items.Item
	var err error
	switch *itemType {
	case items.TypeSupermarket:
		dynamics := items.Dynamics{Notes: optString(*notes)}
		if *quantity > 0 {
			dynamics.Quantity = utils.Ptr(*quantity)
		}
		if *unit != "" {
			dynamics.Unit = utils.Ptr(*unit)
		}
		if *price > 0 {
			dynamics.Price = utils.Ptr(*price)
		}
		item.Dynamics = &dynamics
		created, err = a.items.CreateSupermarket(ctx, item)
	case items.TypeCountry:
		item.Dynamics = &items.Dynamics{
			Capital:  optString(*capital),
			Language: optString(*language),
			Notes:    optString(*notes),
		}
		created, err = a.items.CreateCountry(ctx, item)
	default:
		item.Type = items.TypeTask
		item.Category = *category
		item.Color = *color
		created, err = a.items.Create(ctx, item)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Created %s %s\n", created.Type, created.ID)
	return nil
}

func (a *app) done(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: afazer done <id>")
	}
	item, err := a.findItem(ctx, args[0])
	if err != nil {
		return err
	}

	item.Completed = true
	if _, err := a.items.Update(ctx, *item); err != nil {
		return err
	}
	fmt.Printf("Completed %s\n", item.ID)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: afazer rm <id>")
	}
	if err := a.items.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func (a *app) findItem(ctx context.Context, id string) (*items.Item, error) {
	result, err := a.items.List(ctx, items.ListOptions{})
	if err != nil {
		return nil, err
	}
	for i := range result {
		if result[i].ID == id {
			return &result[i], nil
		}
	}
	return nil, fmt.Errorf("no item with id %q", id)
}

func optString(value string) *string {
	if value == "" {
		return nil
	}
	return utils.Ptr(value)
}

func newLogger(level string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage(appname string) {
	displayAppname(appname)
	fmt.Fprintf(os.Stderr, `Usage: afazer <command> [flags]

Commands:
  login [-u username]      authenticate and store tokens
  logout                   revoke and clear stored tokens
  whoami                   show the current session
  list [-type t]           list items (task, supermarket, country)
  add [flags] <text>       create an item
  done <id>                mark an item completed
  rm <id>                  delete an item
`)
}
