// Command wardrobe is a small client for the wardrobe API. The session token
// is kept in a JSON state file next to the user's config.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"wardrobeapi/apiclient"
	"wardrobeapi/controllers"
	"wardrobeapi/errs"
	"wardrobeapi/kvstore"
	"wardrobeapi/logger"
	"wardrobeapi/persistence"
	"wardrobeapi/services"
)

func statePath() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "wardrobe", "state.json")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wardrobe", "state.json")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: wardrobe [-api URL] <command> [args]

commands:
  login <user-id>          mint a development token with JWT_SECRET and store it
  logout                   forget the stored token
  items [search]           list items
  outfits                  list outfits
  stats [week|month]       show wear statistics
  upload [-multiple] [-auto] <file>
  pending                  list uploads waiting for review`)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	apiURL := flag.String("api", services.GetEnv("WARDROBE_API", "http://localhost:8083"), "wardrobe api base url")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := logger.New(services.GetEnv("LOG_LEVEL", "warn"))
	adapter := persistence.NewAdapter(kvstore.NewFileStore(statePath()), log.WithField("component", "cli"))
	client := apiclient.New(*apiURL+"/wardrobe", adapter)
	client.OnSessionExpired = func() {
		fmt.Fprintln(os.Stderr, "session expired, run: wardrobe login <user-id>")
	}

	if err := run(ctx, client, adapter, flag.Args()); err != nil {
		if errors.Is(err, errs.ErrSessionExpired) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *apiclient.Client, adapter *persistence.Adapter, args []string) error {
	cmd, args := args[0], args[1:]
	switch cmd {
	case "login":
		if len(args) != 1 {
			return errors.New("login needs a user id")
		}
		token, err := controllers.GenerateUserToken(args[0], services.GetEnv("JWT_SECRET", ""), 72*time.Hour)
		if err != nil {
			return err
		}
		adapter.SaveAuthToken(ctx, token)
		fmt.Println("logged in as", args[0])
		return nil
	case "logout":
		adapter.ClearAuthToken(ctx)
		return nil
	case "items":
		path := "/items"
		if len(args) > 0 {
			path += "?q=" + url.QueryEscape(args[0])
		}
		var items []controllers.ItemResponse
		if err := client.Get(ctx, path, &items); err != nil {
			return err
		}
		return printJSON(items)
	case "outfits":
		var outfits []controllers.OutfitResponse
		if err := client.Get(ctx, "/outfits", &outfits); err != nil {
			return err
		}
		return printJSON(outfits)
	case "stats":
		var summary json.RawMessage
		if len(args) > 0 {
			if err := client.Put(ctx, "/stats/range", controllers.TimeRangeIn{Range: args[0]}, &summary); err != nil {
				return err
			}
			return printJSON(summary)
		}
		if err := client.Get(ctx, "/stats", &summary); err != nil {
			return err
		}
		return printJSON(summary)
	case "upload":
		fs := flag.NewFlagSet("upload", flag.ContinueOnError)
		multiple := fs.Bool("multiple", false, "the photo shows a whole outfit")
		auto := fs.Bool("auto", false, "route by confidence without review")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("upload needs a file name")
		}
		var out json.RawMessage
		in := controllers.UploadIn{FileName: fs.Arg(0), Multiple: *multiple, AutoConfirm: *auto}
		if err := client.Post(ctx, "/uploads", in, &out); err != nil {
			return err
		}
		return printJSON(out)
	case "pending":
		var pending json.RawMessage
		if err := client.Get(ctx, "/recent-uploads", &pending); err != nil {
			return err
		}
		return printJSON(pending)
	}
	usage()
	return fmt.Errorf("unknown command %q", cmd)
}
