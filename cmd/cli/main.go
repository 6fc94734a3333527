// Command shop is a CLI client for the storefront HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "storefront")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storefront")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.AccessToken, nil
}

func dropToken() error {
	if err := os.Remove(tokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `shop CLI
Usage:
  shop -addr http://HOST:PORT <cmd> [args]

Commands:
  version
  categories
  products   [-c <category>]
  register   -n <name> -e <email> -p <password> [-confirm <password>]   (saves token)
  login      -e <email> -p <password>                                    (saves token)
  logout
  me
  cart
  add        -id <product>
  set        -id <product> -q <quantity>
  rm         -id <product>
  checkout
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the storefront API.
func main() {
	// global flags
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cli := newClient(*addr, &http.Client{Timeout: 30 * time.Second})

	switch cmd {

	case "version":
		fmt.Printf("shop %s (%s)\n", version, buildDate)

	case "categories":
		var out []map[string]string
		if err := cli.do(ctx, http.MethodGet, "/categories", "", nil, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		c := fs.String("c", "", "category key")
		_ = fs.Parse(args)
		path := "/products"
		if *c != "" {
			path += "?category=" + *c
		}
		var out []map[string]any
		if err := cli.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		n := fs.String("n", "", "name")
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		confirm := fs.String("confirm", "", "password confirmation (defaults to -p)")
		_ = fs.Parse(args)
		if *n == "" || *e == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -n, -e and -p")
			os.Exit(1)
		}
		if *confirm == "" {
			*confirm = *p
		}
		body := map[string]string{"name": *n, "email": *e, "password": *p, "confirm_password": *confirm}
		var resp authResponse
		if err := cli.do(ctx, http.MethodPost, "/auth/register", "", body, &resp); err != nil {
			fail(err)
		}
		if err := saveToken(resp.AccessToken, resp.ExpiresAt); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		e := fs.String("e", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *e == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -e and -p")
			os.Exit(1)
		}
		var resp authResponse
		if err := cli.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{"email": *e, "password": *p}, &resp); err != nil {
			fail(err)
		}
		if err := saveToken(resp.AccessToken, resp.ExpiresAt); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "logout":
		token := mustToken()
		if err := cli.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil); err != nil {
			fail(err)
		}
		_ = dropToken()
		fmt.Println("ok")

	case "me":
		token, _ := loadToken()
		var out map[string]any
		if err := cli.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "cart":
		var out map[string]any
		if err := cli.do(ctx, http.MethodGet, "/cart", mustToken(), nil, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		id := fs.Int64("id", 0, "product id")
		_ = fs.Parse(args)
		var out map[string]any
		if err := cli.do(ctx, http.MethodPost, "/cart/items", mustToken(), map[string]int64{"product_id": *id}, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "set":
		fs := flag.NewFlagSet("set", flag.ExitOnError)
		id := fs.Int64("id", 0, "product id")
		q := fs.Int("q", 0, "quantity (0 removes)")
		_ = fs.Parse(args)
		var out map[string]any
		path := "/cart/items/" + strconv.FormatInt(*id, 10)
		if err := cli.do(ctx, http.MethodPut, path, mustToken(), map[string]int{"quantity": *q}, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "rm":
		fs := flag.NewFlagSet("rm", flag.ExitOnError)
		id := fs.Int64("id", 0, "product id")
		_ = fs.Parse(args)
		var out map[string]any
		path := "/cart/items/" + strconv.FormatInt(*id, 10)
		if err := cli.do(ctx, http.MethodDelete, path, mustToken(), nil, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	case "checkout":
		var out map[string]any
		if err := cli.do(ctx, http.MethodPost, "/cart/checkout", mustToken(), nil, &out); err != nil {
			fail(err)
		}
		printJSON(out)

	default:
		usage()
	}
}

// ---- helpers ----

func mustToken() string {
	token, err := loadToken()
	if err != nil {
		fail(err)
	}
	return token
}

func fail(err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		fmt.Fprintf(os.Stderr, "api error: status=%d msg=%s\n", ae.Status, ae.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
