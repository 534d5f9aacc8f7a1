// cmd/welcome/main.go

// A small command line client around the httpclient package: it logs in,
// fetches the protected welcome message and logs out again. Mostly useful for
// poking at a running server without the frontend.

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jbrendel/go-react/httpclient"
	"github.com/jbrendel/go-react/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "welcome: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	baseURL := flag.String("server", "http://localhost:8000", "API server base URL")
	username := flag.String("username", "", "username (prompted when empty)")
	password := flag.String("password", "", "password (prompted when empty; prefer the prompt)")
	logLevel := flag.String("log-level", "warn", "client log level: debug | info | warn | error")
	timeout := flag.Duration("timeout", 30*time.Second, "overall time limit for the session")
	flag.Parse()

	sugar, err := logger.BuildLogger(*logLevel, logger.LogOutputHumanReadable)
	if err != nil {
		return err
	}
	defer sugar.Sync()

	config := httpclient.ClientConfig{
		BaseURL:  *baseURL,
		LogLevel: *logLevel,
	}
	client, err := httpclient.BuildClient(config, sugar)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("server %s is not reachable: %w", *baseURL, err)
	}

	user, pass, err := credentials(*username, *password)
	if err != nil {
		return err
	}

	if err := client.Login(ctx, user, pass); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	var welcome struct {
		Message string `json:"message"`
	}
	if _, err := client.DoRequest(ctx, "GET", "/api/welcome-message/", nil, &welcome); err != nil {
		return fmt.Errorf("fetch welcome message: %w", err)
	}
	fmt.Println(welcome.Message)

	if err := client.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// credentials fills in whatever the flags left empty, reading the username
// from stdin and the password without echo.
func credentials(username, password string) (string, string, error) {
	if username == "" {
		fmt.Print("Username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	return username, password, nil
}
