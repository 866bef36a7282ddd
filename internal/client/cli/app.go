package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
)

type App struct {
	config *config.Config
	auth   *services.AuthService
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	return newApp(c, services.NewAuthService(api), os.Stdin, os.Stdout)
}

func newApp(c *config.Config, auth *services.AuthService, in io.Reader, out io.Writer) *App {
	return &App{config: c, auth: auth, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsLoggedIn()
}

func (a *App) status() string {
	if name := a.auth.Username(); name != "" {
		return "(" + name + ")"
	}
	return ""
}

// Run starts the REPL and blocks until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to gophauth CLI (type 'help' for commands)")

	if err := a.auth.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: %s is not reachable: %v\n", a.config.ServerURL, err)
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
}
