package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"cyclekeeper/internal/config"
)

var cli struct {
	Debug bool `help:"Log at debug level and mirror logs to stderr." env:"CYCLEKEEPER_DEBUG"`

	Gui       GuiCmd       `cmd:"" help:"Run the desktop timer with a tray icon." default:"1"`
	Tui       TuiCmd       `cmd:"" help:"Run the timer in the terminal."`
	Status    StatusCmd    `cmd:"" help:"Show the countdown of the running instance."`
	History   HistoryCmd   `cmd:"" help:"List the cycles of the running instance."`
	Start     StartCmd     `cmd:"" help:"Start a cycle in the running instance."`
	Interrupt InterruptCmd `cmd:"" help:"Interrupt the cycle of the running instance."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("cyclekeeper"),
		kong.Description("Task countdown timer with tray, terminal and local control endpoint."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: config: %v\n", err)
		os.Exit(1)
	}
	if cli.Debug {
		cfg.Logger.Debug = true
	}

	if err := ctx.Run(&appContext{cfg: cfg}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
