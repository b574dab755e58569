package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"

	"git.sr.ht/~exteditor/exteditor/app"
	"git.sr.ht/~exteditor/exteditor/config"
	"git.sr.ht/~exteditor/exteditor/lib/compose"
	"git.sr.ht/~exteditor/exteditor/lib/store"
	"git.sr.ht/~exteditor/exteditor/lib/xdg"
	"git.sr.ht/~exteditor/exteditor/log"
)

func usage(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	fmt.Fprintln(os.Stderr,
		"usage: exteditor-compose [-v] [-c <config>] [-o <key>=<value>]... <draft.eml>...")
	os.Exit(1)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "exteditor-compose: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	defer log.PanicHandler()

	var confPath string
	var options []string
	opts, optind, err := getopt.Getopts(os.Args, "vc:o:")
	if err != nil {
		usage("error: " + err.Error())
		return
	}
	verbose := false
	for _, opt := range opts {
		switch opt.Option {
		case 'v':
			verbose = true
		case 'c':
			confPath = opt.Value
		case 'o':
			options = append(options, opt.Value)
		}
	}
	paths := os.Args[optind:]
	if len(paths) == 0 && len(options) == 0 {
		usage("error: no draft given")
	}

	conf, err := config.Load(confPath)
	if err != nil {
		die("%v", err)
	}
	if verbose {
		conf.General.LogLevel = log.DEBUG
	}
	logFile, err := conf.General.OpenLog()
	if err != nil {
		die("%v", err)
	}
	if logFile == nil && verbose {
		logFile = os.Stderr
	}
	log.Init(logFile, conf.General.LogLevel)

	st := store.Open(xdg.DataPath("exteditor", "settings"))
	defer st.Close()
	if err := conf.SeedStore(st); err != nil {
		die("%v", err)
	}
	for _, o := range options {
		key, value, found := strings.Cut(o, "=")
		if !found {
			die("-o %s: expected <key>=<value>", o)
		}
		if err := st.SetOption(key, value); err != nil {
			die("%v", err)
		}
	}
	if len(paths) == 0 {
		return
	}

	drafts, err := compose.Open(paths...)
	if err != nil {
		die("%v", err)
	}
	argv, err := conf.Helper.Argv()
	if err != nil {
		die("%v", err)
	}
	conf.Triggers.ExecuteCommand = func(command []string) error {
		cmd := exec.Command(command[0], command[1:]...)
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
	notifier := app.Notifiers{
		&app.WriterNotifier{W: os.Stderr},
		&app.TriggerNotifier{Triggers: &conf.Triggers},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a := app.New(app.NativeConnector(argv), drafts, st, notifier)
	for _, target := range drafts.Targets() {
		// failures are already notified
		_ = a.Edit(ctx, target, 0)
	}
	if err := a.Run(ctx); err != nil {
		log.Infof("interrupted: %v", err)
	}
}
