package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"

	"git.sr.ht/~exteditor/exteditor/config"
	"git.sr.ht/~exteditor/exteditor/helper"
	"git.sr.ht/~exteditor/exteditor/lib/tempfiles"
	"git.sr.ht/~exteditor/exteditor/log"
)

// set at build time
var Version string

func buildInfo() string {
	return fmt.Sprintf("%s (%s %s %s)",
		Version, runtime.Version(), runtime.GOARCH, runtime.GOOS)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "exteditor: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	defer log.PanicHandler()

	var confPath, level string
	opts, _, err := getopt.Getopts(os.Args, "vc:l:")
	if err != nil {
		// browsers append arguments of their own (manifest path,
		// extension id, parent window), those are not ours to reject
		fmt.Fprintf(os.Stderr, "exteditor: ignoring arguments: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: exteditor [-v] [-c <config>] [-l <log-level>]")
		opts = nil
	}
	for _, opt := range opts {
		switch opt.Option {
		case 'v':
			fmt.Println("exteditor " + buildInfo())
			return
		case 'c':
			confPath = opt.Value
		case 'l':
			level = opt.Value
		}
	}

	conf, err := config.Load(confPath)
	if err != nil {
		die("%v", err)
	}
	if level != "" {
		l, err := log.ParseLevel(level)
		if err != nil {
			die("%v", err)
		}
		conf.General.LogLevel = l
	}
	logFile, err := conf.General.OpenLog()
	if err != nil {
		die("%v", err)
	}
	log.Init(logFile, conf.General.LogLevel)
	log.Infof("Starting up version %s", buildInfo())

	files, err := tempfiles.New(tempfiles.Dir())
	if err != nil {
		die("%v", err)
	}
	log.Debugf("documents are stored in %s", files.Dir())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	srv := helper.NewServer(os.Stdin, os.Stdout, files, conf.Helper.SwapPatterns)
	err = srv.Serve(ctx)
	stop()

	if cerr := files.Close(); cerr != nil {
		log.Warnf("remove %s: %v", files.Dir(), cerr)
	}
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	log.Infof("Shutting down")
}
