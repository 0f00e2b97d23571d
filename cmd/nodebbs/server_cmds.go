package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"nodebbs/internal/ansi"
	"nodebbs/internal/app"
	"nodebbs/internal/network/ssh"
	"nodebbs/internal/network/telnet"
)

var serverCmd = &cobra.Command{
	Use:              "server",
	Short:            "Start the server",
	PersistentPreRun: bootAppForServer,
	Run:              startServer,
}

func bootAppForServer(cmd *cobra.Command, args []string) {
	if err := app.Boot(cfgFile, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// listener is what both the telnet and SSH servers look like from here.
type listener interface {
	ListenAndServe() error
	Stop() error
}

func startServer(cmd *cobra.Command, args []string) {
	if err := ansi.RenderArt(os.Stdout, "boot", true); err != nil {
		app.Logger.Debug("No boot art", "err", err)
	}

	// Once per process, before the first telnet connection
	telnet.Initialize(app.Logger)

	restartChan := make(chan struct{}, 1)
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	for {
		watcher := watchConfig(restartChan)

		var wg sync.WaitGroup
		var running []listener

		if app.Config.Listeners.SSH.Enabled {
			running = append(running, ssh.NewServer())
		}
		if app.Config.Listeners.Telnet.Enabled {
			running = append(running, telnet.NewServer())
		}
		if len(running) == 0 {
			app.Logger.Warn("No listeners enabled.")
		}

		for _, l := range running {
			wg.Add(1)
			go func(l listener) {
				defer wg.Done()
				if err := l.ListenAndServe(); err != nil {
					app.Logger.Error("Listener stopped", "type", fmt.Sprintf("%T", l), "err", err)
				}
			}(l)
		}

		stop := func() {
			for _, l := range running {
				l.Stop()
			}
			if watcher != nil {
				watcher.Close()
			}
			wg.Wait()
		}

		select {
		case <-stopChan:
			app.Logger.Info("Shutting down...")
			stop()
			return

		case <-restartChan:
			stop()

			// On failure Boot leaves the previous config and store in place
			if err := app.Boot(cfgFile, false); err != nil {
				app.Logger.Error("Failed to reload config", "err", err)
			}
		}
	}
}

// watchConfig signals restart when any loaded config file is written. It
// returns nil when hot reload is off or the watcher cannot be created.
func watchConfig(restart chan<- struct{}) *fsnotify.Watcher {
	if !app.Config.HotReload {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		app.Logger.Error("Failed to create watcher", "err", err)
		return nil
	}

	for _, file := range app.Config.LoadedFiles {
		if err := watcher.Add(file); err != nil {
			app.Logger.Error("Failed to watch config file", "file", relPath(file), "err", err)
		} else {
			app.Logger.Debug("Watching config file", "file", relPath(file))
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) || !app.Config.HotReload {
					continue
				}
				app.Logger.Info("Config file modified, rebooting app...", "file", relPath(event.Name))
				select {
				case restart <- struct{}{}:
				default:
					// restart pending
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				app.Logger.Error("Watcher error", "err", err)
			}
		}
	}()

	return watcher
}

// relPath shortens path relative to the working directory for logging.
func relPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil {
		return rel
	}
	return path
}
