/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/spf13/cobra"

	"bennypowers.dev/cembundle/internal/logging"
	"bennypowers.dev/cembundle/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bundle with live reload and interactive keyboard controls",
	Long: `Like watch, but interactive: rebuilds on every source change, serves
the result with browser live reload, and accepts keyboard shortcuts
(o to open the browser, r to force a rebuild, q to quit).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 8420, "port to serve the bundle and reload socket on")
	serveCmd.Flags().Duration("debounce", 200*time.Millisecond, "debounce window for batching rapid file changes")
	serveCmd.Flags().Bool("open", false, "open the served bundle in the default browser on start")
	serveCmd.Flags().Duration("reload-delay", 0, "wait this long after a rebuild before telling browsers to reload")
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func showServeHelp(logger *logging.Logger) {
	logger.Info(`Keyboard shortcuts
	r - Force rebuild
	o - Open in browser
	h - Show this help
	q - Quit server
	Ctrl+C - Also quits server`)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := logging.GetLogger()
	logger.SetDebugEnabled(cfg.Verbose)

	root := cfg.ProjectDir
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return err
		}
	}

	port, _ := cmd.Flags().GetInt("port")
	debounce, _ := cmd.Flags().GetDuration("debounce")
	shouldOpen, _ := cmd.Flags().GetBool("open")
	reloadDelay, _ := cmd.Flags().GetDuration("reload-delay")

	srv := serve.NewServer(logger)
	srv.SetReloadDelay(reloadDelay)
	rebuild := newRebuildFunc(cmd, cfg, srv, logger)
	rebuild()

	watcher, err := serve.NewFileWatcher(debounce, logger)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Watch(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	go func() {
		for range watcher.Events() {
			rebuild()
		}
	}()

	addr := fmt.Sprintf(":%d", port)
	url := fmt.Sprintf("http://localhost%s", addr)
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error: %v", err)
		}
	}()
	previewURL := url + "/__cembundle_preview__"
	logger.Info("serving on %s (preview with live reload at %s)", url, previewURL)
	showServeHelp(logger)

	if shouldOpen {
		if err := openBrowser(previewURL); err != nil {
			logger.Warning("could not open browser: %v", err)
		}
	}

	quit := make(chan struct{})
	go func() {
		_ = keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			if key.Code == keys.CtrlC {
				close(quit)
				return true, nil
			}
			if key.Code != keys.RuneKey || len(key.Runes) == 0 {
				return false, nil
			}
			switch key.Runes[0] {
			case 'q', 'Q':
				close(quit)
				return true, nil
			case 'r', 'R':
				rebuild()
			case 'o', 'O':
				if err := openBrowser(previewURL); err != nil {
					logger.Warning("could not open browser: %v", err)
				}
			case 'h', 'H':
				showServeHelp(logger)
			}
			return false, nil
		})
	}()

	<-quit
	logger.Info("shutting down")
	return httpServer.Close()
}
