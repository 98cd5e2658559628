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
	"time"

	"github.com/spf13/cobra"

	"bennypowers.dev/cembundle/internal/logging"
	"bennypowers.dev/cembundle/serve"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the bundle on every source change and serve it with live reload",
	Long: `Like build, but stays running: rebuilds the bundle whenever a source
file under the project directory changes, and serves the result with
browser live reload via serve.Server.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Int("port", 8420, "port to serve the bundle and reload socket on")
	watchCmd.Flags().Duration("debounce", 200*time.Millisecond, "debounce window for batching rapid file changes")
	watchCmd.Flags().Duration("reload-delay", 0, "wait this long after a rebuild before telling browsers to reload")
}

func runWatch(cmd *cobra.Command, args []string) error {
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
	logger.Info("serving on http://localhost%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
