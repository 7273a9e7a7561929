// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/alpacad/alpacad/admin"
	"github.com/alpacad/alpacad/confengine"
	"github.com/alpacad/alpacad/internal/sigs"
	"github.com/alpacad/alpacad/logger"
	"github.com/alpacad/alpacad/session"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Alpaca decoder as a TCP service",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := confengine.LoadConfigPath(serveConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		if err := setupLogger(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
			os.Exit(1)
		}

		var sessionCfg session.Config
		if err := cfg.UnpackChild("session", &sessionCfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load session config: %v\n", err)
			os.Exit(1)
		}
		srv, err := session.New(sessionCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start alpaca listener: %v\n", err)
			os.Exit(1)
		}

		adm, err := admin.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start admin server: %v\n", err)
			os.Exit(1)
		}
		if adm != nil {
			adm.RegisterPostRoute("/-/logger", func(w http.ResponseWriter, r *http.Request) {
				logger.SetLoggerLevel(r.FormValue("level"))
				w.Write([]byte(`{"status": "success"}`))
			})
			adm.RegisterPostRoute("/-/reload", func(w http.ResponseWriter, r *http.Request) {
				if err := sigs.SelfReload(); err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(err.Error()))
				}
			})
		}

		go func() {
			if err := srv.Serve(); err != nil && !errors.Is(err, io.EOF) {
				logger.Errorf("alpaca listener stopped: %v", err)
			}
		}()
		if adm != nil {
			go func() {
				if err := adm.ListenAndServe(); err != nil && !errors.Is(err, io.EOF) {
					logger.Errorf("admin server stopped: %v", err)
				}
			}()
		}

		var reloadTotal int
		for {
			select {
			case <-sigs.Terminate():
				var closeErr error
				if adm != nil {
					closeErr = adm.Close()
				}
				if err := srv.Stop(closeErr); err != nil {
					logger.Errorf("error during shutdown: %v", err)
				}
				return

			case <-sigs.Reload():
				reloadTotal++
				reloaded, err := confengine.LoadConfigPath(serveConfigPath)
				if err != nil {
					logger.Errorf("failed to reload config (count=%d): %v", reloadTotal, err)
					continue
				}
				if err := setupLogger(reloaded); err != nil {
					logger.Errorf("failed to reload logger (count=%d): %v", reloadTotal, err)
					continue
				}
				logger.Infof("reloaded logger config (count=%d)", reloadTotal)
			}
		}
	},
	Example: "# alpacad serve --config alpacad.yaml",
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "alpacad.yaml", "Configuration file path")
	rootCmd.AddCommand(serveCmd)
}
