/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pagecomposer/internal/codegen"
	"pagecomposer/internal/config"
	"pagecomposer/internal/crash"
	"pagecomposer/internal/export"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/model"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/version"
)

type rootFlags struct {
	configPath string
	designFile string
	logLevel   string
}

func newRootCmd(crashSess *crash.Session) *cobra.Command {
	var (
		flags rootFlags
		cfg   config.AppConfig
	)
	root := &cobra.Command{
		Use:           "pagecomposer",
		Short:         "Inspect, export and reset page designs",
		Long:          `pagecomposer works on the page design saved by the composer: it prints the generated HTML and CSS, packages the page into a ZIP archive, and inspects or clears the saved design.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			lvl := cfg.Logging.Level
			if flags.logLevel != "" {
				lvl = flags.logLevel
			}
			applog.Init(applog.Options{
				Level:     lvl,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.Source,
				File:      cfg.Logging.File,
				Writer:    cmd.ErrOrStderr(),
			})
			if crashSess != nil {
				crashSess.ReportDir = cfg.Export.Dir
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: per-user config dir, or $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&flags.designFile, "design", "", "read the design from this JSON file instead of the store")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug|info|warn|error")

	open := func() (*session, error) { return openSession(cfg, flags.designFile, crashSess) }
	root.AddCommand(
		newExportCmd(&cfg, open),
		newSourceCmd("html", "Print the generated HTML document", &cfg, open, (*codegen.Generator).GenerateHTML),
		newSourceCmd("css", "Print the generated stylesheet", &cfg, open, (*codegen.Generator).GenerateCSS),
		newSourceCmd("markdown", "Print the Markdown rendition of the page", &cfg, open, (*codegen.Generator).GenerateMarkdown),
		newInspectCmd(open),
		newClearCmd(open),
		newValidateCmd(),
		newVersionCmd(),
	)
	return root
}

type opener func() (*session, error)

func newExportCmd(cfg *config.AppConfig, open opener) *cobra.Command {
	var (
		out      string
		title    string
		markdown bool
		pdf      bool
	)
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Package the page as a ZIP archive",
		Long: `Writes index.html and styles.css (and page.md with --markdown) into
<dir>/<name>.zip. The .zip extension is added when missing.

Examples:
  pagecomposer export landing
  pagecomposer export landing --markdown --pdf --out ./dist`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()
			name := export.DefaultName
			if len(args) == 1 {
				name = args[0]
			}
			dir := cfg.Export.Dir
			if out != "" {
				dir = out
			}
			res, err := export.Export(s.canvas, export.Options{
				Dir:      dir,
				Name:     name,
				Title:    title,
				Layout:   cfg.Editor.LayoutMode,
				Markdown: markdown || cfg.Export.Markdown,
				PDF:      pdf || cfg.Export.PDF,
				Notify: func(n export.Notice) {
					if n.Err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", n.Message, n.Err)
						return
					}
					fmt.Fprintln(cmd.ErrOrStderr(), n.Message)
				},
			})
			if err != nil {
				return err
			}
			s.tel.Event("export", map[string]any{"entries": len(res.Entries), "bytes": res.Bytes, "pdf": res.PDF != ""})
			fmt.Fprintln(cmd.OutOrStdout(), res.Archive)
			if res.PDF != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.PDF)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: export.dir from config)")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "include page.md")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "also write a layout proof PDF")
	return cmd
}

func newSourceCmd(use, short string, cfg *config.AppConfig, open opener, gen func(*codegen.Generator) (string, error)) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()
			text, err := gen(codegen.New(s.canvas.Surface(), codegen.Options{Layout: cfg.Editor.LayoutMode, Title: title}))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
	if use == "html" {
		cmd.Flags().StringVar(&title, "title", "", "document title")
	}
	return cmd
}

func newInspectCmd(open opener) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the current design",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()
			data, err := s.canvas.GetState().Marshal()
			if err != nil {
				return err
			}
			switch strings.ToLower(format) {
			case "json":
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", "  "); err != nil {
					return err
				}
				buf.WriteByte('\n')
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			case "yaml":
				var doc any
				if err := json.Unmarshal(data, &doc); err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q (use json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json|yaml")
	return cmd
}

func newClearCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every component and the saved design",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open()
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.canvas.ClearCanvas(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared.")
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a design file against the design schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := storage.ValidateDesign(data); err != nil {
				return err
			}
			d, err := model.Unmarshal(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d components\n", len(d.Components()))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pagecomposer %s\n", version.String())
		},
	}
}
